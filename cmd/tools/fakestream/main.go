package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pricestream/internal/chaos"
	"pricestream/internal/mdg"

	"github.com/yanun0323/logs"
)

// fakestream serves a synthetic pricing stream for local runs:
//
//	OANDA_STREAM_URL=http://localhost:8080 streamer
func main() {
	listen := flag.String("listen", ":8080", "HTTP listen address")
	token := flag.String("token", "", "expected bearer token (empty accepts any)")
	interval := flag.Duration("interval", 250*time.Millisecond, "delay between price ticks")
	heartbeat := flag.Duration("heartbeat", 5*time.Second, "delay between heartbeats (0 disables)")
	maxTicks := flag.Int("max-ticks", 0, "close the stream after N ticks (0=never)")
	seed := flag.Int64("seed", 0, "RNG seed (0=now)")
	dropRate := flag.Float64("drop-rate", 0, "Drop probability [0-1]")
	dupRate := flag.Float64("dup-rate", 0, "Duplicate probability [0-1]")
	corruptRate := flag.Float64("corrupt-rate", 0, "Truncated line probability [0-1]")
	reorderWindow := flag.Int("reorder-window", 1, "Reorder window (>=1)")
	flag.Parse()

	chaosCfg := chaos.Config{
		Seed:          *seed,
		DropRate:      *dropRate,
		DuplicateRate: *dupRate,
		CorruptRate:   *corruptRate,
		ReorderWindow: *reorderWindow,
	}
	if err := chaosCfg.Validate(); err != nil {
		logs.Errorf("chaos config invalid: %+v", err)
		os.Exit(1)
	}

	handler := mdg.NewStreamServer(mdg.DefaultConfig(), mdg.StreamConfig{
		Token:             *token,
		Interval:          *interval,
		HeartbeatInterval: *heartbeat,
		MaxTicks:          *maxTicks,
		Chaos:             chaosCfg,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{Addr: *listen, Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logs.Infof("synthetic pricing stream listening on %s", *listen)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logs.Errorf("listen, err: %+v", err)
		os.Exit(1)
	}
}
