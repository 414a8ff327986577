package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pricestream/internal/bus"
	"pricestream/internal/ingest"
	"pricestream/internal/obs"
	"pricestream/internal/ops"
	"pricestream/internal/pipeline"
	"pricestream/pkg/pubsub"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yanun0323/logs"
)

const applicationName = "pricestream"

func main() {
	envFile := flag.String("env-file", "", "dotenv file to load (default .env when present)")
	relayCapacity := flag.Int("relay-capacity", 0, "override RELAY_CAPACITY")
	flag.Parse()

	cfg, err := ops.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration Error: %v\n\n%s", err, ops.Usage())
		os.Exit(1)
	}
	if *relayCapacity > 0 {
		cfg.RelayCapacity = *relayCapacity
	}

	if err := run(cfg); err != nil {
		logs.Errorf("streamer: %+v", err)
		os.Exit(1)
	}
}

func run(cfg ops.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.ProfilerAddress != "" {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: applicationName,
			ServerAddress:   cfg.ProfilerAddress,
			Tags: map[string]string{
				"environment": cfg.Environment,
			},
			Logger: profilerLogger{},
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			logs.Errorf("pyroscope start failed, continue without profiling, err: %+v", err)
		} else {
			defer func() {
				_ = profiler.Stop()
			}()
		}
	}

	publisher, err := pubsub.NewPublisher(ctx, cfg.PublishAddress)
	if err != nil {
		return err
	}
	defer publisher.Close()
	logs.Infof("publisher bound to %s", cfg.PublishAddress)

	relay := bus.NewQueue(cfg.RelayCapacity)
	metrics := obs.NewMetrics()
	state := pipeline.NewStateMachine()

	if cfg.MetricsAddress != "" {
		srv := serveMetrics(cfg.MetricsAddress, metrics, relay)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	reader := ingest.NewReader(cfg.BaseURL(), cfg.AccountID, cfg.AuthToken, cfg.Instruments, ingest.Option{
		Metrics: metrics,
		OnConnected: func() {
			if err := state.Transition(pipeline.StateStreaming); err != nil {
				logs.Errorf("%+v", err)
			}
		},
	})

	if err := state.Transition(pipeline.StateConnecting); err != nil {
		return err
	}
	logs.Infof("connecting to %s", reader.URL())

	// the reader does not observe signals. It ends with the stream, or is
	// left behind when the process exits after a shutdown signal.
	readerDone := make(chan error, 1)
	go func() {
		readerDone <- reader.Run(context.WithoutCancel(ctx), relay)
	}()

	pipeline.New(relay, publisher, pipeline.Option{
		Metrics: metrics,
		State:   state,
	}).Run(ctx)

	if err := awaitReader(ctx, readerDone); err != nil {
		logs.Errorf("pricing stream error: %+v", err)
	}

	snap := metrics.Snapshot()
	logs.Infof("streamer stopped, published %d frames, parse errors %d, convert errors %d, publish errors %d",
		snap.Published, snap.ParseErrors, snap.ConvertErrors, snap.PublishErrors)
	return nil
}

// awaitReader returns the reader result once the stream ended by itself.
// After shutdown has been requested the reader is abandoned and nil is
// returned without waiting.
func awaitReader(ctx context.Context, done <-chan error) error {
	if ctx.Err() != nil {
		return nil
	}
	return <-done
}

func serveMetrics(addr string, metrics *obs.Metrics, relay *bus.Queue) *http.Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(obs.NewCollector(metrics, relay.Len))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logs.Errorf("metrics server, err: %+v", err)
		}
	}()
	logs.Infof("metrics served on %s/metrics", addr)
	return srv
}

type profilerLogger struct{}

func (profilerLogger) Infof(format string, args ...any)  {}
func (profilerLogger) Debugf(format string, args ...any) {}
func (profilerLogger) Errorf(format string, args ...any) { logs.Errorf("pyroscope: "+format, args...) }
