package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"pricestream/internal/codec"
	"pricestream/internal/schema"
	"pricestream/pkg/pubsub"

	"github.com/yanun0323/logs"
)

func main() {
	address := flag.String("address", "tcp://localhost:9500", "publisher endpoint to connect to")
	flag.Parse()

	if err := run(*address); err != nil {
		logs.Errorf("subscriber: %+v", err)
		os.Exit(1)
	}
}

func run(address string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sub, err := pubsub.NewSubscriber(ctx, address)
	if err != nil {
		return err
	}
	defer sub.Close()
	logs.Infof("subscribed to %s", address)

	for {
		frame, err := sub.Recv()
		if err != nil {
			if ctx.Err() != nil {
				logs.Info("subscriber stopped")
				return nil
			}
			if pubsub.IsFrameError(err) {
				logs.Errorf("skip frame, err: %+v", err)
				continue
			}
			return err
		}
		printFrame(frame)
	}
}

func printFrame(f schema.Frame) {
	switch f.Kind {
	case schema.FramePriceTick:
		t := f.PriceTick
		logs.Infof("[PRICE_TICK] %s %s: Ask %s / Bid %s, %d ask levels, %d bid levels",
			codec.FormatTimestamp(t.Time), t.Instrument, t.CloseoutAsk, t.CloseoutBid, len(t.Asks), len(t.Bids))
	case schema.FrameHeartbeat:
		logs.Infof("[HEARTBEAT] Time: %s", codec.FormatTimestamp(f.Heartbeat.Time))
	default:
		logs.Errorf("unexpected frame kind %s", f.Kind)
	}
}
