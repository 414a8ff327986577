package pipeline

import (
	"context"
	"time"

	"pricestream/internal/codec"
	"pricestream/internal/model"
	"pricestream/internal/model/enum"
	"pricestream/internal/obs"
	"pricestream/internal/schema"

	"github.com/yanun0323/logs"
)

// Source yields events produced by the stream reader.
type Source interface {
	Next(ctx context.Context) (model.StreamEvent, bool)
	Stop()
}

// Publisher sends one frame to subscribers.
type Publisher interface {
	Publish(f schema.Frame) error
}

type Option struct {
	Metrics *obs.Metrics
	State   *StateMachine
	Now     func() time.Time
}

// Pipeline is the main loop: it takes classified events off the relay,
// converts them to frames and publishes them. A bad event is logged and
// skipped, it never stops the loop.
type Pipeline struct {
	source  Source
	pub     Publisher
	metrics *obs.Metrics
	state   *StateMachine
	now     func() time.Time
}

func New(source Source, pub Publisher, opt Option) *Pipeline {
	p := &Pipeline{
		source:  source,
		pub:     pub,
		metrics: opt.Metrics,
		state:   opt.State,
		now:     opt.Now,
	}
	if p.state == nil {
		p.state = NewStateMachine()
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

func (p *Pipeline) State() State {
	return p.state.State()
}

// Run blocks until the reader closes the relay or ctx is done. On
// cancellation the relay is stopped so a reader suspended on a full relay
// returns as well.
func (p *Pipeline) Run(ctx context.Context) {
	for {
		ev, ok := p.source.Next(ctx)
		if !ok {
			break
		}
		p.Handle(ev)
	}

	if ctx.Err() != nil {
		logs.Info("shutdown requested, stop consuming the relay")
		if p.state.State() == StateStreaming {
			p.transition(StateDraining)
		}
		p.source.Stop()
	} else {
		logs.Info("relay closed, pricing stream ended")
	}
	p.transition(StateClosed)
}

// Handle converts and publishes a single event.
func (p *Pipeline) Handle(ev model.StreamEvent) {
	if ev.Kind == enum.EventUnrecognized {
		logs.Errorf("[UNKNOWN_MESSAGE] Received unexpected message: %s, reason: %v", ev.Raw, ev.Reason)
		return
	}

	frame, err := codec.ConvertEvent(ev)
	if err != nil {
		p.metrics.IncConvertError()
		logs.Errorf("convert %s event %d, err: %+v", ev.Kind, ev.Seq, err)
		return
	}

	switch ev.Kind {
	case enum.EventPriceTick:
		logs.Info(describePriceTick(ev.PriceTick))
	case enum.EventHeartbeat:
		logs.Infof("[HEARTBEAT] Time: %s", ev.Heartbeat.Time)
	}

	if err := p.pub.Publish(frame); err != nil {
		p.metrics.IncPublishError()
		logs.Errorf("publish %s event %d, err: %+v", ev.Kind, ev.Seq, err)
		return
	}

	var latency time.Duration
	if !ev.ReceivedAt.IsZero() {
		latency = p.now().Sub(ev.ReceivedAt)
	}
	p.metrics.ObservePublished(latency)
}

func (p *Pipeline) transition(to State) {
	if err := p.state.Transition(to); err != nil {
		logs.Errorf("pipeline state, err: %+v", err)
	}
}
