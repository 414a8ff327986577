package model

import (
	"encoding/json"
	"time"

	"pricestream/internal/model/enum"
)

// StreamEvent is a classified line of the pricing stream. Exactly one of
// PriceTick, Heartbeat or Raw is meaningful, selected by Kind.
type StreamEvent struct {
	Kind       enum.EventKind
	Seq        uint64
	ReceivedAt time.Time

	PriceTick *PriceTick
	Heartbeat *Heartbeat

	// Raw keeps the original payload of an unrecognized line.
	Raw    json.RawMessage
	Reason error
}

func NewPriceTickEvent(tick PriceTick) StreamEvent {
	return StreamEvent{Kind: enum.EventPriceTick, PriceTick: &tick}
}

func NewHeartbeatEvent(hb Heartbeat) StreamEvent {
	return StreamEvent{Kind: enum.EventHeartbeat, Heartbeat: &hb}
}

// NewUnrecognizedEvent copies raw, the caller may reuse its buffer.
func NewUnrecognizedEvent(raw []byte, reason error) StreamEvent {
	cp := make(json.RawMessage, len(raw))
	copy(cp, raw)
	return StreamEvent{Kind: enum.EventUnrecognized, Raw: cp, Reason: reason}
}

// Instrument returns the instrument of a price tick, empty otherwise.
func (e StreamEvent) Instrument() string {
	if e.Kind == enum.EventPriceTick && e.PriceTick != nil {
		return e.PriceTick.Instrument
	}
	return ""
}
