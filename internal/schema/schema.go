package schema

// FrameKind defines the variant carried by a wire frame.
type FrameKind uint8

const (
	FrameUnknown FrameKind = iota
	FramePriceTick
	FrameHeartbeat
)

func (k FrameKind) String() string {
	switch k {
	case FramePriceTick:
		return "price_tick"
	case FrameHeartbeat:
		return "heartbeat"
	default:
		return "unknown"
	}
}

// Timestamp is a point in time as whole seconds since the Unix epoch plus the
// sub-second remainder. Nanos is always within [0, 1e9).
type Timestamp struct {
	Seconds int64
	Nanos   int32
}

// Frame is the binary-encoded counterpart of a stream event. Exactly one of
// PriceTick and Heartbeat is set, selected by Kind.
type Frame struct {
	Kind      FrameKind
	PriceTick *PriceTickFrame
	Heartbeat *HeartbeatFrame
}

// PriceLevelFrame is a price level on the wire.
type PriceLevelFrame struct {
	Price     string
	Liquidity uint64
}

// PriceTickFrame is a price tick on the wire. Decimal values stay textual.
type PriceTickFrame struct {
	Asks        []PriceLevelFrame
	Bids        []PriceLevelFrame
	CloseoutAsk string
	CloseoutBid string
	Instrument  string
	Status      string
	Time        Timestamp
}

// HeartbeatFrame is a heartbeat on the wire.
type HeartbeatFrame struct {
	Time        Timestamp
	MessageType string
}

// NewPriceTickFrame wraps a price tick into a frame.
func NewPriceTickFrame(f PriceTickFrame) Frame {
	return Frame{Kind: FramePriceTick, PriceTick: &f}
}

// NewHeartbeatFrame wraps a heartbeat into a frame.
func NewHeartbeatFrame(f HeartbeatFrame) Frame {
	return Frame{Kind: FrameHeartbeat, Heartbeat: &f}
}
