package enum

// EventKind discriminates the variants of a stream event.
type EventKind uint8

const (
	_event_kind_beg EventKind = iota
	EventPriceTick
	EventHeartbeat
	EventUnrecognized
	_event_kind_end
)

func (k EventKind) IsAvailable() bool {
	return k > _event_kind_beg && k < _event_kind_end
}

func (k EventKind) String() string {
	switch k {
	case EventPriceTick:
		return "PRICE_TICK"
	case EventHeartbeat:
		return "HEARTBEAT"
	case EventUnrecognized:
		return "UNRECOGNIZED"
	default:
		return "UNKNOWN"
	}
}
