package obs

import (
	"sync/atomic"
	"time"

	"pricestream/internal/model/enum"
)

const maxEventKind = int(enum.EventUnrecognized)

// Metrics collects lightweight pipeline counters and latency stats.
type Metrics struct {
	eventCounts [maxEventKind + 1]uint64

	parseErrors      uint64
	decodeDowngrades uint64
	convertErrors    uint64
	publishErrors    uint64
	published        uint64

	publishLatency LatencyStats
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	min   uint64
	max   uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64
	Sum   time.Duration
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// Snapshot captures the current metrics values.
type Snapshot struct {
	EventCounts      map[enum.EventKind]uint64
	ParseErrors      uint64
	DecodeDowngrades uint64
	ConvertErrors    uint64
	PublishErrors    uint64
	Published        uint64
	PublishLatency   LatencySnapshot
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// ObserveEvent counts a classified event.
func (m *Metrics) ObserveEvent(kind enum.EventKind) {
	if m == nil {
		return
	}
	idx := int(kind)
	if kind.IsAvailable() && idx < len(m.eventCounts) {
		atomic.AddUint64(&m.eventCounts[idx], 1)
	}
}

// IncParseError records a line that was not valid JSON.
func (m *Metrics) IncParseError() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.parseErrors, 1)
}

// IncDecodeDowngrade records a line that matched a discriminator but failed strict decoding.
func (m *Metrics) IncDecodeDowngrade() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.decodeDowngrades, 1)
}

// IncConvertError records an event dropped by the wire conversion.
func (m *Metrics) IncConvertError() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.convertErrors, 1)
}

// IncPublishError records a failed socket send.
func (m *Metrics) IncPublishError() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.publishErrors, 1)
}

// ObservePublished records a sent frame and the time it spent since it was read.
func (m *Metrics) ObservePublished(sinceRecv time.Duration) {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.published, 1)
	m.publishLatency.Observe(sinceRecv)
}

// Snapshot returns a copy of the current metrics values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	eventCounts := make(map[enum.EventKind]uint64)
	for i := range m.eventCounts {
		if v := atomic.LoadUint64(&m.eventCounts[i]); v > 0 {
			eventCounts[enum.EventKind(i)] = v
		}
	}
	return Snapshot{
		EventCounts:      eventCounts,
		ParseErrors:      atomic.LoadUint64(&m.parseErrors),
		DecodeDowngrades: atomic.LoadUint64(&m.decodeDowngrades),
		ConvertErrors:    atomic.LoadUint64(&m.convertErrors),
		PublishErrors:    atomic.LoadUint64(&m.publishErrors),
		Published:        atomic.LoadUint64(&m.published),
		PublishLatency:   m.publishLatency.Snapshot(),
	}
}

// Observe records a duration sample.
func (l *LatencyStats) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	nanos := uint64(d)
	atomic.AddUint64(&l.count, 1)
	atomic.AddUint64(&l.sum, nanos)

	for {
		min := atomic.LoadUint64(&l.min)
		if min != 0 && nanos >= min {
			break
		}
		if atomic.CompareAndSwapUint64(&l.min, min, nanos) {
			break
		}
	}

	for {
		max := atomic.LoadUint64(&l.max)
		if nanos <= max {
			break
		}
		if atomic.CompareAndSwapUint64(&l.max, max, nanos) {
			break
		}
	}
}

// Snapshot returns the aggregated latency stats.
func (l *LatencyStats) Snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&l.count)
	if count == 0 {
		return LatencySnapshot{}
	}
	sum := atomic.LoadUint64(&l.sum)
	min := atomic.LoadUint64(&l.min)
	max := atomic.LoadUint64(&l.max)
	return LatencySnapshot{
		Count: count,
		Sum:   time.Duration(sum),
		Min:   time.Duration(min),
		Max:   time.Duration(max),
		Avg:   time.Duration(sum / count),
	}
}
