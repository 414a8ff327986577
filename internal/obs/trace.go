package obs

import "sync/atomic"

// SequenceGenerator hands out monotonically increasing event sequence numbers.
type SequenceGenerator struct {
	next uint64
}

// NewSequenceGenerator returns a generator whose first value is seed+1.
func NewSequenceGenerator(seed uint64) *SequenceGenerator {
	return &SequenceGenerator{next: seed}
}

// Next returns the next sequence number.
func (g *SequenceGenerator) Next() uint64 {
	if g == nil {
		return 0
	}
	return atomic.AddUint64(&g.next, 1)
}
