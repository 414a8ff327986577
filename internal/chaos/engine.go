package chaos

import (
	"math/rand"
	"time"

	"pricestream/pkg/exception"

	"github.com/yanun0323/errors"
)

// Config controls how stream lines are disturbed.
type Config struct {
	Seed          int64
	DropRate      float64
	DuplicateRate float64
	// CorruptRate is the probability that a line is cut in half, which leaves
	// it as invalid JSON.
	CorruptRate   float64
	ReorderWindow int
}

// Engine applies chaos rules to the lines of a synthetic stream.
type Engine struct {
	cfg     Config
	rng     *rand.Rand
	pending [][]byte
}

// NewEngine creates a chaos engine with validation.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.ReorderWindow <= 0 {
		cfg.ReorderWindow = 1
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UTC().UnixNano()
	}
	return &Engine{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Validate ensures the config is within supported ranges.
func (c Config) Validate() error {
	rates := []struct {
		name string
		v    float64
	}{
		{"dropRate", c.DropRate},
		{"duplicateRate", c.DuplicateRate},
		{"corruptRate", c.CorruptRate},
	}
	for _, r := range rates {
		if r.v < 0 || r.v > 1 {
			return errors.Wrapf(exception.ErrInvalidArgument, "%s must be between 0 and 1", r.name)
		}
	}
	if c.ReorderWindow <= 0 {
		return errors.Wrap(exception.ErrInvalidArgument, "reorderWindow must be >= 1")
	}
	return nil
}

// Enabled reports whether the engine changes anything at all.
func (e *Engine) Enabled() bool {
	if e == nil {
		return false
	}
	return e.cfg.DropRate > 0 || e.cfg.DuplicateRate > 0 || e.cfg.CorruptRate > 0 || e.cfg.ReorderWindow > 1
}

// Process applies chaos to a single line and returns the lines to emit.
// Lines must not end with a newline.
func (e *Engine) Process(line []byte) [][]byte {
	if e == nil {
		return [][]byte{line}
	}
	if e.shouldDrop() {
		return nil
	}
	line = e.applyCorrupt(line)
	if e.cfg.ReorderWindow <= 1 {
		return e.applyDuplicate(line)
	}
	e.pending = append(e.pending, line)
	if len(e.pending) < e.cfg.ReorderWindow {
		return nil
	}
	idx := e.rng.Intn(len(e.pending))
	out := e.pending[idx]
	e.pending = append(e.pending[:idx], e.pending[idx+1:]...)
	return e.applyDuplicate(out)
}

// Flush returns any buffered lines after processing completes.
func (e *Engine) Flush() [][]byte {
	if e == nil || len(e.pending) == 0 {
		return nil
	}
	out := make([][]byte, 0, len(e.pending))
	for len(e.pending) > 0 {
		idx := e.rng.Intn(len(e.pending))
		line := e.pending[idx]
		e.pending = append(e.pending[:idx], e.pending[idx+1:]...)
		out = append(out, e.applyDuplicate(line)...)
	}
	return out
}

func (e *Engine) shouldDrop() bool {
	return e.cfg.DropRate > 0 && e.rng.Float64() < e.cfg.DropRate
}

func (e *Engine) applyDuplicate(line []byte) [][]byte {
	out := [][]byte{line}
	if e.cfg.DuplicateRate > 0 && e.rng.Float64() < e.cfg.DuplicateRate {
		out = append(out, line)
	}
	return out
}

func (e *Engine) applyCorrupt(line []byte) []byte {
	if e.cfg.CorruptRate <= 0 || len(line) < 2 || e.rng.Float64() >= e.cfg.CorruptRate {
		return line
	}
	return line[:len(line)/2]
}
