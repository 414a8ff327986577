package mdg

import (
	"time"

	"pricestream/internal/model"
	"pricestream/pkg/exception"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"
)

// TimeLayout is the timestamp format of the pricing stream.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

// Config shapes the synthetic prices.
type Config struct {
	Instruments []string
	BasePrice   decimal.Decimal
	// Step is the price increment between ladder rungs and between ticks.
	Step      decimal.Decimal
	Spread    decimal.Decimal
	Liquidity uint64
	Depth     int
	Places    int32
}

// DefaultConfig prices around 1.10000 with a one pip spread.
func DefaultConfig(instruments ...string) Config {
	return Config{
		Instruments: instruments,
		BasePrice:   decimal.RequireFromString("1.10000"),
		Step:        decimal.RequireFromString("0.00010"),
		Spread:      decimal.RequireFromString("0.00010"),
		Liquidity:   1_000_000,
		Depth:       2,
		Places:      5,
	}
}

// Generator creates synthetic price ticks, cycling over the instruments.
type Generator struct {
	cfg   Config
	index int
	tick  int64
}

// NewGenerator validates cfg and creates a generator.
func NewGenerator(cfg Config) (*Generator, error) {
	if len(cfg.Instruments) == 0 {
		return nil, errors.Wrap(exception.ErrInvalidArgument, "no instruments")
	}
	if cfg.Depth <= 0 {
		cfg.Depth = 1
	}
	if cfg.Liquidity == 0 {
		cfg.Liquidity = 1
	}
	if cfg.Spread.IsNegative() {
		cfg.Spread = decimal.Zero
	}
	return &Generator{cfg: cfg}, nil
}

// Next creates the next price tick in sequence.
func (g *Generator) Next(now time.Time) model.PriceTick {
	instrument := g.cfg.Instruments[g.index]
	g.index = (g.index + 1) % len(g.cfg.Instruments)
	if g.index == 0 {
		g.tick++
	}

	mid := g.cfg.BasePrice.Add(g.cfg.Step.Mul(decimal.NewFromInt(g.tick % 10)))
	half := g.cfg.Spread.Div(decimal.NewFromInt(2))
	ask := mid.Add(half)
	bid := mid.Sub(half)

	asks := make([]model.PriceLevel, g.cfg.Depth)
	bids := make([]model.PriceLevel, g.cfg.Depth)
	for i := 0; i < g.cfg.Depth; i++ {
		offset := g.cfg.Step.Mul(decimal.NewFromInt(int64(i)))
		liquidity := model.Liquidity(g.cfg.Liquidity * uint64(i+1))
		asks[i] = model.PriceLevel{Price: g.format(ask.Add(offset)), Liquidity: liquidity}
		bids[i] = model.PriceLevel{Price: g.format(bid.Sub(offset)), Liquidity: liquidity}
	}

	return model.PriceTick{
		Asks:        asks,
		Bids:        bids,
		CloseoutAsk: g.format(ask.Add(g.cfg.Step)),
		CloseoutBid: g.format(bid.Sub(g.cfg.Step)),
		Instrument:  instrument,
		Status:      "tradeable",
		Time:        FormatTime(now),
	}
}

func (g *Generator) format(d decimal.Decimal) string {
	return d.StringFixed(g.cfg.Places)
}

// Heartbeat creates a keep-alive message.
func Heartbeat(now time.Time) model.Heartbeat {
	return model.Heartbeat{Time: FormatTime(now), MessageType: "HEARTBEAT"}
}

// FormatTime renders t the way the pricing stream does.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}
