package pipeline

import (
	"fmt"

	"pricestream/internal/model"

	"github.com/yanun0323/decimal"
)

// describePriceTick renders the console line of a tick. The spread is for
// display only; values that are not decimals count as zero.
func describePriceTick(t *model.PriceTick) string {
	spread := displayDecimal(t.CloseoutAsk).Sub(displayDecimal(t.CloseoutBid))
	return fmt.Sprintf("[PRICE_TICK] %s: Ask %s / Bid %s (spread %s)",
		t.Instrument, t.CloseoutAsk, t.CloseoutBid, spread.String())
}

func displayDecimal(s string) decimal.Decimal {
	d, err := decimal.New(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
