package model

import (
	"bytes"
	"strconv"

	"github.com/yanun0323/errors"
)

// PriceLevel is one rung of the ask or bid ladder. Price stays textual so the
// decimal is never rounded on its way to the wire.
type PriceLevel struct {
	Price     string    `json:"price"`
	Liquidity Liquidity `json:"liquidity"`
}

// PriceTick is one market snapshot for one instrument.
type PriceTick struct {
	Asks        []PriceLevel `json:"asks"`
	Bids        []PriceLevel `json:"bids"`
	CloseoutAsk string       `json:"closeoutAsk"`
	CloseoutBid string       `json:"closeoutBid"`
	Instrument  string       `json:"instrument"`
	Status      string       `json:"status"`
	Time        string       `json:"time"`
}

// Heartbeat is the keep-alive message of the pricing stream.
type Heartbeat struct {
	Time        string `json:"time"`
	MessageType string `json:"type"`
}

// Liquidity is the available volume at a price level.
//
// The stream sends it as a JSON integer, some proxies re-encode it as a
// quoted integer; both are accepted.
type Liquidity uint64

func (l *Liquidity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		data = data[1 : len(data)-1]
	}

	v, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return errors.Wrapf(err, "parse liquidity %q", data)
	}

	*l = Liquidity(v)
	return nil
}

func (l Liquidity) MarshalJSON() ([]byte, error) {
	return strconv.AppendUint(nil, uint64(l), 10), nil
}
