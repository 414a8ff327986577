package codec

import (
	"errors"
	"testing"

	"pricestream/internal/model"
	"pricestream/internal/schema"
	"pricestream/pkg/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertPriceTickPreservesLadderOrder(t *testing.T) {
	tick := model.PriceTick{
		Asks: []model.PriceLevel{
			{Price: "1.10050", Liquidity: 1000000},
			{Price: "1.10040", Liquidity: 2000000},
			{Price: "1.10070", Liquidity: 5000000},
		},
		Bids: []model.PriceLevel{
			{Price: "1.10030", Liquidity: 1000000},
			{Price: "1.10035", Liquidity: 3000000},
		},
		CloseoutAsk: "1.10050",
		CloseoutBid: "1.10030",
		Instrument:  "EUR_USD",
		Status:      "tradeable",
		Time:        "2024-01-01T00:00:00Z",
	}

	f, err := ConvertPriceTick(tick)
	require.NoError(t, err)

	require.Len(t, f.Asks, 3)
	require.Len(t, f.Bids, 2)
	for i, lvl := range tick.Asks {
		assert.Equal(t, lvl.Price, f.Asks[i].Price)
		assert.Equal(t, uint64(lvl.Liquidity), f.Asks[i].Liquidity)
	}
	for i, lvl := range tick.Bids {
		assert.Equal(t, lvl.Price, f.Bids[i].Price)
		assert.Equal(t, uint64(lvl.Liquidity), f.Bids[i].Liquidity)
	}
	assert.Equal(t, "1.10050", f.CloseoutAsk)
	assert.Equal(t, "1.10030", f.CloseoutBid)
	assert.Equal(t, "EUR_USD", f.Instrument)
	assert.Equal(t, "tradeable", f.Status)
	assert.Equal(t, schema.Timestamp{Seconds: 1704067200}, f.Time)
}

func TestConvertPriceTickKeepsDecimalText(t *testing.T) {
	tick := model.PriceTick{
		Asks:        []model.PriceLevel{{Price: "0.100000000000000000001", Liquidity: 1}},
		Bids:        []model.PriceLevel{},
		CloseoutAsk: "1.10",
		CloseoutBid: "not-a-number",
		Instrument:  "EUR_USD",
		Status:      "tradeable",
		Time:        "2024-01-01T00:00:00Z",
	}

	f, err := ConvertPriceTick(tick)
	require.NoError(t, err)
	assert.Equal(t, "0.100000000000000000001", f.Asks[0].Price)
	assert.Equal(t, "1.10", f.CloseoutAsk)
	assert.Equal(t, "not-a-number", f.CloseoutBid)
	assert.Empty(t, f.Bids)
}

func TestConvertEvent(t *testing.T) {
	hb, err := ConvertEvent(model.NewHeartbeatEvent(model.Heartbeat{
		Time:        "2024-01-01T00:00:00.123456789Z",
		MessageType: "HEARTBEAT",
	}))
	require.NoError(t, err)
	require.Equal(t, schema.FrameHeartbeat, hb.Kind)
	assert.Equal(t, schema.Timestamp{Seconds: 1704067200, Nanos: 123456789}, hb.Heartbeat.Time)
	assert.Equal(t, "HEARTBEAT", hb.Heartbeat.MessageType)

	_, err = ConvertEvent(model.NewUnrecognizedEvent([]byte(`{"foo":"bar"}`), nil))
	assert.True(t, errors.Is(err, exception.ErrUnpublishable), "got %v", err)

	_, err = ConvertEvent(model.NewPriceTickEvent(model.PriceTick{Instrument: "EUR_USD", Time: "garbage"}))
	assert.True(t, errors.Is(err, exception.ErrTimestampFormat), "got %v", err)
}
