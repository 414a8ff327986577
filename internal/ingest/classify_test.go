package ingest

import (
	"errors"
	"testing"

	"pricestream/internal/model"
	"pricestream/internal/model/enum"
	"pricestream/pkg/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	heartbeatLine = `{"type":"HEARTBEAT","time":"2024-01-01T00:00:00.123456789Z"}`
	priceTickLine = `{"instrument":"EUR_USD","time":"2024-01-01T00:00:00Z","closeoutAsk":"1.10050","closeoutBid":"1.10030","status":"tradeable","asks":[{"price":"1.10050","liquidity":"1000000"}],"bids":[{"price":"1.10030","liquidity":"1000000"}]}`
)

func TestClassifyHeartbeat(t *testing.T) {
	ev, err := Classify([]byte(heartbeatLine))
	require.NoError(t, err)
	require.Equal(t, enum.EventHeartbeat, ev.Kind)
	require.NotNil(t, ev.Heartbeat)
	assert.Equal(t, "2024-01-01T00:00:00.123456789Z", ev.Heartbeat.Time)
	assert.Equal(t, "HEARTBEAT", ev.Heartbeat.MessageType)
}

func TestClassifyPriceTick(t *testing.T) {
	ev, err := Classify([]byte(priceTickLine))
	require.NoError(t, err)
	require.Equal(t, enum.EventPriceTick, ev.Kind)
	require.NotNil(t, ev.PriceTick)

	want := model.PriceTick{
		Asks:        []model.PriceLevel{{Price: "1.10050", Liquidity: 1000000}},
		Bids:        []model.PriceLevel{{Price: "1.10030", Liquidity: 1000000}},
		CloseoutAsk: "1.10050",
		CloseoutBid: "1.10030",
		Instrument:  "EUR_USD",
		Status:      "tradeable",
		Time:        "2024-01-01T00:00:00Z",
	}
	assert.Equal(t, want, *ev.PriceTick)
	assert.Equal(t, "EUR_USD", ev.Instrument())
}

func TestClassifyNumericLiquidityAndLadderOrder(t *testing.T) {
	line := `{"instrument":"USD_JPY","time":"t","closeoutAsk":"1","closeoutBid":"1","status":"tradeable",` +
		`"asks":[{"price":"151.002","liquidity":250000},{"price":"151.001","liquidity":500000}],"bids":[]}`

	ev, err := Classify([]byte(line))
	require.NoError(t, err)
	require.Equal(t, enum.EventPriceTick, ev.Kind)
	require.Len(t, ev.PriceTick.Asks, 2)
	assert.Equal(t, "151.002", ev.PriceTick.Asks[0].Price)
	assert.Equal(t, model.Liquidity(250000), ev.PriceTick.Asks[0].Liquidity)
	assert.Equal(t, "151.001", ev.PriceTick.Asks[1].Price)
	assert.Empty(t, ev.PriceTick.Bids)
}

func TestClassifyUnrecognized(t *testing.T) {
	ev, err := Classify([]byte(`{"foo":"bar"}`))
	require.NoError(t, err)
	assert.Equal(t, enum.EventUnrecognized, ev.Kind)
	assert.JSONEq(t, `{"foo":"bar"}`, string(ev.Raw))
	assert.True(t, errors.Is(ev.Reason, exception.ErrIngestNoDiscriminator))
	assert.Nil(t, ev.PriceTick)
	assert.Nil(t, ev.Heartbeat)
}

func TestClassifyNonObjectIsUnrecognized(t *testing.T) {
	for _, line := range []string{`[1,2]`, `"HEARTBEAT"`, `42`, `null`} {
		ev, err := Classify([]byte(line))
		require.NoErrorf(t, err, "line %s", line)
		assert.Equalf(t, enum.EventUnrecognized, ev.Kind, "line %s", line)
	}
}

func TestClassifyHeartbeatTakesPriority(t *testing.T) {
	ev, err := Classify([]byte(`{"type":"HEARTBEAT","time":"2024-01-01T00:00:00Z","instrument":"EUR_USD"}`))
	require.NoError(t, err)
	assert.Equal(t, enum.EventHeartbeat, ev.Kind)
}

func TestClassifyOtherTypeWithInstrumentIsPriceTick(t *testing.T) {
	line := `{"type":"PRICE","instrument":"EUR_USD","time":"t","closeoutAsk":"1","closeoutBid":"1","status":"s","asks":[],"bids":[]}`
	ev, err := Classify([]byte(line))
	require.NoError(t, err)
	assert.Equal(t, enum.EventPriceTick, ev.Kind)
}

func TestClassifyDowngradesOnStrictDecodeFailure(t *testing.T) {
	cases := []struct {
		name string
		line string
		want error
	}{
		{"heartbeat without time", `{"type":"HEARTBEAT"}`, exception.ErrIngestMissingField},
		{"heartbeat with numeric time", `{"type":"HEARTBEAT","time":12}`, exception.ErrIngestDecodeHeartbeat},
		{"tick without asks", `{"instrument":"EUR_USD","time":"t","closeoutAsk":"1","closeoutBid":"1","status":"s","bids":[]}`, exception.ErrIngestMissingField},
		{"tick with null status", `{"instrument":"EUR_USD","time":"t","closeoutAsk":"1","closeoutBid":"1","status":null,"asks":[],"bids":[]}`, exception.ErrIngestMissingField},
		{"level without liquidity", `{"instrument":"EUR_USD","time":"t","closeoutAsk":"1","closeoutBid":"1","status":"s","asks":[{"price":"1"}],"bids":[]}`, exception.ErrIngestMissingField},
		{"negative liquidity", `{"instrument":"EUR_USD","time":"t","closeoutAsk":"1","closeoutBid":"1","status":"s","asks":[{"price":"1","liquidity":-5}],"bids":[]}`, exception.ErrIngestDecodePriceTick},
		{"instrument not a string", `{"instrument":7,"time":"t","closeoutAsk":"1","closeoutBid":"1","status":"s","asks":[],"bids":[]}`, exception.ErrIngestDecodePriceTick},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ev, err := Classify([]byte(c.line))
			require.NoError(t, err)
			assert.Equal(t, enum.EventUnrecognized, ev.Kind)
			assert.Equal(t, c.line, string(ev.Raw))
			assert.Truef(t, errors.Is(ev.Reason, c.want), "reason %v", ev.Reason)
		})
	}
}

func TestClassifyIgnoresUnknownFields(t *testing.T) {
	ev, err := Classify([]byte(`{"type":"HEARTBEAT","time":"2024-01-01T00:00:00Z","extra":{"a":1}}`))
	require.NoError(t, err)
	assert.Equal(t, enum.EventHeartbeat, ev.Kind)
}

func TestClassifyRejectsInvalidJSON(t *testing.T) {
	for _, line := range []string{`{"type":`, `not json`, `{"a":}`} {
		_, err := Classify([]byte(line))
		assert.Truef(t, errors.Is(err, exception.ErrIngestParseLine), "line %s err %v", line, err)
	}
}
