package codec

import (
	"errors"
	"testing"

	"pricestream/internal/schema"
	"pricestream/pkg/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestMarshalFramePriceTick(t *testing.T) {
	orig := schema.NewPriceTickFrame(schema.PriceTickFrame{
		Asks: []schema.PriceLevelFrame{
			{Price: "1.10050", Liquidity: 1000000},
			{Price: "1.10060", Liquidity: 0},
		},
		Bids: []schema.PriceLevelFrame{
			{Price: "1.10030", Liquidity: 1000000},
		},
		CloseoutAsk: "1.10050",
		CloseoutBid: "1.10030",
		Instrument:  "EUR_USD",
		Status:      "tradeable",
		Time:        schema.Timestamp{Seconds: 1704067200, Nanos: 42},
	})

	b, err := MarshalFrame(nil, orig)
	require.NoError(t, err)

	num, typ, n := protowire.ConsumeTag(b)
	require.Greater(t, n, 0)
	assert.Equal(t, fieldMessagePriceTick, num)
	assert.Equal(t, protowire.BytesType, typ)

	decoded, err := UnmarshalFrame(b)
	require.NoError(t, err)
	assert.Equal(t, orig, decoded)
}

func TestMarshalFrameHeartbeat(t *testing.T) {
	orig := schema.NewHeartbeatFrame(schema.HeartbeatFrame{
		Time:        schema.Timestamp{Seconds: 1704067200, Nanos: 123456789},
		MessageType: "HEARTBEAT",
	})

	b, err := MarshalFrame(nil, orig)
	require.NoError(t, err)

	decoded, err := UnmarshalFrame(b)
	require.NoError(t, err)
	assert.Equal(t, orig, decoded)
}

func TestMarshalFrameAppendsToDst(t *testing.T) {
	prefix := []byte{0xAA, 0xBB}
	b, err := MarshalFrame(prefix, schema.NewHeartbeatFrame(schema.HeartbeatFrame{MessageType: "HEARTBEAT"}))
	require.NoError(t, err)
	assert.Equal(t, prefix, b[:2])

	decoded, err := UnmarshalFrame(b[2:])
	require.NoError(t, err)
	assert.Equal(t, "HEARTBEAT", decoded.Heartbeat.MessageType)
	assert.Equal(t, schema.Timestamp{}, decoded.Heartbeat.Time)
}

func TestMarshalFrameRejectsEmpty(t *testing.T) {
	_, err := MarshalFrame(nil, schema.Frame{})
	assert.True(t, errors.Is(err, exception.ErrUnpublishable), "got %v", err)

	_, err = MarshalFrame(nil, schema.Frame{Kind: schema.FrameHeartbeat})
	assert.True(t, errors.Is(err, exception.ErrFrameEmpty), "got %v", err)
}

func TestUnmarshalFrameSkipsUnknownFields(t *testing.T) {
	b, err := MarshalFrame(nil, schema.NewHeartbeatFrame(schema.HeartbeatFrame{
		Time:        schema.Timestamp{Seconds: 10},
		MessageType: "HEARTBEAT",
	}))
	require.NoError(t, err)

	b = protowire.AppendTag(b, 15, protowire.VarintType)
	b = protowire.AppendVarint(b, 99)

	decoded, err := UnmarshalFrame(b)
	require.NoError(t, err)
	assert.Equal(t, int64(10), decoded.Heartbeat.Time.Seconds)
}

func TestUnmarshalFrameMalformed(t *testing.T) {
	_, err := UnmarshalFrame([]byte{0x0a, 0x05, 0x01})
	assert.True(t, errors.Is(err, exception.ErrFrameMalformed), "got %v", err)

	_, err = UnmarshalFrame(nil)
	assert.True(t, errors.Is(err, exception.ErrFrameEmpty), "got %v", err)
}
