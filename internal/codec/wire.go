package codec

import (
	"pricestream/internal/schema"
	"pricestream/pkg/exception"

	"github.com/yanun0323/errors"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Field numbers of proto/stream.proto.
const (
	fieldMessagePriceTick protowire.Number = 1
	fieldMessageHeartbeat protowire.Number = 2

	fieldTickAsks        protowire.Number = 1
	fieldTickBids        protowire.Number = 2
	fieldTickCloseoutAsk protowire.Number = 3
	fieldTickCloseoutBid protowire.Number = 4
	fieldTickInstrument  protowire.Number = 5
	fieldTickStatus      protowire.Number = 6
	fieldTickTime        protowire.Number = 7

	fieldLevelPrice     protowire.Number = 1
	fieldLevelLiquidity protowire.Number = 2

	fieldHeartbeatTime protowire.Number = 1
	fieldHeartbeatType protowire.Number = 2
)

var timestampMarshal = proto.MarshalOptions{Deterministic: true}

// MarshalFrame appends the protobuf StreamMessage encoding of f to dst.
func MarshalFrame(dst []byte, f schema.Frame) ([]byte, error) {
	var (
		body []byte
		num  protowire.Number
		err  error
	)

	switch f.Kind {
	case schema.FramePriceTick:
		if f.PriceTick == nil {
			return dst, exception.ErrFrameEmpty
		}
		num = fieldMessagePriceTick
		body, err = appendPriceTick(nil, f.PriceTick)
	case schema.FrameHeartbeat:
		if f.Heartbeat == nil {
			return dst, exception.ErrFrameEmpty
		}
		num = fieldMessageHeartbeat
		body, err = appendHeartbeat(nil, f.Heartbeat)
	default:
		return dst, errors.Wrap(exception.ErrUnpublishable, "marshal frame").With("kind", f.Kind.String())
	}
	if err != nil {
		return dst, err
	}

	dst = protowire.AppendTag(dst, num, protowire.BytesType)
	return protowire.AppendBytes(dst, body), nil
}

func appendPriceTick(dst []byte, t *schema.PriceTickFrame) ([]byte, error) {
	for i := range t.Asks {
		dst = appendMessage(dst, fieldTickAsks, appendPriceLevel(nil, t.Asks[i]))
	}
	for i := range t.Bids {
		dst = appendMessage(dst, fieldTickBids, appendPriceLevel(nil, t.Bids[i]))
	}
	dst = appendString(dst, fieldTickCloseoutAsk, t.CloseoutAsk)
	dst = appendString(dst, fieldTickCloseoutBid, t.CloseoutBid)
	dst = appendString(dst, fieldTickInstrument, t.Instrument)
	dst = appendString(dst, fieldTickStatus, t.Status)
	return appendTimestamp(dst, fieldTickTime, t.Time)
}

func appendPriceLevel(dst []byte, lvl schema.PriceLevelFrame) []byte {
	dst = appendString(dst, fieldLevelPrice, lvl.Price)
	if lvl.Liquidity != 0 {
		dst = protowire.AppendTag(dst, fieldLevelLiquidity, protowire.VarintType)
		dst = protowire.AppendVarint(dst, lvl.Liquidity)
	}
	return dst
}

func appendHeartbeat(dst []byte, hb *schema.HeartbeatFrame) ([]byte, error) {
	dst, err := appendTimestamp(dst, fieldHeartbeatTime, hb.Time)
	if err != nil {
		return nil, err
	}
	return appendString(dst, fieldHeartbeatType, hb.MessageType), nil
}

func appendTimestamp(dst []byte, num protowire.Number, ts schema.Timestamp) ([]byte, error) {
	b, err := timestampMarshal.Marshal(&timestamppb.Timestamp{Seconds: ts.Seconds, Nanos: ts.Nanos})
	if err != nil {
		return nil, errors.Wrap(err, "marshal timestamp")
	}
	return appendMessage(dst, num, b), nil
}

func appendMessage(dst []byte, num protowire.Number, msg []byte) []byte {
	dst = protowire.AppendTag(dst, num, protowire.BytesType)
	return protowire.AppendBytes(dst, msg)
}

// proto3 omits default values.
func appendString(dst []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return dst
	}
	dst = protowire.AppendTag(dst, num, protowire.BytesType)
	return protowire.AppendString(dst, v)
}

// UnmarshalFrame decodes a protobuf StreamMessage. Unknown fields are skipped.
func UnmarshalFrame(src []byte) (schema.Frame, error) {
	var f schema.Frame
	err := walk(src, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if typ != protowire.BytesType {
			return 0, nil
		}
		switch num {
		case fieldMessagePriceTick:
			msg, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}
			t, err := decodePriceTick(msg)
			if err != nil {
				return 0, err
			}
			f = schema.NewPriceTickFrame(t)
			return n, nil
		case fieldMessageHeartbeat:
			msg, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}
			hb, err := decodeHeartbeat(msg)
			if err != nil {
				return 0, err
			}
			f = schema.NewHeartbeatFrame(hb)
			return n, nil
		}
		return 0, nil
	})
	if err != nil {
		return schema.Frame{}, err
	}
	if f.Kind == schema.FrameUnknown {
		return schema.Frame{}, exception.ErrFrameEmpty
	}
	return f, nil
}

func decodePriceTick(src []byte) (schema.PriceTickFrame, error) {
	var t schema.PriceTickFrame
	err := walk(src, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if typ != protowire.BytesType {
			return 0, nil
		}
		switch num {
		case fieldTickAsks, fieldTickBids:
			msg, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}
			lvl, err := decodePriceLevel(msg)
			if err != nil {
				return 0, err
			}
			if num == fieldTickAsks {
				t.Asks = append(t.Asks, lvl)
			} else {
				t.Bids = append(t.Bids, lvl)
			}
			return n, nil
		case fieldTickCloseoutAsk:
			return consumeString(b, &t.CloseoutAsk)
		case fieldTickCloseoutBid:
			return consumeString(b, &t.CloseoutBid)
		case fieldTickInstrument:
			return consumeString(b, &t.Instrument)
		case fieldTickStatus:
			return consumeString(b, &t.Status)
		case fieldTickTime:
			return consumeTimestamp(b, &t.Time)
		}
		return 0, nil
	})
	return t, err
}

func decodePriceLevel(src []byte) (schema.PriceLevelFrame, error) {
	var lvl schema.PriceLevelFrame
	err := walk(src, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == fieldLevelPrice && typ == protowire.BytesType:
			return consumeString(b, &lvl.Price)
		case num == fieldLevelLiquidity && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return n, nil
			}
			lvl.Liquidity = v
			return n, nil
		}
		return 0, nil
	})
	return lvl, err
}

func decodeHeartbeat(src []byte) (schema.HeartbeatFrame, error) {
	var hb schema.HeartbeatFrame
	err := walk(src, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if typ != protowire.BytesType {
			return 0, nil
		}
		switch num {
		case fieldHeartbeatTime:
			return consumeTimestamp(b, &hb.Time)
		case fieldHeartbeatType:
			return consumeString(b, &hb.MessageType)
		}
		return 0, nil
	})
	return hb, err
}

func consumeString(b []byte, dst *string) (int, error) {
	v, n := protowire.ConsumeString(b)
	if n < 0 {
		return n, nil
	}
	*dst = v
	return n, nil
}

func consumeTimestamp(b []byte, dst *schema.Timestamp) (int, error) {
	msg, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return n, nil
	}
	var ts timestamppb.Timestamp
	if err := proto.Unmarshal(msg, &ts); err != nil {
		return 0, errors.Wrap(exception.ErrFrameMalformed, err.Error())
	}
	*dst = schema.Timestamp{Seconds: ts.GetSeconds(), Nanos: ts.GetNanos()}
	return n, nil
}

// walk iterates over the fields of one message. The visitor returns the number
// of value bytes it consumed, 0 to skip the field, or a negative protowire
// error code.
func walk(src []byte, visit func(num protowire.Number, typ protowire.Type, b []byte) (int, error)) error {
	for len(src) > 0 {
		num, typ, n := protowire.ConsumeTag(src)
		if n < 0 {
			return errors.Wrap(exception.ErrFrameMalformed, protowire.ParseError(n).Error())
		}
		src = src[n:]

		n, err := visit(num, typ, src)
		if err != nil {
			return err
		}
		if n == 0 {
			n = protowire.ConsumeFieldValue(num, typ, src)
		}
		if n < 0 {
			return errors.Wrap(exception.ErrFrameMalformed, protowire.ParseError(n).Error())
		}
		src = src[n:]
	}
	return nil
}
