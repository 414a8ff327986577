package codec

import (
	"pricestream/internal/model"
	"pricestream/internal/model/enum"
	"pricestream/internal/schema"
	"pricestream/pkg/exception"

	"github.com/yanun0323/errors"
)

// ConvertEvent maps a classified stream event to its wire frame.
// Unrecognized events have no wire representation.
func ConvertEvent(ev model.StreamEvent) (schema.Frame, error) {
	switch ev.Kind {
	case enum.EventPriceTick:
		if ev.PriceTick == nil {
			return schema.Frame{}, exception.ErrNilInstance
		}
		f, err := ConvertPriceTick(*ev.PriceTick)
		if err != nil {
			return schema.Frame{}, err
		}
		return schema.NewPriceTickFrame(f), nil
	case enum.EventHeartbeat:
		if ev.Heartbeat == nil {
			return schema.Frame{}, exception.ErrNilInstance
		}
		f, err := ConvertHeartbeat(*ev.Heartbeat)
		if err != nil {
			return schema.Frame{}, err
		}
		return schema.NewHeartbeatFrame(f), nil
	default:
		return schema.Frame{}, errors.Wrap(exception.ErrUnpublishable, "convert event").With("kind", ev.Kind.String())
	}
}

// ConvertPriceTick keeps ladder order and passes decimal text through untouched.
func ConvertPriceTick(tick model.PriceTick) (schema.PriceTickFrame, error) {
	ts, err := NormalizeTimestamp(tick.Time)
	if err != nil {
		return schema.PriceTickFrame{}, errors.Wrap(err, "convert price tick").With("instrument", tick.Instrument)
	}

	return schema.PriceTickFrame{
		Asks:        convertLevels(tick.Asks),
		Bids:        convertLevels(tick.Bids),
		CloseoutAsk: tick.CloseoutAsk,
		CloseoutBid: tick.CloseoutBid,
		Instrument:  tick.Instrument,
		Status:      tick.Status,
		Time:        ts,
	}, nil
}

// ConvertHeartbeat converts a heartbeat.
func ConvertHeartbeat(hb model.Heartbeat) (schema.HeartbeatFrame, error) {
	ts, err := NormalizeTimestamp(hb.Time)
	if err != nil {
		return schema.HeartbeatFrame{}, errors.Wrap(err, "convert heartbeat")
	}

	return schema.HeartbeatFrame{
		Time:        ts,
		MessageType: hb.MessageType,
	}, nil
}

func convertLevels(levels []model.PriceLevel) []schema.PriceLevelFrame {
	out := make([]schema.PriceLevelFrame, len(levels))
	for i, lvl := range levels {
		out[i] = schema.PriceLevelFrame{
			Price:     lvl.Price,
			Liquidity: uint64(lvl.Liquidity),
		}
	}
	return out
}
