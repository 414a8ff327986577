package ingest

import (
	"pricestream/internal/model"
	"pricestream/pkg/exception"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/errors"
)

const heartbeatType = "HEARTBEAT"

var jsonAPI = sonic.ConfigStd

// The payload structs use pointers so absent and null fields can be told
// apart from zero values.
type heartbeatPayload struct {
	Time *string `json:"time"`
	Type *string `json:"type"`
}

type priceLevelPayload struct {
	Price     *string          `json:"price"`
	Liquidity *model.Liquidity `json:"liquidity"`
}

type priceTickPayload struct {
	Asks        *[]priceLevelPayload `json:"asks"`
	Bids        *[]priceLevelPayload `json:"bids"`
	CloseoutAsk *string              `json:"closeoutAsk"`
	CloseoutBid *string              `json:"closeoutBid"`
	Instrument  *string              `json:"instrument"`
	Status      *string              `json:"status"`
	Time        *string              `json:"time"`
}

// Classify turns one non-empty line into a stream event.
//
// An error is returned only when the line is not JSON. A line that matches a
// discriminator but fails strict decoding becomes an unrecognized event whose
// Reason explains the failure.
func Classify(line []byte) (model.StreamEvent, error) {
	var generic any
	if err := jsonAPI.Unmarshal(line, &generic); err != nil {
		return model.StreamEvent{}, errors.Wrap(exception.ErrIngestParseLine, err.Error())
	}

	obj, _ := generic.(map[string]any)
	if typ, ok := obj["type"].(string); ok && typ == heartbeatType {
		hb, err := decodeHeartbeat(line)
		if err != nil {
			return model.NewUnrecognizedEvent(line, err), nil
		}
		return model.NewHeartbeatEvent(hb), nil
	}

	if _, ok := obj["instrument"]; ok {
		tick, err := decodePriceTick(line)
		if err != nil {
			return model.NewUnrecognizedEvent(line, err), nil
		}
		return model.NewPriceTickEvent(tick), nil
	}

	return model.NewUnrecognizedEvent(line, exception.ErrIngestNoDiscriminator), nil
}

func decodeHeartbeat(line []byte) (model.Heartbeat, error) {
	var p heartbeatPayload
	if err := jsonAPI.Unmarshal(line, &p); err != nil {
		return model.Heartbeat{}, errors.Wrap(exception.ErrIngestDecodeHeartbeat, err.Error())
	}
	if p.Time == nil {
		return model.Heartbeat{}, errors.Wrap(exception.ErrIngestMissingField, "heartbeat.time")
	}
	if p.Type == nil {
		return model.Heartbeat{}, errors.Wrap(exception.ErrIngestMissingField, "heartbeat.type")
	}
	return model.Heartbeat{Time: *p.Time, MessageType: *p.Type}, nil
}

func decodePriceTick(line []byte) (model.PriceTick, error) {
	var p priceTickPayload
	if err := jsonAPI.Unmarshal(line, &p); err != nil {
		return model.PriceTick{}, errors.Wrap(exception.ErrIngestDecodePriceTick, err.Error())
	}

	required := []struct {
		name  string
		value *string
	}{
		{"closeoutAsk", p.CloseoutAsk},
		{"closeoutBid", p.CloseoutBid},
		{"instrument", p.Instrument},
		{"status", p.Status},
		{"time", p.Time},
	}
	for _, f := range required {
		if f.value == nil {
			return model.PriceTick{}, errors.Wrap(exception.ErrIngestMissingField, "price_tick."+f.name)
		}
	}

	asks, err := convertLevels("asks", p.Asks)
	if err != nil {
		return model.PriceTick{}, err
	}
	bids, err := convertLevels("bids", p.Bids)
	if err != nil {
		return model.PriceTick{}, err
	}

	return model.PriceTick{
		Asks:        asks,
		Bids:        bids,
		CloseoutAsk: *p.CloseoutAsk,
		CloseoutBid: *p.CloseoutBid,
		Instrument:  *p.Instrument,
		Status:      *p.Status,
		Time:        *p.Time,
	}, nil
}

func convertLevels(side string, levels *[]priceLevelPayload) ([]model.PriceLevel, error) {
	if levels == nil {
		return nil, errors.Wrap(exception.ErrIngestMissingField, "price_tick."+side)
	}

	out := make([]model.PriceLevel, len(*levels))
	for i, lvl := range *levels {
		if lvl.Price == nil {
			return nil, errors.Wrapf(exception.ErrIngestMissingField, "price_tick.%s[%d].price", side, i)
		}
		if lvl.Liquidity == nil {
			return nil, errors.Wrapf(exception.ErrIngestMissingField, "price_tick.%s[%d].liquidity", side, i)
		}
		out[i] = model.PriceLevel{Price: *lvl.Price, Liquidity: *lvl.Liquidity}
	}
	return out, nil
}
