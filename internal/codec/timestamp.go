package codec

import (
	"time"

	"pricestream/internal/schema"
	"pricestream/pkg/exception"

	"github.com/yanun0323/errors"
)

// fallbackLayout matches stream timestamps with a literal trailing Z and no offset.
const fallbackLayout = "2006-01-02T15:04:05.999999Z"

// NormalizeTimestamp parses an ISO-8601 timestamp into epoch seconds plus the
// sub-second remainder. RFC 3339 is tried first, then fallbackLayout.
func NormalizeTimestamp(value string) (schema.Timestamp, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err == nil {
		return FromTime(t), nil
	}

	t, fallbackErr := parseFallback(value)
	if fallbackErr != nil {
		return schema.Timestamp{}, errors.Wrapf(exception.ErrTimestampFormat,
			"normalize %q, rfc3339: %v, fallback: %v", value, err, fallbackErr)
	}

	return FromTime(t), nil
}

func parseFallback(value string) (time.Time, error) {
	return time.ParseInLocation(fallbackLayout, value, time.UTC)
}

// FromTime converts t into a wire timestamp.
func FromTime(t time.Time) schema.Timestamp {
	return schema.Timestamp{
		Seconds: t.Unix(),
		Nanos:   int32(t.Nanosecond()),
	}
}

// ToTime converts a wire timestamp into a UTC time.
func ToTime(ts schema.Timestamp) time.Time {
	return time.Unix(ts.Seconds, int64(ts.Nanos)).UTC()
}

// FormatTimestamp renders ts as RFC 3339 with nanosecond precision.
func FormatTimestamp(ts schema.Timestamp) string {
	return ToTime(ts).Format(time.RFC3339Nano)
}
