package exception

import "errors"

var (
	ErrTimestampFormat = errors.New("codec: unsupported timestamp format")
	ErrUnpublishable   = errors.New("codec: event has no wire representation")
	ErrFrameEmpty      = errors.New("codec: frame has no payload")
	ErrFrameMalformed  = errors.New("codec: malformed frame")
)
