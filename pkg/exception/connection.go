package exception

import "errors"

var (
	ErrStreamStatus  = errors.New("stream: unexpected http status")
	ErrStreamRead    = errors.New("stream: read body")
	ErrStreamRequest = errors.New("stream: build request")
)
