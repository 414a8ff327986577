package exception

import "errors"

var (
	ErrPublisherBind   = errors.New("pubsub: bind publisher socket")
	ErrPublisherClosed = errors.New("pubsub: publisher closed")
	ErrPublisherSend   = errors.New("pubsub: send frame")
)
