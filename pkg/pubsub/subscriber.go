package pubsub

import (
	"context"
	"errors"

	"pricestream/internal/codec"
	"pricestream/internal/schema"
	"pricestream/pkg/exception"

	"github.com/go-zeromq/zmq4"
	yerrors "github.com/yanun0323/errors"
)

// Subscriber receives every frame sent by a Publisher.
type Subscriber struct {
	sock zmq4.Socket
}

// NewSubscriber dials address and subscribes to all messages.
func NewSubscriber(ctx context.Context, address string) (*Subscriber, error) {
	sock := zmq4.NewSub(ctx)
	if err := sock.Dial(address); err != nil {
		_ = sock.Close()
		return nil, yerrors.Wrap(err, "dial subscriber").With("address", address)
	}
	if err := sock.SetOption(zmq4.OptionSubscribe, ""); err != nil {
		_ = sock.Close()
		return nil, yerrors.Wrap(err, "subscribe all")
	}
	return &Subscriber{sock: sock}, nil
}

// Recv blocks until the next message arrives and decodes it.
func (s *Subscriber) Recv() (schema.Frame, error) {
	msg, err := s.sock.Recv()
	if err != nil {
		return schema.Frame{}, err
	}
	return codec.UnmarshalFrame(msg.Bytes())
}

func (s *Subscriber) Close() error {
	return s.sock.Close()
}

// IsFrameError reports whether err comes from a payload that could not be
// decoded. The socket is still usable after such an error.
func IsFrameError(err error) bool {
	return errors.Is(err, exception.ErrFrameMalformed) || errors.Is(err, exception.ErrFrameEmpty)
}
