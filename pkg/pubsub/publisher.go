package pubsub

import (
	"context"
	"sync/atomic"

	"pricestream/internal/codec"
	"pricestream/internal/schema"
	"pricestream/pkg/exception"
	"pricestream/pkg/uds"

	"github.com/go-zeromq/zmq4"
	"github.com/yanun0323/errors"
)

// Publisher fans frames out to every connected subscriber over a ZeroMQ PUB
// socket. Publish is not safe for concurrent use.
type Publisher struct {
	address string
	sock    zmq4.Socket
	closed  atomic.Bool
}

// NewPublisher binds a PUB socket on address, for example "tcp://*:9500" or
// "ipc:///tmp/prices.sock".
func NewPublisher(ctx context.Context, address string) (*Publisher, error) {
	if err := uds.Prepare(address); err != nil {
		return nil, errors.Wrap(exception.ErrPublisherBind, err.Error()).With("address", address)
	}

	sock := zmq4.NewPub(ctx)
	if err := sock.Listen(address); err != nil {
		_ = sock.Close()
		return nil, errors.Wrap(exception.ErrPublisherBind, err.Error()).With("address", address)
	}

	return &Publisher{address: address, sock: sock}, nil
}

// Address returns the endpoint the publisher was bound to.
func (p *Publisher) Address() string {
	return p.address
}

// Publish encodes f and sends it as one single-part message.
func (p *Publisher) Publish(f schema.Frame) error {
	if p.closed.Load() {
		return exception.ErrPublisherClosed
	}

	payload, err := codec.MarshalFrame(nil, f)
	if err != nil {
		return err
	}

	if err := p.sock.Send(zmq4.NewMsg(payload)); err != nil {
		return errors.Wrap(exception.ErrPublisherSend, err.Error()).With("kind", f.Kind.String())
	}
	return nil
}

// Close releases the socket. It is safe to call more than once.
func (p *Publisher) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return p.sock.Close()
}
