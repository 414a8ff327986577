package ingest

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pricestream/internal/bus"
	"pricestream/internal/model"
	"pricestream/internal/model/enum"
	"pricestream/internal/obs"
	"pricestream/pkg/exception"

	yerrors "github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

const (
	readBufferSize     = 64 * 1024
	statusExcerptLimit = 512
)

// Relay receives classified events. Publish blocks while the relay is full.
type Relay interface {
	Publish(ctx context.Context, e model.StreamEvent) error
	Close()
}

// Option carries the optional collaborators of a Reader.
type Option struct {
	Client      *http.Client
	Metrics     *obs.Metrics
	Sequence    *obs.SequenceGenerator
	OnConnected func()
	Now         func() time.Time
}

// Reader consumes one pricing stream connection.
type Reader struct {
	url   string
	token string

	client      *http.Client
	metrics     *obs.Metrics
	seq         *obs.SequenceGenerator
	onConnected func()
	now         func() time.Time
}

// StreamURL builds the pricing stream endpoint for an account.
func StreamURL(baseURL, accountID, instruments string) string {
	return strings.TrimRight(baseURL, "/") +
		"/v3/accounts/" + accountID +
		"/pricing/stream?instruments=" + url.QueryEscape(instruments)
}

func NewReader(baseURL, accountID, token, instruments string, opt Option) *Reader {
	r := &Reader{
		url:         StreamURL(baseURL, accountID, instruments),
		token:       token,
		client:      opt.Client,
		metrics:     opt.Metrics,
		seq:         opt.Sequence,
		onConnected: opt.OnConnected,
		now:         opt.Now,
	}
	if r.client == nil {
		// no timeout, the stream is expected to stay open
		r.client = &http.Client{}
	}
	if r.seq == nil {
		r.seq = obs.NewSequenceGenerator(0)
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// URL returns the endpoint the reader connects to.
func (r *Reader) URL() string {
	return r.url
}

// Run connects and forwards every classified line into relay until the
// server ends the stream, the relay stops accepting events or reading fails.
// The relay is closed when Run returns.
func (r *Reader) Run(ctx context.Context, relay Relay) error {
	defer relay.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return yerrors.Wrap(exception.ErrStreamRequest, err.Error())
	}
	req.Header.Set("Authorization", "Bearer "+r.token)

	resp, err := r.client.Do(req)
	if err != nil {
		return yerrors.Wrap(exception.ErrStreamRequest, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, statusExcerptLimit))
		return yerrors.Wrapf(exception.ErrStreamStatus, "status %d, body: %s", resp.StatusCode, bytes.TrimSpace(excerpt))
	}

	logs.Info("connected to pricing stream, reading data...")
	if r.onConnected != nil {
		r.onConnected()
	}

	return r.consume(ctx, resp.Body, relay)
}

func (r *Reader) consume(ctx context.Context, body io.Reader, relay Relay) error {
	br := bufio.NewReaderSize(body, readBufferSize)
	for {
		line, readErr := br.ReadBytes('\n')
		if len(line) != 0 {
			if err := r.handleLine(ctx, line, relay); err != nil {
				if errors.Is(err, bus.ErrQueueClosed) {
					logs.Warn("relay stopped accepting events, stop reading")
					return nil
				}
				return err
			}
		}

		if readErr == nil {
			continue
		}
		if errors.Is(readErr, io.EOF) {
			logs.Info("pricing stream closed by server")
			return nil
		}
		return yerrors.Wrap(exception.ErrStreamRead, readErr.Error())
	}
}

func (r *Reader) handleLine(ctx context.Context, line []byte, relay Relay) error {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil
	}

	ev, err := Classify(line)
	if err != nil {
		r.metrics.IncParseError()
		logs.Errorf("skip line %q, err: %+v", line, err)
		return nil
	}

	if ev.Kind == enum.EventUnrecognized {
		if errors.Is(ev.Reason, exception.ErrIngestNoDiscriminator) {
			logs.Warnf("unknown message type or missing discriminator: %s", line)
		} else {
			r.metrics.IncDecodeDowngrade()
			logs.Errorf("decode %s, err: %+v", line, ev.Reason)
		}
	}

	ev.Seq = r.seq.Next()
	ev.ReceivedAt = r.now()
	r.metrics.ObserveEvent(ev.Kind)

	return relay.Publish(ctx, ev)
}
