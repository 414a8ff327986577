package bus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pricestream/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(seq uint64) model.StreamEvent {
	e := model.NewHeartbeatEvent(model.Heartbeat{MessageType: "HEARTBEAT"})
	e.Seq = seq
	return e
}

func TestQueueFIFO(t *testing.T) {
	q := NewQueue(4)
	ctx := context.Background()
	for i := uint64(1); i <= 4; i++ {
		require.NoError(t, q.Publish(ctx, event(i)))
	}
	q.Close()

	var got []uint64
	q.Run(ctx, func(e model.StreamEvent) {
		got = append(got, e.Seq)
	})
	assert.Equal(t, []uint64{1, 2, 3, 4}, got)
}

func TestQueueBackpressureBlocksProducer(t *testing.T) {
	q := NewQueue(2)
	ctx := context.Background()
	require.NoError(t, q.Publish(ctx, event(1)))
	require.NoError(t, q.Publish(ctx, event(2)))
	require.Equal(t, q.Cap(), q.Len())

	var (
		mu    sync.Mutex
		order []string
	)
	record := func(s string) {
		mu.Lock()
		order = append(order, s)
		mu.Unlock()
	}

	pushed := make(chan error, 1)
	go func() {
		err := q.Publish(ctx, event(3))
		record("push-3")
		pushed <- err
	}()

	select {
	case <-pushed:
		t.Fatal("publish on a full queue returned before the consumer made room")
	case <-time.After(50 * time.Millisecond):
	}

	record("pop-1")
	e, ok := q.Next(ctx)
	require.True(t, ok)
	assert.Equal(t, uint64(1), e.Seq)

	select {
	case err := <-pushed:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("producer stayed blocked after a slot was freed")
	}

	mu.Lock()
	assert.Equal(t, []string{"pop-1", "push-3"}, order)
	mu.Unlock()

	q.Close()
	var rest []uint64
	q.Run(ctx, func(e model.StreamEvent) { rest = append(rest, e.Seq) })
	assert.Equal(t, []uint64{2, 3}, rest, "no event may be dropped")
}

func TestQueueCloseDrainsThenEnds(t *testing.T) {
	q := NewQueue(3)
	ctx := context.Background()
	require.NoError(t, q.Publish(ctx, event(7)))
	q.Close()

	assert.ErrorIs(t, q.Publish(ctx, event(8)), ErrQueueClosed)

	e, ok := q.Next(ctx)
	require.True(t, ok)
	assert.Equal(t, uint64(7), e.Seq)

	_, ok = q.Next(ctx)
	assert.False(t, ok)
}

func TestQueueStopReleasesProducer(t *testing.T) {
	q := NewQueue(1)
	ctx := context.Background()
	require.NoError(t, q.Publish(ctx, event(1)))

	done := make(chan error, 1)
	go func() {
		done <- q.Publish(ctx, event(2))
	}()

	time.Sleep(20 * time.Millisecond)
	q.Stop()

	select {
	case err := <-done:
		if !errors.Is(err, ErrQueueClosed) {
			t.Fatalf("expected ErrQueueClosed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("stop did not release the producer")
	}

	_, ok := q.Next(ctx)
	assert.False(t, ok)
	q.Stop()
}

func TestQueueNextHonorsContext(t *testing.T) {
	q := NewQueue(1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan bool, 1)
	go func() {
		_, ok := q.Next(ctx)
		done <- ok
	}()

	cancel()
	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("next ignored context cancellation")
	}
}

func TestNewQueueMinimumCapacity(t *testing.T) {
	assert.Equal(t, 1, NewQueue(0).Cap())
	assert.Equal(t, DefaultCapacity, NewQueue(DefaultCapacity).Cap())
}
