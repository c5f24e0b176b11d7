package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	msgs chan kafka.Message

	mu        sync.Mutex
	committed []int64
}

func newFakeReader(msgs ...kafka.Message) *fakeReader {
	f := &fakeReader{msgs: make(chan kafka.Message, len(msgs))}
	for _, m := range msgs {
		f.msgs <- m
	}
	return f
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-f.msgs:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range msgs {
		f.committed = append(f.committed, m.Offset)
	}
	return nil
}

func (f *fakeReader) Close() error { return nil }

func (f *fakeReader) lastCommitted() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.committed) == 0 {
		return -1
	}
	return f.committed[len(f.committed)-1]
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func runConsumer(t *testing.T, c *Consumer, h Handler) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx, h) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Error("consumer did not stop")
		}
	})
	return cancel
}

func TestConsumer_SameKeyKeepsFetchOrder(t *testing.T) {
	var msgs []kafka.Message
	want := map[string]string{}
	for i := 0; i < 40; i++ {
		key := fmt.Sprintf("p%d", i%5)
		val := "sold"
		if (i/5)%2 == 1 {
			val = "available"
		}
		msgs = append(msgs, kafka.Message{Partition: 0, Offset: int64(i), Key: []byte(key), Value: []byte(val)})
		want[key] = val
	}

	var mu sync.Mutex
	state := map[string]string{}
	h := func(_ context.Context, m kafka.Message) error {
		// slow down earlier messages so a reorder would show
		if m.Offset%2 == 0 {
			time.Sleep(2 * time.Millisecond)
		}
		mu.Lock()
		state[string(m.Key)] = string(m.Value)
		mu.Unlock()
		return nil
	}

	r := newFakeReader(msgs...)
	runConsumer(t, newConsumer(r, 4, quietLogger()), h)

	require.Eventually(t, func() bool { return r.lastCommitted() == 39 }, 2*time.Second, 5*time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, want, state)
}

func TestConsumer_RetriesFailedMessageInPlace(t *testing.T) {
	var mu sync.Mutex
	calls := map[int64]int{}
	h := func(_ context.Context, m kafka.Message) error {
		mu.Lock()
		defer mu.Unlock()
		calls[m.Offset]++
		if m.Offset == 0 && calls[0] < 3 {
			return errors.New("db down")
		}
		return nil
	}

	r := newFakeReader(
		kafka.Message{Offset: 0, Key: []byte("p1"), Value: []byte("sold")},
		kafka.Message{Offset: 1, Key: []byte("p1"), Value: []byte("available")},
	)
	c := newConsumer(r, 2, quietLogger())
	c.backoff = time.Millisecond
	runConsumer(t, c, h)

	require.Eventually(t, func() bool { return r.lastCommitted() == 1 }, 2*time.Second, 5*time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, calls[0])
	assert.Equal(t, 1, calls[1])
}

func TestConsumer_CommitWaitsForEarlierOffsets(t *testing.T) {
	c := newConsumer(nil, 4, quietLogger())
	slowKey, fastKey := "a", ""
	for _, k := range []string{"b", "c", "d", "e", "f", "g", "h"} {
		if c.shard([]byte(k)) != c.shard([]byte(slowKey)) {
			fastKey = k
			break
		}
	}
	require.NotEmpty(t, fastKey)

	release := make(chan struct{})
	h := func(ctx context.Context, m kafka.Message) error {
		if string(m.Key) == slowKey {
			select {
			case <-release:
			case <-ctx.Done():
			}
		}
		return nil
	}

	r := newFakeReader(
		kafka.Message{Offset: 0, Key: []byte(slowKey)},
		kafka.Message{Offset: 1, Key: []byte(fastKey)},
	)
	c.r = r
	runConsumer(t, c, h)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(-1), r.lastCommitted())

	close(release)
	require.Eventually(t, func() bool { return r.lastCommitted() == 1 }, 2*time.Second, 5*time.Millisecond)
}
