package kafka

import (
	"context"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// Handler returns nil only when the message was processed and its offset may
// be committed.
type Handler func(ctx context.Context, m kafka.Message) error

type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	r          reader
	workers    int
	log        *slog.Logger
	backoff    time.Duration
	maxBackoff time.Duration
}

func NewConsumer(brokers []string, group, topic string, workers int, logger *slog.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	return newConsumer(r, workers, logger)
}

func newConsumer(r reader, workers int, logger *slog.Logger) *Consumer {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{r: r, workers: workers, log: logger, backoff: 200 * time.Millisecond, maxBackoff: 5 * time.Second}
}

// Start dispatches messages to a worker pool until ctx ends. Messages with the
// same key always go to the same worker, in fetch order. A failing message is
// retried in place, and a partition's offset is committed only up to the
// last message below which everything has been handled.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	offsets := &offsetTracker{parts: map[int]*partitionOffsets{}}
	queues := make([]chan kafka.Message, c.workers)
	var wg sync.WaitGroup
	for i := range queues {
		queues[i] = make(chan kafka.Message, 256)
		wg.Add(1)
		go func(q <-chan kafka.Message) {
			defer wg.Done()
			for m := range q {
				if !c.handle(ctx, h, m) {
					return
				}
				if err := offsets.commit(ctx, c.r, m); err != nil && ctx.Err() == nil {
					c.log.Warn("commit failed", "partition", m.Partition, "offset", m.Offset, "err", err)
				}
			}
		}(queues[i])
	}
	defer func() {
		for _, q := range queues {
			close(q)
		}
		wg.Wait()
	}()

	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		offsets.fetched(m)
		select {
		case queues[c.shard(m.Key)] <- m:
		case <-ctx.Done():
			return nil
		}
	}
}

// handle runs h until it succeeds. It reports false when ctx ended first.
func (c *Consumer) handle(ctx context.Context, h Handler, m kafka.Message) bool {
	wait := c.backoff
	for attempt := 1; ; attempt++ {
		err := h(ctx, m)
		if err == nil {
			return true
		}
		c.log.Warn("handler failed, retrying", "partition", m.Partition, "offset", m.Offset, "attempt", attempt, "err", err)
		select {
		case <-ctx.Done():
			return false
		case <-time.After(wait):
		}
		if wait *= 2; wait > c.maxBackoff {
			wait = c.maxBackoff
		}
	}
}

func (c *Consumer) shard(key []byte) int {
	h := fnv.New32a()
	_, _ = h.Write(key)
	return int(h.Sum32() % uint32(c.workers))
}

type partitionOffsets struct {
	inflight []int64 // fetch order
	done     map[int64]bool
}

type offsetTracker struct {
	mu    sync.Mutex
	parts map[int]*partitionOffsets
}

func (t *offsetTracker) part(p int) *partitionOffsets {
	po, ok := t.parts[p]
	if !ok {
		po = &partitionOffsets{done: map[int64]bool{}}
		t.parts[p] = po
	}
	return po
}

func (t *offsetTracker) fetched(m kafka.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	po := t.part(m.Partition)
	po.inflight = append(po.inflight, m.Offset)
}

// commit marks m handled and commits the highest offset with no unhandled
// message before it. The lock is held across the commit so offsets never go
// backwards.
func (t *offsetTracker) commit(ctx context.Context, r reader, m kafka.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	po := t.part(m.Partition)
	po.done[m.Offset] = true
	last := int64(-1)
	for len(po.inflight) > 0 && po.done[po.inflight[0]] {
		last = po.inflight[0]
		delete(po.done, last)
		po.inflight = po.inflight[1:]
	}
	if last < 0 {
		return nil
	}
	upTo := m
	upTo.Offset = last
	return r.CommitMessages(ctx, upTo)
}
