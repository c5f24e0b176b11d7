package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/ariefcatur/attic-lounges/internal/metrics"
	"github.com/segmentio/kafka-go"
)

type Store interface {
	FetchPending(ctx context.Context, limit int) ([]Record, error)
	MarkSent(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64) error
}

type Publisher interface {
	Publish(ctx context.Context, key, value []byte, headers ...kafka.Header) error
}

// Relay drains pending outbox records to Kafka. A record is marked sent only
// after its publish succeeded; a failed publish ends the batch so later
// records for the same key are not published ahead of it.
type Relay struct {
	Store     Store
	Publisher Publisher
	Interval  time.Duration
	BatchSize int
	Log       *slog.Logger
	Metrics   *metrics.Metrics
}

func (r *Relay) Run(ctx context.Context) {
	t := time.NewTicker(r.Interval)
	defer t.Stop()
	for {
		if _, err := r.Drain(ctx); err != nil && ctx.Err() == nil {
			r.Log.Warn("outbox drain failed", "err", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// Drain publishes one batch and reports how many records were sent.
func (r *Relay) Drain(ctx context.Context) (int, error) {
	recs, err := r.Store.FetchPending(ctx, r.BatchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, rec := range recs {
		err := r.Publisher.Publish(ctx, []byte(rec.Key), rec.Payload,
			kafka.Header{Key: "x-event-id", Value: []byte(rec.EventID)},
			kafka.Header{Key: "x-event-version", Value: []byte("1")},
		)
		if err != nil {
			r.Metrics.ObserveOutbox("failed")
			r.Log.Warn("outbox publish failed", "event_id", rec.EventID, "key", rec.Key, "attempts", rec.Attempts+1, "err", err)
			if merr := r.Store.MarkFailed(ctx, rec.ID); merr != nil {
				r.Log.Warn("outbox mark failed", "event_id", rec.EventID, "err", merr)
			}
			return sent, nil
		}
		if err := r.Store.MarkSent(ctx, rec.ID); err != nil {
			// Published but not marked: it will be sent again, consumers dedup on event_id.
			return sent, err
		}
		r.Metrics.ObserveOutbox("sent")
		sent++
	}
	return sent, nil
}
