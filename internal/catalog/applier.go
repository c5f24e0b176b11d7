package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/ariefcatur/attic-lounges/internal/availability"
	kafkax "github.com/ariefcatur/attic-lounges/internal/kafka"
	"github.com/ariefcatur/attic-lounges/internal/metrics"
	"github.com/ariefcatur/attic-lounges/internal/orders"
	"github.com/segmentio/kafka-go"
)

// Deduper remembers processed event ids.
type Deduper interface {
	// Claim reports true the first time an event id is seen.
	Claim(ctx context.Context, eventID string) (bool, error)
	Release(ctx context.Context, eventID string) error
}

type AvailabilitySetter interface {
	SetAvailability(ctx context.Context, id string, in availability.Intent) (Product, error)
}

// Applier consumes availability events from the order outbox and applies
// them to the catalogue at most once per event id.
type Applier struct {
	Catalog AvailabilitySetter
	Dedup   Deduper
	Log     *slog.Logger
	Metrics *metrics.Metrics
}

// Handle is a kafka.Handler. An error makes the consumer retry the same
// message; the dedup claim is released first so the retry can apply it.
func (a *Applier) Handle(ctx context.Context, m kafka.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		a.Log.Warn("dropping malformed availability event", "offset", m.Offset, "err", err)
		a.Metrics.ObserveConsumed("malformed")
		return nil
	}
	if env.EventType != orders.EventAvailabilityChanged {
		a.Metrics.ObserveConsumed("ignored")
		return nil
	}

	p, err := kafkax.UnwrapPayload[orders.AvailabilityChangedPayload](env.Payload)
	if err != nil {
		a.Log.Warn("dropping availability event", "event_id", env.EventID, "err", err)
		a.Metrics.ObserveConsumed("malformed")
		return nil
	}
	intent, err := availability.ParseIntent(string(p.Intent))
	if err != nil || p.ProductID == "" {
		a.Log.Warn("dropping availability event", "event_id", env.EventID, "product_id", p.ProductID, "intent", p.Intent)
		a.Metrics.ObserveConsumed("malformed")
		return nil
	}

	first, err := a.Dedup.Claim(ctx, env.EventID)
	if err != nil {
		return err
	}
	if !first {
		a.Metrics.ObserveConsumed("duplicate")
		return nil
	}

	if _, err := a.Catalog.SetAvailability(ctx, p.ProductID, intent); err != nil {
		if errors.Is(err, ErrNotFound) {
			a.Log.Warn("availability event for unknown product", "event_id", env.EventID, "product_id", p.ProductID, "order_id", p.OrderID)
			a.Metrics.ObserveConsumed("unknown_product")
			return nil
		}
		// let the redelivery try again
		if rerr := a.Dedup.Release(ctx, env.EventID); rerr != nil {
			a.Log.Warn("release dedup claim", "event_id", env.EventID, "err", rerr)
		}
		a.Metrics.ObserveConsumed("error")
		return err
	}

	a.Log.Info("availability event applied", "event_id", env.EventID, "product_id", p.ProductID, "intent", intent, "order_id", p.OrderID)
	a.Metrics.ObserveConsumed("applied")
	return nil
}
