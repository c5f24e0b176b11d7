package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ariefcatur/attic-lounges/internal/availability"
	"github.com/ariefcatur/attic-lounges/internal/orders"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memDedup struct {
	seen     map[string]bool
	released []string
}

func (d *memDedup) Claim(_ context.Context, id string) (bool, error) {
	if d.seen[id] {
		return false, nil
	}
	d.seen[id] = true
	return true, nil
}

func (d *memDedup) Release(_ context.Context, id string) error {
	delete(d.seen, id)
	d.released = append(d.released, id)
	return nil
}

type countingSetter struct {
	calls int
	err   error
	last  availability.Intent
}

func (c *countingSetter) SetAvailability(_ context.Context, _ string, in availability.Intent) (Product, error) {
	c.calls++
	c.last = in
	return Product{}, c.err
}

func eventMessage(t *testing.T, eventID, productID string, in availability.Intent) kafka.Message {
	t.Helper()
	env, err := orders.AvailabilityIntent{
		EventID: eventID, OrderID: "o1", ProductID: productID, Intent: in, Reason: orders.ReasonOrderCancelled,
	}.Envelope("order-service", time.Now())
	require.NoError(t, err)
	value, err := json.Marshal(env)
	require.NoError(t, err)
	return kafka.Message{Key: []byte(orders.PartitionKey(productID)), Value: value}
}

func newApplier(set *countingSetter) (*Applier, *memDedup) {
	d := &memDedup{seen: map[string]bool{}}
	return &Applier{
		Catalog: set,
		Dedup:   d,
		Log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, d
}

func TestApplier_AppliesEachEventOnce(t *testing.T) {
	set := &countingSetter{}
	a, _ := newApplier(set)
	m := eventMessage(t, "e1", "p1", availability.Available)

	require.NoError(t, a.Handle(context.Background(), m))
	require.NoError(t, a.Handle(context.Background(), m))

	assert.Equal(t, 1, set.calls)
	assert.Equal(t, availability.Available, set.last)
}

func TestApplier_UnknownProductIsCommitted(t *testing.T) {
	set := &countingSetter{err: ErrNotFound}
	a, d := newApplier(set)

	assert.NoError(t, a.Handle(context.Background(), eventMessage(t, "e1", "gone", availability.Sold)))
	assert.Empty(t, d.released)
}

func TestApplier_StoreErrorReleasesClaim(t *testing.T) {
	set := &countingSetter{err: errors.New("db down")}
	a, d := newApplier(set)
	m := eventMessage(t, "e1", "p1", availability.Sold)

	require.Error(t, a.Handle(context.Background(), m))
	assert.Equal(t, []string{"e1"}, d.released)

	set.err = nil
	require.NoError(t, a.Handle(context.Background(), m))
	assert.Equal(t, 2, set.calls)
}

func TestApplier_DropsMalformed(t *testing.T) {
	set := &countingSetter{}
	a, _ := newApplier(set)

	for _, v := range []string{
		`not json`,
		`{"event_id":"e1","event_type":"SomethingElse","payload":{}}`,
		`{"event_id":"e2","event_type":"ProductAvailabilityChanged","payload":{"product_id":"p1","intent":"stolen"}}`,
		`{"event_id":"e3","event_type":"ProductAvailabilityChanged","payload":{"intent":"sold"}}`,
	} {
		assert.NoError(t, a.Handle(context.Background(), kafka.Message{Value: []byte(v)}), v)
	}
	assert.Zero(t, set.calls)
}
