package catalog

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/ariefcatur/attic-lounges/internal/availability"
	"github.com/ariefcatur/attic-lounges/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	products map[string]Product
	setErr   error
}

func newMemStore() *memStore { return &memStore{products: map[string]Product{}} }

func (m *memStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *memStore) List(_ context.Context, limit int) ([]Product, error) {
	out := []Product{}
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) Get(_ context.Context, id string) (Product, error) {
	p, ok := m.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (m *memStore) Insert(_ context.Context, p Product) error {
	m.products[p.ID] = p
	return nil
}

func (m *memStore) Update(_ context.Context, p Product) (Product, error) {
	if _, ok := m.products[p.ID]; !ok {
		return Product{}, ErrNotFound
	}
	m.products[p.ID] = p
	return p, nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	if _, ok := m.products[id]; !ok {
		return ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *memStore) SetAvailability(_ context.Context, id string, in availability.Intent, at time.Time) (Product, error) {
	if m.setErr != nil {
		return Product{}, m.setErr
	}
	p, ok := m.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	p.ApplyIntent(in)
	p.UpdatedAt = at
	m.products[id] = p
	return p, nil
}

func (m *memStore) Count(context.Context) (int64, error) {
	return int64(len(m.products)), nil
}

var seedTime = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func TestService_CreateAndUpdate(t *testing.T) {
	svc := NewService(newMemStore(), clock.NewFixed(seedTime), nil)
	ctx := context.Background()

	p, err := svc.Create(ctx, Patch{Name: ptr("Hoodie Dino"), Price: ptr(int64(120000))})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, 1, p.Stock)
	assert.True(t, p.Available)

	p, err = svc.Update(ctx, p.ID, Patch{Stock: ptr(0), Brand: ptr("Uniqlo")})
	require.NoError(t, err)
	assert.Equal(t, "Hoodie Dino", p.Name)
	assert.Equal(t, "Uniqlo", p.Brand)
	assert.False(t, p.Available)

	_, err = svc.Update(ctx, "missing", Patch{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_CreateRejectsInvalid(t *testing.T) {
	svc := NewService(newMemStore(), clock.NewFixed(seedTime), nil)

	tests := map[string]Patch{
		"no name":        {Price: ptr(int64(100))},
		"zero price":     {Name: ptr("x"), Price: ptr(int64(0))},
		"negative stock": {Name: ptr("x"), Price: ptr(int64(100)), Stock: ptr(-1)},
	}
	for name, patch := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), patch)
			assert.ErrorIs(t, err, ErrInvalidProduct)
		})
	}
}

func TestService_SetAvailabilityIsIdempotent(t *testing.T) {
	store := newMemStore()
	store.products["p1"] = Product{ID: "p1", Name: "Vintage Watch", Price: 350000, Stock: 1, Available: true}
	svc := NewService(store, clock.NewFixed(seedTime), nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		p, err := svc.SetAvailability(ctx, "p1", availability.Sold)
		require.NoError(t, err)
		assert.Equal(t, 0, p.Stock)
		assert.False(t, p.Available)
	}

	p, err := svc.SetAvailability(ctx, "p1", availability.Available)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Stock)
	assert.True(t, p.Available)

	_, err = svc.SetAvailability(ctx, "nope", availability.Sold)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_SeedIfEmpty(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, clock.NewFixed(seedTime), nil)
	ctx := context.Background()

	n, err := svc.SeedIfEmpty(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultProducts()), n)
	for _, p := range store.products {
		assert.True(t, p.Available, p.Name)
	}

	n, err = svc.SeedIfEmpty(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Vintage Watch", list[0].Name)
}

func TestService_Delete(t *testing.T) {
	store := newMemStore()
	store.products["p1"] = Product{ID: "p1"}
	svc := NewService(store, clock.NewFixed(seedTime), nil)

	require.NoError(t, svc.Delete(context.Background(), "p1"))
	assert.True(t, errors.Is(svc.Delete(context.Background(), "p1"), ErrNotFound))
}
