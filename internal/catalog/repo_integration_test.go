package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/ariefcatur/attic-lounges/internal/availability"
	"github.com/ariefcatur/attic-lounges/internal/catalog"
	"github.com/ariefcatur/attic-lounges/internal/clock"
	"github.com/ariefcatur/attic-lounges/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepo_SeedAndAvailability(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()

	repo := &catalog.Repo{DB: pool}
	svc := catalog.NewService(repo, clock.NewFixed(time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)), nil)

	n, err := svc.SeedIfEmpty(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(catalog.DefaultProducts()), n)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, list)
	id := list[0].ID

	for i := 0; i < 2; i++ {
		p, err := svc.SetAvailability(ctx, id, availability.Sold)
		require.NoError(t, err)
		assert.Equal(t, 0, p.Stock)
		assert.False(t, p.Available)
	}
	p, err := svc.SetAvailability(ctx, id, availability.Available)
	require.NoError(t, err)
	assert.True(t, p.Available)

	_, err = svc.SetAvailability(ctx, "does-not-exist", availability.Sold)
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, id))
	assert.ErrorIs(t, svc.Delete(ctx, id), catalog.ErrNotFound)
}
