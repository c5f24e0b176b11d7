package catalog

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/ariefcatur/attic-lounges/internal/availability"
	"github.com/ariefcatur/attic-lounges/internal/clock"
	"github.com/google/uuid"
)

// ListLimit caps GET /api/products.
const ListLimit = 50

type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	List(ctx context.Context, limit int) ([]Product, error)
	Get(ctx context.Context, id string) (Product, error)
	Insert(ctx context.Context, p Product) error
	Update(ctx context.Context, p Product) (Product, error)
	Delete(ctx context.Context, id string) error
	SetAvailability(ctx context.Context, id string, in availability.Intent, at time.Time) (Product, error)
	Count(ctx context.Context) (int64, error)
}

type Service struct {
	store Store
	clock clock.Clock
	log   *slog.Logger
	newID func() string
}

func NewService(store Store, clk clock.Clock, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{store: store, clock: clk, log: logger, newID: uuid.NewString}
}

func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.store.List(ctx, ListLimit)
}

func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	return s.store.Get(ctx, id)
}

// Create stores a new product. Stock defaults to one item when the caller
// leaves it out.
func (s *Service) Create(ctx context.Context, patch Patch) (Product, error) {
	now := s.clock.Now()
	p := Product{ID: s.newID(), Stock: 1, CreatedAt: now, UpdatedAt: now}
	patch.Apply(&p)
	if err := p.Validate(); err != nil {
		return Product{}, err
	}
	if err := s.store.Insert(ctx, p); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, id string, patch Patch) (Product, error) {
	var out Product
	err := s.store.WithTx(ctx, func(txCtx context.Context) error {
		p, err := s.store.Get(txCtx, id)
		if err != nil {
			return err
		}
		patch.Apply(&p)
		if err := p.Validate(); err != nil {
			return err
		}
		p.UpdatedAt = s.clock.Now()
		out, err = s.store.Update(txCtx, p)
		return err
	})
	return out, err
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// SetAvailability is the target of order-driven sync. It is a plain
// assignment, so replays and duplicates are harmless.
func (s *Service) SetAvailability(ctx context.Context, id string, in availability.Intent) (Product, error) {
	p, err := s.store.SetAvailability(ctx, id, in, s.clock.Now())
	if err != nil {
		return Product{}, err
	}
	s.log.Info("product availability set", "product_id", id, "intent", in)
	return p, nil
}

// SeedIfEmpty writes DefaultProducts when the catalogue has no rows.
func (s *Service) SeedIfEmpty(ctx context.Context) (int, error) {
	n, err := s.store.Count(ctx)
	if err != nil || n > 0 {
		return 0, err
	}
	seeded := 0
	err = s.store.WithTx(ctx, func(txCtx context.Context) error {
		base := s.clock.Now()
		defaults := DefaultProducts()
		for i, p := range defaults {
			// later entries sort first, like a fresh insert order
			at := base.Add(time.Duration(i) * time.Millisecond)
			p.ID, p.Stock, p.CreatedAt, p.UpdatedAt = s.newID(), 1, at, at
			if err := p.Validate(); err != nil {
				return err
			}
			if err := s.store.Insert(txCtx, p); err != nil {
				return err
			}
		}
		seeded = len(defaults)
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("seeded default products", "count", seeded)
	return seeded, nil
}
