package orders

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ariefcatur/attic-lounges/internal/availability"
	"github.com/ariefcatur/attic-lounges/internal/clock"
	"github.com/ariefcatur/attic-lounges/internal/metrics"
	"github.com/google/uuid"
)

// DefaultPayment is filled into legacy orders that were stored without one.
const DefaultPayment = "bank-transfer"

type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	InsertOrder(ctx context.Context, o Order) error
	GetOrder(ctx context.Context, id string) (Order, error)
	GetOrderForUpdate(ctx context.Context, id string) (Order, error)
	UpdateStatus(ctx context.Context, id string, s Status, at time.Time) (Order, error)
	UpdateDetails(ctx context.Context, id, reference, payment string, at time.Time) (Order, error)
	ListOrders(ctx context.Context) ([]Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]Order, error)
	DeleteLegacyOrders(ctx context.Context) (int64, error)
	EnqueueAvailability(ctx context.Context, intents []AvailabilityIntent) error
}

// Synchronizer tells the product service about availability changes.
type Synchronizer interface {
	SetAvailability(ctx context.Context, productID string, intent availability.Intent) error
}

// Service runs the order lifecycle. Availability follows it either through
// best-effort calls after commit, or through outbox rows written in the same
// transaction (WithOutbox).
type Service struct {
	store   Store
	sync    Synchronizer
	clock   clock.Clock
	outbox  bool
	log     *slog.Logger
	metrics *metrics.Metrics
	newID   func() string
}

type Option func(*Service)

func WithOutbox() Option {
	return func(s *Service) { s.outbox = true }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

func NewService(store Store, sync Synchronizer, clk clock.Clock, opts ...Option) *Service {
	s := &Service{
		store: store,
		sync:  sync,
		clock: clk,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateInput struct {
	UserID    string
	Items     []LineItem
	Reference string
	Payment   string
	Shipping  Shipping
	OrderDate string
}

// StatusConflictError reports a rejected transition together with the status
// the order is stuck in.
type StatusConflictError struct {
	Current Status
}

func (e *StatusConflictError) Error() string { return ErrOrderCancelled.Error() }

func (e *StatusConflictError) Is(target error) bool { return target == ErrOrderCancelled }

func (s *Service) CreateOrder(ctx context.Context, in CreateInput) (Order, error) {
	if in.UserID == "" || len(in.Items) == 0 {
		return Order{}, ErrInvalidPayload
	}

	total, err := ComputeTotal(in.Items)
	if err != nil {
		return Order{}, err
	}

	now := s.clock.Now()
	o := Order{
		ID:        s.newID(),
		Reference: in.Reference,
		UserID:    in.UserID,
		Items:     in.Items,
		Total:     total,
		Payment:   in.Payment,
		Shipping:  in.Shipping,
		OrderDate: in.OrderDate,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if o.Reference == "" {
		o.Reference = ReferenceFor(o.ID)
	}
	intents := s.intentsFor(o, availability.Sold, ReasonOrderCreated)

	err = s.store.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.store.InsertOrder(txCtx, o); err != nil {
			return err
		}
		if s.outbox {
			return s.store.EnqueueAvailability(txCtx, intents)
		}
		return nil
	})
	if err != nil {
		return Order{}, fmt.Errorf("create order: %w", err)
	}
	s.log.Info("order created", "order_id", o.ID, "user_id", o.UserID, "total", o.Total, "items", len(o.Items))

	s.syncAll(ctx, intents)
	return o, nil
}

// UpdateStatus applies an admin status change. Cancelled orders reject every
// change; moving into cancelled releases the order's products.
func (s *Service) UpdateStatus(ctx context.Context, id, target string) (Order, error) {
	to, err := ParseStatus(target)
	if err != nil {
		return Order{}, err
	}

	var (
		updated Order
		from    Status
		intents []AvailabilityIntent
	)
	err = s.store.WithTx(ctx, func(txCtx context.Context) error {
		cur, err := s.store.GetOrderForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		from = cur.Status
		if !from.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownStatus, from)
		}
		if !CanTransition(from, to) {
			return &StatusConflictError{Current: from}
		}

		updated, err = s.store.UpdateStatus(txCtx, id, to, s.clock.Now())
		if err != nil {
			return err
		}
		if to == StatusCancelled && from != StatusCancelled {
			intents = s.intentsFor(updated, availability.Available, ReasonOrderCancelled)
			if s.outbox {
				return s.store.EnqueueAvailability(txCtx, intents)
			}
		}
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	s.log.Info("order status updated", "order_id", id, "from", from, "to", to)

	s.syncAll(ctx, intents)
	return updated, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (Order, error) {
	return s.store.GetOrder(ctx, id)
}

func (s *Service) ListOrders(ctx context.Context) ([]Order, error) {
	return s.store.ListOrders(ctx)
}

func (s *Service) ListOrdersByUser(ctx context.Context, userID string) ([]Order, error) {
	if userID == "" {
		return nil, ErrInvalidPayload
	}
	return s.store.ListOrdersByUser(ctx, userID)
}

// RepairOrder fills the payment method and reference of orders written before
// those fields existed. Complete orders are returned unchanged.
func (s *Service) RepairOrder(ctx context.Context, id string) (Order, error) {
	o, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return Order{}, err
	}
	payment, ref := o.Payment, o.Reference
	if payment == "" {
		payment = DefaultPayment
	}
	if ref == "" {
		ref = ReferenceFor(o.ID)
	}
	if payment == o.Payment && ref == o.Reference {
		return o, nil
	}
	return s.store.UpdateDetails(ctx, id, ref, payment, s.clock.Now())
}

func (s *Service) CleanupLegacyOrders(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteLegacyOrders(ctx)
	if err != nil {
		return 0, err
	}
	s.log.Info("legacy orders removed", "deleted", n)
	return n, nil
}

func (s *Service) intentsFor(o Order, intent availability.Intent, reason string) []AvailabilityIntent {
	for _, it := range o.Items {
		if it.ProductID == "" {
			s.log.Warn("no product id for item", "order_id", o.ID, "item", it.Name)
		}
	}
	ids := o.ProductIDs()
	out := make([]AvailabilityIntent, 0, len(ids))
	for _, pid := range ids {
		out = append(out, AvailabilityIntent{
			EventID:   s.newID(),
			OrderID:   o.ID,
			ProductID: pid,
			Intent:    intent,
			Reason:    reason,
		})
	}
	return out
}

// syncAll makes one attempt per intent. Failures are logged and counted, never
// returned: the order mutation has already committed.
func (s *Service) syncAll(ctx context.Context, intents []AvailabilityIntent) {
	if s.outbox || s.sync == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, in := range intents {
		err := s.sync.SetAvailability(ctx, in.ProductID, in.Intent)
		s.metrics.ObserveSync(string(in.Intent), err)
		if err != nil {
			s.log.Warn("product availability update failed",
				"order_id", in.OrderID, "product_id", in.ProductID, "intent", in.Intent, "err", err)
			continue
		}
		s.log.Info("product availability updated",
			"order_id", in.OrderID, "product_id", in.ProductID, "intent", in.Intent)
	}
}
