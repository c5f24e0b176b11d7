package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/attic-lounges/internal/outbox"
	"github.com/ariefcatur/attic-lounges/internal/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo stores orders in Postgres. Line items live in a JSONB column as an
// embedded snapshot.
type Repo struct {
	DB       *pgxpool.Pool
	Producer string // envelope producer name for outbox rows
}

const orderColumns = `id, reference, user_id, items, total, payment, shipping_method, order_date, status, created_at, updated_at`

func (r *Repo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return postgres.WithTx(ctx, r.DB, fn)
}

func (r *Repo) InsertOrder(ctx context.Context, o Order) error {
	_, err := postgres.Conn(ctx, r.DB).Exec(ctx, `
		INSERT INTO orders(id, reference, user_id, items, total, payment, shipping_method, order_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		o.ID, o.Reference, o.UserID, o.Items, o.Total, o.Payment, o.Shipping.Method, o.OrderDate, string(o.Status), o.CreatedAt, o.UpdatedAt,
	)
	if postgres.IsUniqueViolation(err) {
		return ErrDuplicateOrder
	}
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *Repo) GetOrder(ctx context.Context, id string) (Order, error) {
	row := postgres.Conn(ctx, r.DB).QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id)
	return scanOrder(row)
}

// GetOrderForUpdate locks the row until the surrounding transaction ends.
func (r *Repo) GetOrderForUpdate(ctx context.Context, id string) (Order, error) {
	row := postgres.Conn(ctx, r.DB).QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1 FOR UPDATE`, id)
	return scanOrder(row)
}

func (r *Repo) UpdateStatus(ctx context.Context, id string, s Status, at time.Time) (Order, error) {
	row := postgres.Conn(ctx, r.DB).QueryRow(ctx, `
		UPDATE orders SET status=$2, updated_at=$3 WHERE id=$1
		RETURNING `+orderColumns, id, string(s), at)
	return scanOrder(row)
}

func (r *Repo) UpdateDetails(ctx context.Context, id, reference, payment string, at time.Time) (Order, error) {
	row := postgres.Conn(ctx, r.DB).QueryRow(ctx, `
		UPDATE orders SET reference=$2, payment=$3, updated_at=$4 WHERE id=$1
		RETURNING `+orderColumns, id, reference, payment, at)
	return scanOrder(row)
}

func (r *Repo) ListOrders(ctx context.Context) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

func (r *Repo) ListOrdersByUser(ctx context.Context, userID string) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id=$1 ORDER BY created_at DESC`, userID)
}

// DeleteLegacyOrders removes orders left behind by the old placeholder user
// ids (user-001, user-002, ...).
func (r *Repo) DeleteLegacyOrders(ctx context.Context) (int64, error) {
	tag, err := postgres.Conn(ctx, r.DB).Exec(ctx, `DELETE FROM orders WHERE user_id ~ '^user-[0-9]+$'`)
	if err != nil {
		return 0, fmt.Errorf("delete legacy orders: %w", err)
	}
	return tag.RowsAffected(), nil
}

// EnqueueAvailability writes one outbox row per intent. Call it inside the
// transaction that mutates the order.
func (r *Repo) EnqueueAvailability(ctx context.Context, intents []AvailabilityIntent) error {
	q := postgres.Conn(ctx, r.DB)
	for _, in := range intents {
		env, err := in.Envelope(r.Producer, time.Now())
		if err != nil {
			return fmt.Errorf("build envelope: %w", err)
		}
		if err := outbox.Insert(ctx, q, env.EventID, TopicAvailability, PartitionKey(in.ProductID), env); err != nil {
			return fmt.Errorf("enqueue %s for %s: %w", in.Intent, in.ProductID, err)
		}
	}
	return nil
}

func (r *Repo) list(ctx context.Context, sql string, args ...any) ([]Order, error) {
	rows, err := postgres.Conn(ctx, r.DB).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func scanOrder(row pgx.Row) (Order, error) {
	var (
		o      Order
		status string
	)
	err := row.Scan(&o.ID, &o.Reference, &o.UserID, &o.Items, &o.Total, &o.Payment,
		&o.Shipping.Method, &o.OrderDate, &status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, fmt.Errorf("scan order: %w", err)
	}
	o.Status = Status(status)
	if o.Items == nil {
		o.Items = []LineItem{}
	}
	return o, nil
}
