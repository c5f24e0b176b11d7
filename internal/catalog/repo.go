package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/attic-lounges/internal/availability"
	"github.com/ariefcatur/attic-lounges/internal/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

const productColumns = `id, name, description, price, image, category, condition, size, brand, stock, available, created_at, updated_at`

// List returns the newest products first.
func (r *Repo) List(ctx context.Context, limit int) ([]Product, error) {
	rows, err := postgres.Conn(ctx, r.DB).Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id string) (Product, error) {
	return scanProduct(postgres.Conn(ctx, r.DB).QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id=$1`, id))
}

func (r *Repo) Insert(ctx context.Context, p Product) error {
	_, err := postgres.Conn(ctx, r.DB).Exec(ctx, `
		INSERT INTO products(`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		p.ID, p.Name, p.Description, p.Price, p.Image, p.Category, p.Condition, p.Size, p.Brand,
		p.Stock, p.Available, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *Repo) Update(ctx context.Context, p Product) (Product, error) {
	return scanProduct(postgres.Conn(ctx, r.DB).QueryRow(ctx, `
		UPDATE products SET name=$2, description=$3, price=$4, image=$5, category=$6, condition=$7,
			size=$8, brand=$9, stock=$10, available=$11, updated_at=$12
		WHERE id=$1
		RETURNING `+productColumns,
		p.ID, p.Name, p.Description, p.Price, p.Image, p.Category, p.Condition, p.Size, p.Brand,
		p.Stock, p.Available, p.UpdatedAt,
	))
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	tag, err := postgres.Conn(ctx, r.DB).Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetAvailability assigns stock and available in one statement. Repeating it
// leaves the row unchanged.
func (r *Repo) SetAvailability(ctx context.Context, id string, in availability.Intent, at time.Time) (Product, error) {
	var p Product
	p.ApplyIntent(in)
	return scanProduct(postgres.Conn(ctx, r.DB).QueryRow(ctx, `
		UPDATE products SET stock=$2, available=$3, updated_at=$4
		WHERE id=$1
		RETURNING `+productColumns, id, p.Stock, p.Available, at))
}

func (r *Repo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := postgres.Conn(ctx, r.DB).QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

func (r *Repo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return postgres.WithTx(ctx, r.DB, fn)
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Image, &p.Category, &p.Condition,
		&p.Size, &p.Brand, &p.Stock, &p.Available, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("scan product: %w", err)
	}
	return p, nil
}
