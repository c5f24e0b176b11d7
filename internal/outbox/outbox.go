package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/attic-lounges/internal/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrDuplicateEvent = errors.New("outbox event already recorded")

type Record struct {
	ID        int64           `json:"id"`
	EventID   string          `json:"event_id"`
	Topic     string          `json:"topic"`
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	Attempts  int             `json:"attempts"`
	CreatedAt time.Time       `json:"created_at"`
	SentAt    *time.Time      `json:"sent_at"`
}

// Insert adds a pending record using q, which may be a transaction.
func Insert(ctx context.Context, q postgres.Querier, eventID, topic, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx, `INSERT INTO outbox(event_id, topic, key, payload) VALUES ($1, $2, $3, $4)`, eventID, topic, key, data)
	if postgres.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrDuplicateEvent, eventID)
	}
	return err
}

// PgStore is the relay's view of the outbox table.
type PgStore struct{ DB *pgxpool.Pool }

func (s *PgStore) FetchPending(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, event_id, topic, key, payload, attempts, created_at, sent_at
		FROM outbox WHERE sent_at IS NULL ORDER BY id LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.EventID, &rec.Topic, &rec.Key, &rec.Payload, &rec.Attempts, &rec.CreatedAt, &rec.SentAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *PgStore) MarkSent(ctx context.Context, id int64) error {
	_, err := s.DB.Exec(ctx, `UPDATE outbox SET sent_at=now(), attempts=attempts+1 WHERE id=$1`, id)
	return err
}

func (s *PgStore) MarkFailed(ctx context.Context, id int64) error {
	_, err := s.DB.Exec(ctx, `UPDATE outbox SET attempts=attempts+1 WHERE id=$1`, id)
	return err
}
