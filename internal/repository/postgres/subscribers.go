package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ignite/deliverability-engine/internal/domain"
)

// SubscriberRepo implements deliverability.SubscriberStore against PostgreSQL.
type SubscriberRepo struct{ db *sql.DB }

// NewSubscriberRepo creates a Postgres-backed subscriber repository.
func NewSubscriberRepo(db *sql.DB) *SubscriberRepo { return &SubscriberRepo{db: db} }

func (r *SubscriberRepo) CountUnsubscribed(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM mailing_subscribers WHERE status = $1 AND unsubscribed_at >= $2`,
		string(domain.SubscriberUnsubscribed), since,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count unsubscribed: %w", err)
	}
	return n, nil
}
