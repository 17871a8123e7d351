package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ignite/deliverability-engine/internal/domain"
	"github.com/ignite/deliverability-engine/internal/service/deliverability"
	"github.com/lib/pq"
)

// EventRepo implements deliverability.EventStore against PostgreSQL.
type EventRepo struct{ db *sql.DB }

// NewEventRepo creates a Postgres-backed sent-email event repository.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) CountSent(ctx context.Context, f deliverability.CountFilter) (int, error) {
	var (
		n   int
		err error
	)
	if len(f.Statuses) == 0 {
		err = r.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM mailing_sent_emails WHERE sent_at >= $1`,
			f.Since,
		).Scan(&n)
	} else {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		err = r.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM mailing_sent_emails WHERE sent_at >= $1 AND status = ANY($2)`,
			f.Since, pq.Array(statuses),
		).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("count sent emails: %w", err)
	}
	return n, nil
}

func (r *EventRepo) GetSentByID(ctx context.Context, id string) (*domain.SentEmailRecord, error) {
	var rec domain.SentEmailRecord
	err := r.db.QueryRowContext(ctx, `
		SELECT id, subject, html_content, status, sent_at
		FROM mailing_sent_emails
		WHERE id = $1
	`, id).Scan(&rec.ID, &rec.Subject, &rec.HTMLContent, &rec.Status, &rec.SentAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get sent email: %w", err)
	}
	return &rec, nil
}
