package deliverability

import (
	"context"
	"time"

	"github.com/ignite/deliverability-engine/internal/domain"
)

// ReputationOracle returns a 0-100 trust score for a recipient domain.
type ReputationOracle interface {
	ScoreDomain(ctx context.Context, domain string) (float64, error)
}

// MXChecker reports whether a domain resolves a mail exchanger.
type MXChecker interface {
	HasMX(ctx context.Context, domain string) (bool, error)
}

// SessionChecker reports whether a transport session can be opened to a
// domain's mail exchanger.
type SessionChecker interface {
	CanConnect(ctx context.Context, domain string) (bool, error)
}

// Transport delivers a single message. Implementations must be safe for
// concurrent use.
type Transport interface {
	Send(ctx context.Context, msg domain.OutboundMessage) (domain.SendReceipt, error)
}

// TemplateRenderer resolves merge tags in a template.
type TemplateRenderer interface {
	Render(t domain.EmailTemplate, data map[string]any) (domain.EmailTemplate, error)
}

// TemplateScorer re-validates stored content for the quality score.
type TemplateScorer interface {
	ValidateTemplate(t domain.EmailTemplate) domain.ValidationResult
}

// CountFilter selects sent-email records. An empty Statuses matches every
// status.
type CountFilter struct {
	Statuses []domain.SentStatus
	Since    time.Time
}

// EventStore is the read-only view of persisted send events.
type EventStore interface {
	// CountSent counts records with sent_at >= filter.Since.
	CountSent(ctx context.Context, filter CountFilter) (int, error)

	// GetSentByID returns nil, nil when no record matches.
	GetSentByID(ctx context.Context, id string) (*domain.SentEmailRecord, error)
}

// SubscriberStore is the read-only view of the subscriber table.
type SubscriberStore interface {
	CountUnsubscribed(ctx context.Context, since time.Time) (int, error)
}
