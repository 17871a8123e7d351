package domain

import (
	"fmt"
	"time"
)

// SentStatus is the terminal status of a sent email, owned by the event
// store. The engine reads it and never transitions it.
type SentStatus string

const (
	StatusQueued    SentStatus = "queued"
	StatusDelivered SentStatus = "delivered"
	StatusOpened    SentStatus = "opened"
	StatusClicked   SentStatus = "clicked"
	StatusBounced   SentStatus = "bounced"
	StatusFailed    SentStatus = "failed"
	StatusSpam      SentStatus = "spam"
)

// SentEmailRecord is a single persisted send event.
type SentEmailRecord struct {
	ID          string     `json:"id" db:"id"`
	Subject     string     `json:"subject" db:"subject"`
	HTMLContent string     `json:"html_content" db:"html_content"`
	Status      SentStatus `json:"status" db:"status"`
	SentAt      time.Time  `json:"sent_at" db:"sent_at"`
}

// SubscriberStatus is the lifecycle state of a list subscriber.
type SubscriberStatus string

// SubscriberUnsubscribed marks an address that opted out.
const SubscriberUnsubscribed SubscriberStatus = "unsubscribed"

// Window is a trailing time window for health metrics.
type Window string

const (
	Window7d  Window = "7d"
	Window30d Window = "30d"
	Window90d Window = "90d"
)

// ParseWindow converts "7d", "30d" or "90d" into a Window.
func ParseWindow(s string) (Window, error) {
	switch w := Window(s); w {
	case Window7d, Window30d, Window90d:
		return w, nil
	}
	return "", fmt.Errorf("unknown window %q", s)
}

// Duration returns the window length, or 0 for an unknown window.
func (w Window) Duration() time.Duration {
	switch w {
	case Window7d:
		return 7 * 24 * time.Hour
	case Window30d:
		return 30 * 24 * time.Hour
	case Window90d:
		return 90 * 24 * time.Hour
	}
	return 0
}

// HealthMetrics summarizes sending health over a trailing window. Rates are
// percentages rounded to one decimal.
type HealthMetrics struct {
	Window          Window  `json:"window"`
	TotalEmails     int     `json:"total_emails"`
	DeliveredRate   float64 `json:"delivered_rate"`
	OpenRate        float64 `json:"open_rate"`
	ClickRate       float64 `json:"click_rate"`
	BounceRate      float64 `json:"bounce_rate"`
	SpamComplaints  int     `json:"spam_complaints"`
	Unsubscribes    int     `json:"unsubscribes"`
	ReputationScore int     `json:"reputation_score"`

	// Alerts names each reputation penalty that applied.
	Alerts []string `json:"alerts"`
}

// QualityFactors are the four independent 0-100 inputs of a quality score.
type QualityFactors struct {
	Deliverability int `json:"deliverability"`
	Engagement     int `json:"engagement"`
	Content        int `json:"content"`
	Timing         int `json:"timing"`
}

// QualityScore is the composite score for one sent message.
type QualityScore struct {
	SentEmailID     string         `json:"sent_email_id"`
	Score           int            `json:"score"`
	Factors         QualityFactors `json:"factors"`
	Recommendations []string       `json:"recommendations"`
}
