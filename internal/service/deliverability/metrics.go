package deliverability

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ignite/deliverability-engine/internal/domain"
	"github.com/ignite/deliverability-engine/internal/validation"
	"golang.org/x/sync/errgroup"
)

var (
	deliveredStatuses = []domain.SentStatus{domain.StatusDelivered, domain.StatusOpened, domain.StatusClicked}
	openedStatuses    = []domain.SentStatus{domain.StatusOpened, domain.StatusClicked}
	clickedStatuses   = []domain.SentStatus{domain.StatusClicked}
	bouncedStatuses   = []domain.SentStatus{domain.StatusBounced}
	spamStatuses      = []domain.SentStatus{domain.StatusSpam}
)

// reputationRules penalize the sending reputation. Rate rules only fire
// when there is traffic to judge.
var reputationRules = []validation.Rule[domain.HealthMetrics]{
	{
		Name:    "bounce_rate",
		Bucket:  validation.BucketWarning,
		Penalty: validation.Penalty{Score: 20},
		Check: validation.When(func(m domain.HealthMetrics) bool {
			return m.BounceRate > 5
		}, "Bounce rate above 5%"),
	},
	{
		Name:    "spam_complaints",
		Bucket:  validation.BucketWarning,
		Penalty: validation.Penalty{Score: 30},
		Check: validation.When(func(m domain.HealthMetrics) bool {
			return m.SpamComplaints > 0
		}, "Spam complaints received"),
	},
	{
		Name:    "delivered_rate",
		Bucket:  validation.BucketWarning,
		Penalty: validation.Penalty{Score: 15},
		Check: validation.When(func(m domain.HealthMetrics) bool {
			return m.TotalEmails > 0 && m.DeliveredRate < 90
		}, "Delivered rate below 90%"),
	},
	{
		Name:    "open_rate",
		Bucket:  validation.BucketWarning,
		Penalty: validation.Penalty{Score: 10},
		Check: validation.When(func(m domain.HealthMetrics) bool {
			return m.TotalEmails > 0 && m.OpenRate < 20
		}, "Open rate below 20%"),
	},
}

// MetricsAggregator computes sending health over a trailing window. Metrics
// are recomputed on every call.
type MetricsAggregator struct {
	events      EventStore
	subscribers SubscriberStore
	now         func() time.Time
}

// NewMetricsAggregator creates an aggregator over the given stores.
func NewMetricsAggregator(events EventStore, subscribers SubscriberStore) *MetricsAggregator {
	return &MetricsAggregator{events: events, subscribers: subscribers, now: time.Now}
}

// HealthMetrics counts send events since now-window and derives rates and a
// reputation score. Counts are independent and run concurrently.
func (a *MetricsAggregator) HealthMetrics(ctx context.Context, window domain.Window) (domain.HealthMetrics, error) {
	span := window.Duration()
	if span == 0 {
		return domain.HealthMetrics{}, fmt.Errorf("%w: %q", ErrUnknownWindow, window)
	}
	since := a.now().Add(-span)

	var total, delivered, opened, clicked, bounced, spam, unsubscribed int

	g, gctx := errgroup.WithContext(ctx)
	count := func(name string, dst *int, statuses []domain.SentStatus) {
		g.Go(func() error {
			n, err := a.events.CountSent(gctx, CountFilter{Statuses: statuses, Since: since})
			if err != nil {
				return fmt.Errorf("%w: count %s: %w", ErrStoreUnavailable, name, err)
			}
			*dst = n
			return nil
		})
	}
	count("total", &total, nil)
	count("delivered", &delivered, deliveredStatuses)
	count("opened", &opened, openedStatuses)
	count("clicked", &clicked, clickedStatuses)
	count("bounced", &bounced, bouncedStatuses)
	count("spam", &spam, spamStatuses)
	g.Go(func() error {
		n, err := a.subscribers.CountUnsubscribed(gctx, since)
		if err != nil {
			return fmt.Errorf("%w: count unsubscribed: %w", ErrStoreUnavailable, err)
		}
		unsubscribed = n
		return nil
	})

	if err := g.Wait(); err != nil {
		return domain.HealthMetrics{}, err
	}

	m := domain.HealthMetrics{
		Window:         window,
		TotalEmails:    total,
		DeliveredRate:  percent(delivered, total),
		OpenRate:       percent(opened, delivered),
		ClickRate:      percent(clicked, delivered),
		BounceRate:     percent(bounced, total),
		SpamComplaints: spam,
		Unsubscribes:   unsubscribed,
	}

	start := validation.FullScore()
	out := validation.Fold(reputationRules, m, start)
	m.ReputationScore = validation.Clamp(out.Score, 0, 100)
	m.Alerts = out.Warnings
	return m, nil
}

// percent returns n/d as a percentage rounded to one decimal, or 0 when d
// is 0.
func percent(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return math.Round(float64(n)/float64(d)*1000) / 10
}
