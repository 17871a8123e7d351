package deliverability

import (
	"context"
	"fmt"
	"math"

	"github.com/ignite/deliverability-engine/internal/domain"
	"github.com/ignite/deliverability-engine/internal/validation"
)

var deliverabilityFactor = map[domain.SentStatus]int{
	domain.StatusDelivered: 100,
	domain.StatusOpened:    100,
	domain.StatusClicked:   100,
	domain.StatusQueued:    50,
	domain.StatusFailed:    20,
	domain.StatusBounced:   0,
	domain.StatusSpam:      0,
}

var engagementFactor = map[domain.SentStatus]int{
	domain.StatusClicked:   100,
	domain.StatusOpened:    60,
	domain.StatusDelivered: 20,
}

var recommendationRules = []validation.Rule[domain.QualityFactors]{
	{
		Name:   "deliverability",
		Bucket: validation.BucketSuggestion,
		Check: validation.When(func(f domain.QualityFactors) bool {
			return f.Deliverability < 50
		}, "Improve list hygiene and sender authentication to raise deliverability"),
	},
	{
		Name:   "engagement",
		Bucket: validation.BucketSuggestion,
		Check: validation.When(func(f domain.QualityFactors) bool {
			return f.Engagement < 30
		}, "Test subject lines and personalization to lift engagement"),
	},
	{
		Name:   "content",
		Bucket: validation.BucketSuggestion,
		Check: validation.When(func(f domain.QualityFactors) bool {
			return f.Content < 70
		}, "Resolve template validation findings before the next send"),
	},
	{
		Name:   "timing",
		Bucket: validation.BucketSuggestion,
		Check: validation.When(func(f domain.QualityFactors) bool {
			return f.Timing < 60
		}, "Schedule sends between 9 and 11 AM for higher engagement"),
	},
}

// QualityScorer blends deliverability, engagement, content and timing into
// one score for a sent message.
type QualityScorer struct {
	events    EventStore
	templates TemplateScorer
}

// NewQualityScorer creates a scorer reading records from events and
// re-validating their content with templates.
func NewQualityScorer(events EventStore, templates TemplateScorer) *QualityScorer {
	return &QualityScorer{events: events, templates: templates}
}

// QualityScore scores the sent email with the given id. It returns
// ErrNotFound when no record matches.
func (q *QualityScorer) QualityScore(ctx context.Context, sentEmailID string) (domain.QualityScore, error) {
	rec, err := q.events.GetSentByID(ctx, sentEmailID)
	if err != nil {
		return domain.QualityScore{}, fmt.Errorf("%w: get sent email %s: %w", ErrStoreUnavailable, sentEmailID, err)
	}
	if rec == nil {
		return domain.QualityScore{}, fmt.Errorf("%w: %s", ErrNotFound, sentEmailID)
	}

	content := q.templates.ValidateTemplate(domain.EmailTemplate{
		Subject:     rec.Subject,
		HTMLContent: rec.HTMLContent,
	})

	f := domain.QualityFactors{
		Deliverability: deliverabilityFactor[rec.Status],
		Engagement:     engagementFactor[rec.Status],
		Content:        content.Score,
		Timing:         timingFactor(rec.SentAt.Hour()),
	}

	out := validation.Fold(recommendationRules, f, validation.FullScore())
	mean := float64(f.Deliverability+f.Engagement+f.Content+f.Timing) / 4

	return domain.QualityScore{
		SentEmailID:     rec.ID,
		Score:           int(math.Round(mean)),
		Factors:         f,
		Recommendations: out.Suggestions,
	}, nil
}

// timingFactor scores the hour a message was sent.
func timingFactor(hour int) int {
	switch {
	case hour >= 9 && hour < 11:
		return 100
	case hour >= 14 && hour < 16:
		return 80
	case hour >= 7 && hour < 9:
		return 70
	case hour >= 18 && hour < 20:
		return 60
	default:
		return 50
	}
}
