package validation

// Bucket classifies a rule finding.
//
//   - BucketIssue blocks: any issue makes a result invalid.
//   - BucketWarning is scored but not blocking.
//   - BucketSuggestion is advisory only.
type Bucket int

const (
	BucketIssue Bucket = iota
	BucketWarning
	BucketSuggestion
)

// Penalty is subtracted from the running scores when a rule fires.
type Penalty struct {
	Score          int
	Deliverability int
}

// Rule is one (predicate, penalty, bucket) entry of a rule set. Check returns
// the findings for the input; the penalty is applied once when there is at
// least one finding, and every finding is appended to the bucket.
type Rule[T any] struct {
	Name    string
	Bucket  Bucket
	Penalty Penalty
	Check   func(T) []string
}

// Outcome is the state a rule set is folded over.
type Outcome struct {
	Score          int
	Deliverability int
	Issues         []string
	Warnings       []string
	Suggestions    []string
}

// FullScore returns the initial state: both scores at 100, empty buckets.
func FullScore() Outcome {
	return Outcome{
		Score:          100,
		Deliverability: 100,
		Issues:         []string{},
		Warnings:       []string{},
		Suggestions:    []string{},
	}
}

// Fold applies every rule in order. Scores are not clamped here; callers
// clamp once when the fold is complete.
func Fold[T any](rules []Rule[T], in T, start Outcome) Outcome {
	out := start
	for _, r := range rules {
		findings := r.Check(in)
		if len(findings) == 0 {
			continue
		}
		out.Score -= r.Penalty.Score
		out.Deliverability -= r.Penalty.Deliverability
		switch r.Bucket {
		case BucketIssue:
			out.Issues = append(out.Issues, findings...)
		case BucketWarning:
			out.Warnings = append(out.Warnings, findings...)
		default:
			out.Suggestions = append(out.Suggestions, findings...)
		}
	}
	return out
}

// When builds a Check that yields msg whenever pred holds.
func When[T any](pred func(T) bool, msg string) func(T) []string {
	return func(in T) []string {
		if pred(in) {
			return []string{msg}
		}
		return nil
	}
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
