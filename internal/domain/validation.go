package domain

// ValidationResult is the quality report for a single template.
// IsValid is true iff Issues is empty; warnings and suggestions only move
// the scores.
type ValidationResult struct {
	IsValid             bool     `json:"is_valid"`
	Score               int      `json:"score"`
	Issues              []string `json:"issues"`
	Warnings            []string `json:"warnings"`
	Suggestions         []string `json:"suggestions"`
	SpamScore           int      `json:"spam_score"`
	DeliverabilityScore int      `json:"deliverability_score"`
}

// ListValidationReport partitions a raw address list into four disjoint
// buckets. Every input entry lands in exactly one bucket.
type ListValidationReport struct {
	Valid      []string    `json:"valid"`
	Invalid    []string    `json:"invalid"`
	Duplicates []string    `json:"duplicates"`
	Disposable []string    `json:"disposable"`
	Report     ListSummary `json:"report"`
}

// ListSummary holds the bucket counts for a ListValidationReport.
type ListSummary struct {
	Total           int     `json:"total"`
	ValidCount      int     `json:"valid_count"`
	InvalidCount    int     `json:"invalid_count"`
	DuplicateCount  int     `json:"duplicate_count"`
	DisposableCount int     `json:"disposable_count"`
	ValidityRate    float64 `json:"validity_rate"`
}
