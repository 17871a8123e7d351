package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ignite/deliverability-engine/internal/domain"
)

var (
	imgTagPattern  = regexp.MustCompile(`(?i)<img\b[^>]*>`)
	altAttrPattern = regexp.MustCompile(`(?i)\salt\s*=`)
)

// TemplateInput is what template rules are evaluated against. The spam score
// and lower-cased body are computed once per validation.
type TemplateInput struct {
	Template  domain.EmailTemplate
	SpamScore int
	lowerHTML string
}

// NewTemplateInput prepares a template for rule evaluation.
func NewTemplateInput(t domain.EmailTemplate, spamScore int) TemplateInput {
	return TemplateInput{
		Template:  t,
		SpamScore: spamScore,
		lowerHTML: strings.ToLower(t.HTMLContent),
	}
}

// TemplateRules returns the ordered template rule set for lex.
func TemplateRules(lex Lexicon) []Rule[TemplateInput] {
	lex = lex.withDefaults()
	maxSubject := lex.SubjectMaxLength

	return []Rule[TemplateInput]{
		{
			Name:    "subject_required",
			Bucket:  BucketIssue,
			Penalty: Penalty{Score: 20},
			Check: When(func(in TemplateInput) bool {
				return strings.TrimSpace(in.Template.Subject) == ""
			}, "Subject line is required"),
		},
		{
			Name:    "subject_length",
			Bucket:  BucketWarning,
			Penalty: Penalty{Score: 5, Deliverability: 10},
			Check: When(func(in TemplateInput) bool {
				return utf8.RuneCountInString(in.Template.Subject) > maxSubject
			}, fmt.Sprintf("Subject line is longer than %d characters and may be truncated", maxSubject)),
		},
		{
			Name:    "html_required",
			Bucket:  BucketIssue,
			Penalty: Penalty{Score: 30},
			Check: When(func(in TemplateInput) bool {
				return strings.TrimSpace(in.Template.HTMLContent) == ""
			}, "HTML content is required"),
		},
		{
			Name:    "unsubscribe_link",
			Bucket:  BucketWarning,
			Penalty: Penalty{Score: 5, Deliverability: 15},
			Check: When(func(in TemplateInput) bool {
				return !containsAny(in.lowerHTML, lex.UnsubscribeMarkers)
			}, "Missing unsubscribe link (required by CAN-SPAM)"),
		},
		{
			Name:    "company_address",
			Bucket:  BucketWarning,
			Penalty: Penalty{Score: 10, Deliverability: 10},
			Check: When(func(in TemplateInput) bool {
				return !containsAny(in.lowerHTML, lex.AddressMarkers)
			}, "Missing company postal address"),
		},
		{
			Name:   "responsive_layout",
			Bucket: BucketSuggestion,
			Check: When(func(in TemplateInput) bool {
				return !containsAny(in.lowerHTML, lex.ResponsiveMarkers)
			}, "Add a viewport meta tag or media queries for mobile rendering"),
		},
		{
			Name:   "image_alt_text",
			Bucket: BucketSuggestion,
			Check:  imagesMissingAlt,
		},
		{
			Name:   "plain_text_part",
			Bucket: BucketSuggestion,
			Check: When(func(in TemplateInput) bool {
				return strings.TrimSpace(in.Template.TextContent) == ""
			}, "Add a plain-text version for clients that do not render HTML"),
		},
		{
			Name:    "spam_score_high",
			Bucket:  BucketIssue,
			Penalty: Penalty{Score: 15, Deliverability: 20},
			Check: func(in TemplateInput) []string {
				if in.SpamScore > 5 {
					return []string{fmt.Sprintf("High spam score (%d/10)", in.SpamScore)}
				}
				return nil
			},
		},
		{
			Name:    "spam_score_elevated",
			Bucket:  BucketWarning,
			Penalty: Penalty{Score: 5},
			Check: func(in TemplateInput) []string {
				if in.SpamScore > 3 && in.SpamScore <= 5 {
					return []string{fmt.Sprintf("Elevated spam score (%d/10)", in.SpamScore)}
				}
				return nil
			},
		},
	}
}

func imagesMissingAlt(in TemplateInput) []string {
	var out []string
	for i, tag := range imgTagPattern.FindAllString(in.Template.HTMLContent, -1) {
		if !altAttrPattern.MatchString(tag) {
			out = append(out, fmt.Sprintf("Image %d is missing alt text", i+1))
		}
	}
	return out
}

// ValidateTemplate scores a template. Scores start at 100, rule penalties are
// folded in order and the result is clamped once to [0, 100].
func (v *Validator) ValidateTemplate(t domain.EmailTemplate) domain.ValidationResult {
	spam := v.SpamScore(t.Subject, t.HTMLContent)
	out := Fold(v.templateRules, NewTemplateInput(t, spam), FullScore())

	return domain.ValidationResult{
		IsValid:             len(out.Issues) == 0,
		Score:               Clamp(out.Score, 0, 100),
		Issues:              out.Issues,
		Warnings:            out.Warnings,
		Suggestions:         out.Suggestions,
		SpamScore:           spam,
		DeliverabilityScore: Clamp(out.Deliverability, 0, 100),
	}
}
