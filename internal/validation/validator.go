package validation

import (
	"regexp"
	"strings"
	"unicode"
)

// addressPattern requires exactly one "@", a non-empty local part and a
// dot-separated domain, with no whitespace anywhere.
var addressPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidFormat reports whether address passes the syntax check. It does no
// DNS work and never panics.
func IsValidFormat(address string) bool {
	return addressPattern.MatchString(address)
}

// Validator scores templates and address lists against a Lexicon.
type Validator struct {
	lex           Lexicon
	disposable    map[string]struct{}
	templateRules []Rule[TemplateInput]
}

// New builds a Validator. Empty lexicon lists fall back to DefaultLexicon.
func New(lex Lexicon) *Validator {
	lex = lex.withDefaults()
	disposable := make(map[string]struct{}, len(lex.DisposableDomains))
	for _, d := range lex.DisposableDomains {
		disposable[d] = struct{}{}
	}
	return &Validator{
		lex:           lex,
		disposable:    disposable,
		templateRules: TemplateRules(lex),
	}
}

// Lexicon returns the normalized lists the validator was built with.
func (v *Validator) Lexicon() Lexicon { return v.lex }

// IsValidFormat is the method form of the package-level check.
func (v *Validator) IsValidFormat(address string) bool { return IsValidFormat(address) }

// SpamScore scores subject+body on a 0-10 scale:
//
//	+1 per distinct lexicon term present
//	+2 when more than 30% of letters are upper case
//	+1 when there are more than three "!"
//	+1 per link shortener present
func (v *Validator) SpamScore(subject, htmlContent string) int {
	text := subject + " " + htmlContent
	lower := strings.ToLower(text)

	score := 0
	for _, term := range v.lex.SpamTerms {
		if strings.Contains(lower, term) {
			score++
		}
	}

	letters, upper := 0, 0
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.IsUpper(r) {
			upper++
		}
	}
	if letters > 0 && float64(upper)/float64(letters) > 0.3 {
		score += 2
	}

	if strings.Count(text, "!") > 3 {
		score++
	}

	for _, s := range v.lex.LinkShorteners {
		if strings.Contains(lower, s) {
			score++
		}
	}

	return Clamp(score, 0, 10)
}
