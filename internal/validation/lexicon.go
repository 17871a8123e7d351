package validation

import "strings"

// Lexicon holds the replaceable word lists the scorers match against.
// The defaults are short illustrative samples, not an exhaustive list.
type Lexicon struct {
	SpamTerms          []string `yaml:"spam_terms" json:"spam_terms"`
	LinkShorteners     []string `yaml:"link_shorteners" json:"link_shorteners"`
	DisposableDomains  []string `yaml:"disposable_domains" json:"disposable_domains"`
	UnsubscribeMarkers []string `yaml:"unsubscribe_markers" json:"unsubscribe_markers"`
	AddressMarkers     []string `yaml:"address_markers" json:"address_markers"`
	ResponsiveMarkers  []string `yaml:"responsive_markers" json:"responsive_markers"`
	SubjectMaxLength   int      `yaml:"subject_max_length" json:"subject_max_length"`
}

// DefaultLexicon returns the built-in lists.
func DefaultLexicon() Lexicon {
	return Lexicon{
		SpamTerms:          []string{"free", "winner", "act now", "click here"},
		LinkShorteners:     []string{"bit.ly", "tinyurl.com"},
		DisposableDomains:  []string{"10minutemail.com", "tempmail.org", "guerrillamail.com", "mailinator.com"},
		UnsubscribeMarkers: []string{"unsubscribe"},
		AddressMarkers:     []string{"address"},
		ResponsiveMarkers:  []string{"@media", "viewport"},
		SubjectMaxLength:   50,
	}
}

// withDefaults fills empty lists from DefaultLexicon and lower-cases and
// de-duplicates every entry.
func (l Lexicon) withDefaults() Lexicon {
	d := DefaultLexicon()
	pick := func(v, def []string) []string {
		if len(v) == 0 {
			v = def
		}
		return normalizeTerms(v)
	}
	out := Lexicon{
		SpamTerms:          pick(l.SpamTerms, d.SpamTerms),
		LinkShorteners:     pick(l.LinkShorteners, d.LinkShorteners),
		DisposableDomains:  pick(l.DisposableDomains, d.DisposableDomains),
		UnsubscribeMarkers: pick(l.UnsubscribeMarkers, d.UnsubscribeMarkers),
		AddressMarkers:     pick(l.AddressMarkers, d.AddressMarkers),
		ResponsiveMarkers:  pick(l.ResponsiveMarkers, d.ResponsiveMarkers),
		SubjectMaxLength:   l.SubjectMaxLength,
	}
	if out.SubjectMaxLength <= 0 {
		out.SubjectMaxLength = d.SubjectMaxLength
	}
	return out
}

func normalizeTerms(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
