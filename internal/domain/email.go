package domain

import "strings"

// EmailTemplate is a caller-composed message body. It is validated by value
// and never mutated by the engine.
type EmailTemplate struct {
	Subject     string `json:"subject"`
	HTMLContent string `json:"html_content"`
	TextContent string `json:"text_content,omitempty"`
}

// NormalizeAddress trims and lower-cases an address. Addresses are never
// compared or stored in any other form.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// DomainOf returns the normalized part after the last "@", or "" when the
// address has none.
func DomainOf(address string) string {
	address = NormalizeAddress(address)
	at := strings.LastIndex(address, "@")
	if at < 0 {
		return ""
	}
	return address[at+1:]
}
