package domain

import "time"

// DeliverabilityCheckSet records which probe gates passed. All four must be
// true before a real send is attempted.
type DeliverabilityCheckSet struct {
	Format bool `json:"format"`
	Domain bool `json:"domain"`
	MX     bool `json:"mx"`
	SMTP   bool `json:"smtp"`
}

// Passed reports whether every gate passed.
func (c DeliverabilityCheckSet) Passed() bool {
	return c.Format && c.Domain && c.MX && c.SMTP
}

// ProbeRequest asks the engine whether mail to To can actually be delivered.
// Template is optional; when set it is rendered with MergeData and sent
// instead of the default probe content.
type ProbeRequest struct {
	To        string         `json:"to"`
	Template  *EmailTemplate `json:"template,omitempty"`
	MergeData map[string]any `json:"merge_data,omitempty"`
}

// ProbeResult is the outcome of a deliverability probe. Checks always
// reflect the gates that passed before any failure.
type ProbeResult struct {
	ProbeID   string                 `json:"probe_id"`
	Success   bool                   `json:"success"`
	MessageID string                 `json:"message_id,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Checks    DeliverabilityCheckSet `json:"checks"`
}

// OutboundMessage is the fully-resolved message handed to a transport.
type OutboundMessage struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// SendReceipt is returned by a transport after accepting a message.
type SendReceipt struct {
	MessageID string    `json:"message_id"`
	SentAt    time.Time `json:"sent_at"`
}
