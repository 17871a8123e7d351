package deliverability

import "errors"

// Sentinel errors for the deliverability service layer.
var (
	ErrNotFound         = errors.New("sent email not found")
	ErrUnknownWindow    = errors.New("unknown metrics window")
	ErrStoreUnavailable = errors.New("event store unavailable")
)
