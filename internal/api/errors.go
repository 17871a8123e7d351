package api

import (
	"errors"
	"net/http"

	"github.com/ignite/deliverability-engine/internal/pkg/httputil"
	"github.com/ignite/deliverability-engine/internal/service/deliverability"
)

func respondJSON(w http.ResponseWriter, status int, data any) {
	httputil.JSON(w, status, data)
}

// respondServiceError maps service sentinels onto status codes. Store
// failures never leak driver messages to the client.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, deliverability.ErrNotFound):
		httputil.NotFound(w, err.Error())
	case errors.Is(err, deliverability.ErrUnknownWindow):
		httputil.BadRequest(w, err.Error())
	case errors.Is(err, deliverability.ErrStoreUnavailable):
		httputil.ServiceUnavailable(w, "event store unavailable", err)
	default:
		httputil.InternalError(w, err)
	}
}
