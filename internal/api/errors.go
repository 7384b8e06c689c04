package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dawe014/web-service-integration-assignment/internal/apperr"
)

// panicError carries a recovered panic and the stack it was raised on.
type panicError struct {
	value any
	stack []byte
}

func (p *panicError) Error() string { return fmt.Sprintf("panic: %v", p.value) }

type errorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// writeError is the single place failures turn into HTTP responses. Callers
// only ever see the taxonomy's message and status; diagnostic detail is added
// in development.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ae := apperr.From(err)

	if ae.Operational {
		h.log.Warn("operational error",
			"message", ae.Message,
			"method", r.Method,
			"path", r.URL.Path,
		)
	} else {
		h.log.Error("unexpected error",
			"err", err,
			"method", r.Method,
			"path", r.URL.Path,
		)
	}

	body := errorBody{Success: false, Message: ae.Message}
	if h.dev {
		var pe *panicError
		if errors.As(err, &pe) {
			body.Stack = string(pe.stack)
		} else {
			body.Stack = err.Error()
		}
	}

	writeJSON(w, ae.Status(), body)
}
