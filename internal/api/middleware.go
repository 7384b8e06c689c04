package api

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dawe014/web-service-integration-assignment/internal/apperr"
	"github.com/dawe014/web-service-integration-assignment/internal/auth"
	"github.com/dawe014/web-service-integration-assignment/internal/validate"
)

type ctxKey int

const claimsKey ctxKey = iota

// ClaimsFromContext returns the verified claims attached by RequireToken.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*auth.Claims)
	return c, ok
}

// RequireToken validates the Authorization: Bearer <token> header.
// A missing header is 401, a malformed one 400, and a well-formed header
// carrying a bad or expired token 401.
func (h *Handlers) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			h.writeError(w, r, apperr.Unauthorized(apperr.MsgMissingAuthHeader))
			return
		}

		token, err := validate.ExtractBearerToken(header)
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		claims, err := h.tokens.Verify(token)
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	})
}

// Recoverer turns a panic in any downstream handler into an Internal error response.
func (h *Handlers) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				h.writeError(w, r, apperr.Internal(&panicError{value: rec, stack: debug.Stack()}))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// LogRequests logs method, path, status and duration of every request.
func (h *Handlers) LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		h.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
