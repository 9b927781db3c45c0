package middleware

import (
	"context"
	"net/http"
	"regexp"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type ctxKey int

const RequestIDKey ctxKey = iota

// inboundIDPattern bounds what we accept from callers as a request id.
var inboundIDPattern = regexp.MustCompile(`^[0-9A-Za-z/_.-]{1,64}$`)

// RequestID propagates a request id to our context key and echoes it in the
// response. A well-formed X-Request-Id supplied by the caller (the browser
// extension sends one per lookup) wins over chi's generated id so traces
// line up end to end. Must be used AFTER chi's RequestID middleware.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if !inboundIDPattern.MatchString(requestID) {
			requestID = chimw.GetReqID(r.Context())
		}
		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		w.Header().Set("X-Request-Id", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID from context.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
