package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"wagecore/internal/requestctx"
)

const requestIDHeader = "X-Request-ID"

// RequestID assigns every request an id, honoring one the client already
// sent, and echoes it on the response so callers can correlate.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(requestctx.WithRequestID(r.Context(), id)))
	})
}

func GetRequestID(ctx context.Context) string {
	return requestctx.GetRequestID(ctx)
}
