package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/libraria-backend/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// RequestID tags every request with a correlation id. A caller-supplied
// X-Request-Id is honored only when it is a valid UUID; anything else is
// replaced so downstream logs cannot be polluted with arbitrary strings.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := requestIDFrom(r)
			w.Header().Set(requestIDHeader, reqID)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requestIDFrom(r *http.Request) string {
	if raw := r.Header.Get(requestIDHeader); raw != "" {
		if _, err := uuid.Parse(raw); err == nil {
			return raw
		}
	}
	return uuid.NewString()
}
