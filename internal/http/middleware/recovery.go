package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"github.com/incial/workhub-api/internal/domain"
	"go.uber.org/zap"
)

// Recovery returns a middleware that recovers from panics, logs the stack
// trace and responds with a 500 instead of crashing the server.
func Recovery(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rec),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.ByteString("stack", debug.Stack()),
					)

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(domain.APIError{
						Type:   domain.ErrorTypeInternal,
						Title:  http.StatusText(http.StatusInternalServerError),
						Status: http.StatusInternalServerError,
						Detail: "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
