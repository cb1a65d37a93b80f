package middleware

import (
	"net/http"
	"time"

	"github.com/jobboard/internal/logger"
)

// RequestLog logs method, path and duration of each request. Logging is
// async and does not block the handler.
func RequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		defer logger.DeferLogDuration("http "+r.Method+" "+r.URL.Path, start)()
		next.ServeHTTP(w, r)
	})
}
