package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/comanda-pos/backend/api/responses"
	pkgerrors "github.com/comanda-pos/backend/pkg/errors"
	"github.com/comanda-pos/backend/pkg/logger"
	"github.com/comanda-pos/backend/pkg/metrics"
)

// RequestLogger attaches a request-scoped logger and emits one line per
// request with method, path, status and latency.
func RequestLogger(logg *logger.Logger, set *metrics.Set) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := chimiddleware.GetReqID(r.Context())
			ctx := logg.WithRequestID(r.Context(), requestID)

			wrapped := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(wrapped, r.WithContext(ctx))

			status := wrapped.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logg.Info(ctx, fmt.Sprintf("%s %s -> %d in %s",
				r.Method, r.URL.Path, status, time.Since(start)))

			if set != nil {
				route := r.URL.Path
				set.HTTPRequests.WithLabelValues(route, strconv.Itoa(status/100*100)).Inc()
			}
		})
	}
}

// Recoverer converts panics into internal-error responses instead of
// dropping the connection.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err := fmt.Errorf("panic: %v", rec)
					logg.Error(r.Context(), "request panicked", err)
					responses.WriteError(r.Context(), w, logg,
						pkgerrors.Wrap(pkgerrors.CodeInternal, err, "internal server error"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
