package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// RequestVerifier authenticates an inbound request and returns the access
// key that signed it. *swiftgate.SignatureVerifier implements it.
type RequestVerifier interface {
	Verify(r *http.Request) (string, error)
}

type accessKeyKey struct{}

// AccessKeyFromContext returns the access key of an authenticated request.
func AccessKeyFromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(accessKeyKey{}).(string)
	return key, ok
}

// AuthMiddleware creates middleware that requires a valid presigned URL.
// Pass nil for public access.
func AuthMiddleware(verifier RequestVerifier) func(http.Handler) http.Handler {
	if verifier == nil {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accessKey, err := verifier.Verify(r)
			if err != nil {
				slog.Info("request rejected", "method", r.Method, "path", r.URL.Path, "err", err)
				HandleError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), accessKeyKey{}, accessKey)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLogger logs one line per request once the handler returns.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
