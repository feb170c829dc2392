// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-interactions.
//
// go-interactions is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package rest

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/jeremyhahn/go-interactions/pkg/adapters/logger"
	"github.com/jeremyhahn/go-interactions/pkg/metrics"
	"github.com/jeremyhahn/go-interactions/pkg/signature"
)

// maxBodyBytes caps inbound webhook bodies. Interaction payloads are
// small; anything larger is not a legitimate delivery.
const maxBodyBytes = 1 << 20

// bodyContextKey carries the verified raw body through the request
// context so the handler never re-reads an unverified stream.
type bodyContextKey struct{}

// verifiedBody retrieves the raw body stashed by SignatureMiddleware.
func verifiedBody(ctx context.Context) ([]byte, bool) {
	body, ok := ctx.Value(bodyContextKey{}).([]byte)
	return body, ok
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

// newResponseWriter creates a new responseWriter.
func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

// WriteHeader captures the status code.
func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

// Write ensures WriteHeader is called.
func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// LoggingMiddleware logs HTTP requests using the configured logger.
func (s *Server) LoggingMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := newResponseWriter(w)
			ctx := r.Context()

			// Use context-aware logging to include correlation ID
			if slogAdapter, ok := s.logger.(*logger.SlogAdapter); ok {
				slogAdapter.DebugContext(ctx, "Request started",
					logger.String("method", r.Method),
					logger.String("path", r.URL.Path))
			} else {
				s.logger.Debug("Request started",
					logger.String("method", r.Method),
					logger.String("path", r.URL.Path))
			}

			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)
			if slogAdapter, ok := s.logger.(*logger.SlogAdapter); ok {
				slogAdapter.InfoContext(ctx, "Request completed",
					logger.String("method", r.Method),
					logger.String("path", r.URL.Path),
					logger.Int("status", wrapped.statusCode),
					logger.String("duration", duration.String()))
			} else {
				s.logger.Info("Request completed",
					logger.String("method", r.Method),
					logger.String("path", r.URL.Path),
					logger.Int("status", wrapped.statusCode),
					logger.String("duration", duration.String()))
			}
		})
	}
}

// RecoveryMiddleware recovers from panics and returns a 500 error.
func (s *Server) RecoveryMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					s.logger.Error("Panic recovered",
						logger.String("method", r.Method),
						logger.String("path", r.URL.Path),
						logger.Any("error", err))
					writeErrorWithMessage(w, ErrInternalError, "An unexpected error occurred", http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// SignatureMiddleware authenticates webhook deliveries. It reads the
// body, verifies the detached Ed25519 signature over timestamp || body,
// and stashes the verified bytes in the request context. Failures are a
// bare 401 carrying nothing derived from the body; verification happens
// strictly before any decoding, so a malformed body can never turn a
// forged request into a different status.
func (s *Server) SignatureMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
			if err != nil {
				s.rejectUnauthorized(w, r, err)
				return
			}

			sig := r.Header.Get(signature.SignatureHeader)
			ts := r.Header.Get(signature.TimestampHeader)

			if err := s.verifier.Verify(ts, body, sig); err != nil {
				s.rejectUnauthorized(w, r, err)
				return
			}

			metrics.RecordSignatureVerification(metrics.StatusSuccess)

			ctx := context.WithValue(r.Context(), bodyContextKey{}, body)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// rejectUnauthorized terminates the request with a generic 401.
func (s *Server) rejectUnauthorized(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Warn("Request signature rejected",
		logger.String("remote_addr", r.RemoteAddr),
		logger.Error(err))
	metrics.RecordSignatureVerification(metrics.StatusRejected)
	w.WriteHeader(http.StatusUnauthorized)
}
