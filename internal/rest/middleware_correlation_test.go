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
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jeremyhahn/go-interactions/pkg/correlation"
)

func TestCorrelationMiddleware(t *testing.T) {
	g := newTestGateway(t)

	t.Run("Uses X-Correlation-ID from request", func(t *testing.T) {
		expectedID := "test-correlation-id"
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actualID := correlation.GetCorrelationID(r.Context())
			if actualID != expectedID {
				t.Errorf("Expected correlation ID %s, got %s", expectedID, actualID)
			}
			w.WriteHeader(http.StatusOK)
		})

		middleware := g.server.CorrelationMiddleware()(handler)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(correlation.CorrelationIDHeader, expectedID)
		w := httptest.NewRecorder()

		middleware.ServeHTTP(w, req)

		responseID := w.Header().Get(correlation.CorrelationIDHeader)
		if responseID != expectedID {
			t.Errorf("Expected response correlation ID %s, got %s", expectedID, responseID)
		}
	})

	t.Run("Uses X-Request-ID as fallback", func(t *testing.T) {
		expectedID := "test-request-id"
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actualID := correlation.GetCorrelationID(r.Context())
			if actualID != expectedID {
				t.Errorf("Expected correlation ID %s, got %s", expectedID, actualID)
			}
			w.WriteHeader(http.StatusOK)
		})

		middleware := g.server.CorrelationMiddleware()(handler)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(correlation.RequestIDHeader, expectedID)
		w := httptest.NewRecorder()

		middleware.ServeHTTP(w, req)

		responseID := w.Header().Get(correlation.CorrelationIDHeader)
		if responseID != expectedID {
			t.Errorf("Expected response correlation ID %s, got %s", expectedID, responseID)
		}
	})

	t.Run("Generates new correlation ID if none provided", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if correlation.GetCorrelationID(r.Context()) == "" {
				t.Error("Expected correlation ID to be generated, got empty string")
			}
			w.WriteHeader(http.StatusOK)
		})

		middleware := g.server.CorrelationMiddleware()(handler)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()

		middleware.ServeHTTP(w, req)

		if w.Header().Get(correlation.CorrelationIDHeader) == "" {
			t.Error("Expected response correlation ID header to be set")
		}
	})
}
