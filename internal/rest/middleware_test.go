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
)

func TestResponseWriter(t *testing.T) {
	t.Run("Captures status code on WriteHeader", func(t *testing.T) {
		w := httptest.NewRecorder()
		rw := newResponseWriter(w)

		rw.WriteHeader(http.StatusCreated)

		if rw.statusCode != http.StatusCreated {
			t.Errorf("Expected status code %d, got %d", http.StatusCreated, rw.statusCode)
		}

		if !rw.written {
			t.Error("Expected written flag to be true")
		}
	})

	t.Run("Default status code is 200", func(t *testing.T) {
		w := httptest.NewRecorder()
		rw := newResponseWriter(w)

		if rw.statusCode != http.StatusOK {
			t.Errorf("Expected default status code %d, got %d", http.StatusOK, rw.statusCode)
		}
	})

	t.Run("Write calls WriteHeader if not written", func(t *testing.T) {
		w := httptest.NewRecorder()
		rw := newResponseWriter(w)

		data := []byte("test")
		n, err := rw.Write(data)
		if err != nil {
			t.Fatalf("Write failed: %v", err)
		}

		if n != len(data) {
			t.Errorf("Expected %d bytes written, got %d", len(data), n)
		}

		if rw.statusCode != http.StatusOK {
			t.Errorf("Expected status code %d, got %d", http.StatusOK, rw.statusCode)
		}
	})

	t.Run("WriteHeader only once", func(t *testing.T) {
		w := httptest.NewRecorder()
		rw := newResponseWriter(w)

		rw.WriteHeader(http.StatusCreated)
		rw.WriteHeader(http.StatusBadRequest) // Should be ignored

		if rw.statusCode != http.StatusCreated {
			t.Errorf("Expected status code %d, got %d", http.StatusCreated, rw.statusCode)
		}
	})
}

func TestSignatureMiddlewarePassesVerifiedBody(t *testing.T) {
	g := newTestGateway(t)

	var captured []byte
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := verifiedBody(r.Context())
		if !ok {
			t.Error("Expected verified body in context")
		}
		captured = body
		w.WriteHeader(http.StatusOK)
	})

	middleware := g.server.SignatureMiddleware()(handler)

	body := []byte(`{"type":1}`)
	req := g.signedRequest(t, body)
	w := httptest.NewRecorder()
	middleware.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if string(captured) != string(body) {
		t.Errorf("Expected body %q, got %q", body, captured)
	}
}

func TestSignatureMiddlewareRejectsBeforeHandler(t *testing.T) {
	g := newTestGateway(t)

	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
	})

	middleware := g.server.SignatureMiddleware()(handler)

	req := httptest.NewRequest(http.MethodPost, "/interactions", nil)
	w := httptest.NewRecorder()
	middleware.ServeHTTP(w, req)

	if handlerCalled {
		t.Error("Handler must not run for unauthenticated requests")
	}
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("Expected empty body, got %q", w.Body.String())
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	g := newTestGateway(t)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	middleware := g.server.RecoveryMiddleware()(handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	middleware.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
}
