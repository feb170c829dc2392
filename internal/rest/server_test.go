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
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jeremyhahn/go-interactions/pkg/challenge"
	"github.com/jeremyhahn/go-interactions/pkg/interaction"
	"github.com/jeremyhahn/go-interactions/pkg/signature"
)

// testGateway bundles a server with the signing key its verifier trusts.
type testGateway struct {
	server *Server
	store  *challenge.MemoryStore
	priv   ed25519.PrivateKey
}

func newTestGateway(t *testing.T) *testGateway {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("Failed to generate key pair: %v", err)
	}

	verifier, err := signature.NewVerifierFromKey(pub)
	if err != nil {
		t.Fatalf("Failed to create verifier: %v", err)
	}

	store := challenge.NewMemoryStore()
	dispatcher, err := interaction.NewDispatcher(&interaction.DispatcherConfig{Store: store})
	if err != nil {
		t.Fatalf("Failed to create dispatcher: %v", err)
	}

	server, err := NewServer(&Config{
		Verifier:   verifier,
		Dispatcher: dispatcher,
	})
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	return &testGateway{server: server, store: store, priv: priv}
}

// signedRequest builds a POST /interactions request with a valid
// detached signature over timestamp || body.
func (g *testGateway) signedRequest(t *testing.T, body []byte) *http.Request {
	t.Helper()

	timestamp := "1700000000"
	message := append([]byte(timestamp), body...)
	sig := hex.EncodeToString(ed25519.Sign(g.priv, message))

	req := httptest.NewRequest(http.MethodPost, "/interactions", bytes.NewReader(body))
	req.Header.Set(signature.TimestampHeader, timestamp)
	req.Header.Set(signature.SignatureHeader, sig)
	return req
}

func (g *testGateway) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	g.server.Handler().ServeHTTP(w, req)
	return w
}

func TestNewServerValidation(t *testing.T) {
	if _, err := NewServer(nil); err == nil {
		t.Error("Expected error for nil config")
	}

	if _, err := NewServer(&Config{}); err == nil {
		t.Error("Expected error for missing verifier")
	}
}

func TestInteractionsPing(t *testing.T) {
	g := newTestGateway(t)

	w := g.do(g.signedRequest(t, []byte(`{"type":1}`)))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp interaction.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Type != interaction.ResponsePong {
		t.Errorf("Expected pong response, got type %d", resp.Type)
	}
}

func TestInteractionsRejectsUnsigned(t *testing.T) {
	g := newTestGateway(t)

	t.Run("No signature headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/interactions", bytes.NewReader([]byte(`{"type":1}`)))
		w := g.do(req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", w.Code)
		}
		if w.Body.Len() != 0 {
			t.Errorf("Expected empty body, got %q", w.Body.String())
		}
	})

	t.Run("Tampered body", func(t *testing.T) {
		req := g.signedRequest(t, []byte(`{"type":1}`))
		req.Body = http.NoBody
		req.ContentLength = 0

		w := g.do(req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", w.Code)
		}
		if w.Body.Len() != 0 {
			t.Errorf("Expected empty body, got %q", w.Body.String())
		}
	})

	t.Run("Garbage signature", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/interactions", bytes.NewReader([]byte(`{"type":1}`)))
		req.Header.Set(signature.TimestampHeader, "1700000000")
		req.Header.Set(signature.SignatureHeader, "deadbeef")

		w := g.do(req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", w.Code)
		}
	})

	t.Run("Signed malformed body still rejected before decode", func(t *testing.T) {
		// Signature over different bytes than delivered
		req := g.signedRequest(t, []byte(`{"type":1}`))
		req.Body = httptest.NewRequest(http.MethodPost, "/interactions", bytes.NewReader([]byte(`{not json`))).Body

		w := g.do(req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", w.Code)
		}
	})
}

func TestInteractionsMalformedBody(t *testing.T) {
	g := newTestGateway(t)

	// Properly signed but undecodable body fails after the gate with 400
	w := g.do(g.signedRequest(t, []byte(`{not json`)))

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestInteractionsChallengeFlow(t *testing.T) {
	g := newTestGateway(t)

	issue := []byte(`{"id":"i1","type":2,"data":{"name":"challenge","options":[{"name":"object","value":"rock"}]},"member":{"user":{"id":"u1"}}}`)
	w := g.do(g.signedRequest(t, issue))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp interaction.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Data.Components) != 1 {
		t.Fatalf("Expected 1 action row, got %d", len(resp.Data.Components))
	}
	customID := resp.Data.Components[0].Components[0].CustomID
	if customID != "accept_button_i1" {
		t.Errorf("Expected accept_button_i1, got %s", customID)
	}

	accept := []byte(`{"id":"i2","type":3,"data":{"custom_id":"` + customID + `"},"member":{"user":{"id":"u2"}}}`)
	w = g.do(g.signedRequest(t, accept))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	expected := "<@u2> accepted the challenge from <@u1>!"
	if resp.Data.Content != expected {
		t.Errorf("Expected %q, got %q", expected, resp.Data.Content)
	}
}

func TestHealthEndpoints(t *testing.T) {
	g := newTestGateway(t)

	t.Run("Health without checker", func(t *testing.T) {
		w := g.do(httptest.NewRequest(http.MethodGet, "/health", nil))
		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
	})

	t.Run("Liveness", func(t *testing.T) {
		w := g.do(httptest.NewRequest(http.MethodGet, "/health/live", nil))
		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
	})

	t.Run("Health endpoints are unsigned", func(t *testing.T) {
		// No signature headers, still served
		w := g.do(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
	})
}
