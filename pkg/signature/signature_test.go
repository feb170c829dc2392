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

package signature

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sign produces a hex signature over timestamp || body with the given key.
func sign(t *testing.T, priv ed25519.PrivateKey, timestamp string, body []byte) string {
	t.Helper()
	message := append([]byte(timestamp), body...)
	return hex.EncodeToString(ed25519.Sign(priv, message))
}

func newKeyPair(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return pub, priv
}

func TestNewVerifier(t *testing.T) {
	pub, _ := newKeyPair(t)

	t.Run("Valid hex key", func(t *testing.T) {
		v, err := NewVerifier(hex.EncodeToString(pub))
		require.NoError(t, err)
		assert.NotNil(t, v)
	})

	t.Run("Non-hex key", func(t *testing.T) {
		_, err := NewVerifier("not-hex")
		assert.ErrorIs(t, err, ErrInvalidPublicKey)
	})

	t.Run("Wrong key length", func(t *testing.T) {
		_, err := NewVerifier(hex.EncodeToString(pub[:16]))
		assert.ErrorIs(t, err, ErrInvalidPublicKey)
	})

	t.Run("Empty key", func(t *testing.T) {
		_, err := NewVerifier("")
		assert.ErrorIs(t, err, ErrInvalidPublicKey)
	})
}

func TestNewVerifierFromKey(t *testing.T) {
	pub, _ := newKeyPair(t)

	v, err := NewVerifierFromKey(pub)
	require.NoError(t, err)
	assert.NotNil(t, v)

	_, err = NewVerifierFromKey(pub[:10])
	assert.ErrorIs(t, err, ErrInvalidPublicKey)
}

func TestVerify(t *testing.T) {
	pub, priv := newKeyPair(t)
	v, err := NewVerifierFromKey(pub)
	require.NoError(t, err)

	timestamp := "1700000000"
	body := []byte(`{"type":1}`)

	t.Run("Valid signature", func(t *testing.T) {
		sig := sign(t, priv, timestamp, body)
		assert.NoError(t, v.Verify(timestamp, body, sig))
	})

	t.Run("Mutated body", func(t *testing.T) {
		sig := sign(t, priv, timestamp, body)
		mutated := append([]byte(nil), body...)
		mutated[0] ^= 0x01
		assert.ErrorIs(t, v.Verify(timestamp, mutated, sig), ErrInvalidSignature)
	})

	t.Run("Mutated timestamp", func(t *testing.T) {
		sig := sign(t, priv, timestamp, body)
		assert.ErrorIs(t, v.Verify("1700000001", body, sig), ErrInvalidSignature)
	})

	t.Run("Mutated signature", func(t *testing.T) {
		sig := sign(t, priv, timestamp, body)
		raw, err := hex.DecodeString(sig)
		require.NoError(t, err)
		raw[0] ^= 0x01
		assert.ErrorIs(t, v.Verify(timestamp, body, hex.EncodeToString(raw)), ErrInvalidSignature)
	})

	t.Run("Signature from different key", func(t *testing.T) {
		_, otherPriv := newKeyPair(t)
		sig := sign(t, otherPriv, timestamp, body)
		assert.ErrorIs(t, v.Verify(timestamp, body, sig), ErrInvalidSignature)
	})

	t.Run("Missing signature", func(t *testing.T) {
		assert.ErrorIs(t, v.Verify(timestamp, body, ""), ErrMissingSignature)
	})

	t.Run("Missing timestamp", func(t *testing.T) {
		sig := sign(t, priv, timestamp, body)
		assert.ErrorIs(t, v.Verify("", body, sig), ErrMissingSignature)
	})

	t.Run("Non-hex signature", func(t *testing.T) {
		assert.ErrorIs(t, v.Verify(timestamp, body, "zz"), ErrMalformedSignature)
	})

	t.Run("Truncated signature", func(t *testing.T) {
		sig := sign(t, priv, timestamp, body)
		assert.ErrorIs(t, v.Verify(timestamp, body, sig[:32]), ErrMalformedSignature)
	})

	t.Run("Empty body", func(t *testing.T) {
		sig := sign(t, priv, timestamp, nil)
		assert.NoError(t, v.Verify(timestamp, nil, sig))
	})
}
