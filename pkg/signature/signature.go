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

// Package signature authenticates inbound webhook requests using the
// Ed25519 public key published by the interactions platform. Every request
// must carry a detached signature and timestamp; the signature is computed
// over the exact byte sequence timestamp || body. Verification runs strictly
// before the body is decoded, so a failure here reveals nothing about the
// payload.
package signature

import (
	"crypto/ed25519"
	"encoding/hex"
)

// Header names used by the platform to deliver the detached signature.
const (
	// SignatureHeader carries the hex-encoded Ed25519 signature.
	SignatureHeader = "X-Signature-Ed25519"

	// TimestampHeader carries the timestamp the signature was computed over.
	TimestampHeader = "X-Signature-Timestamp"
)

// Verifier validates request signatures against a single long-lived
// Ed25519 public key. It is immutable after construction and safe for
// concurrent use.
type Verifier struct {
	publicKey ed25519.PublicKey
}

// NewVerifier creates a Verifier from a hex-encoded Ed25519 public key.
func NewVerifier(publicKeyHex string) (*Verifier, error) {
	raw, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return nil, ErrInvalidPublicKey
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, ErrInvalidPublicKey
	}
	return &Verifier{publicKey: ed25519.PublicKey(raw)}, nil
}

// NewVerifierFromKey creates a Verifier from a raw Ed25519 public key.
func NewVerifierFromKey(key ed25519.PublicKey) (*Verifier, error) {
	if len(key) != ed25519.PublicKeySize {
		return nil, ErrInvalidPublicKey
	}
	return &Verifier{publicKey: key}, nil
}

// Verify checks the hex-encoded signature against timestamp || body.
// It returns nil only if the signature validates over exactly those bytes;
// any mutation of the body or the timestamp after signing fails the check.
func (v *Verifier) Verify(timestamp string, body []byte, signatureHex string) error {
	if timestamp == "" || signatureHex == "" {
		return ErrMissingSignature
	}

	sig, err := hex.DecodeString(signatureHex)
	if err != nil {
		return ErrMalformedSignature
	}
	if len(sig) != ed25519.SignatureSize {
		return ErrMalformedSignature
	}

	message := make([]byte, 0, len(timestamp)+len(body))
	message = append(message, timestamp...)
	message = append(message, body...)

	if !ed25519.Verify(v.publicKey, message, sig) {
		return ErrInvalidSignature
	}
	return nil
}
