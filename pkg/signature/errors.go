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

import "errors"

// Sentinel errors for signature verification.
var (
	// ErrInvalidPublicKey is returned when the configured public key is not
	// a valid Ed25519 public key.
	ErrInvalidPublicKey = errors.New("invalid public key")

	// ErrMissingSignature is returned when the signature or timestamp
	// header is absent from the request.
	ErrMissingSignature = errors.New("missing signature")

	// ErrMalformedSignature is returned when the signature header does not
	// decode to an Ed25519 signature.
	ErrMalformedSignature = errors.New("malformed signature")

	// ErrInvalidSignature is returned when the signature does not validate
	// over the request timestamp and body.
	ErrInvalidSignature = errors.New("invalid signature")
)
