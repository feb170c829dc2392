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

package interaction

import "errors"

// Sentinel errors for interaction decoding and routing.
var (
	// ErrDecode is returned when the verified body is not well-formed
	// structured data or lacks a recognizable type or name.
	ErrDecode = errors.New("malformed interaction payload")

	// ErrMalformedCustomID is returned when a component interaction's
	// identifier does not carry the expected prefix and challenge id.
	ErrMalformedCustomID = errors.New("malformed component custom_id")
)
