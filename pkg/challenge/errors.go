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

package challenge

import "errors"

// Sentinel errors for challenge store operations.
var (
	// ErrNotFound is returned when a challenge id has no entry in the
	// store. Absence is a first-class outcome, not a fault.
	ErrNotFound = errors.New("challenge not found")

	// ErrInvalidTransition is returned when a transition's precondition
	// state does not match the challenge's current state. It signals a
	// replayed or out-of-order acceptance and must never silently succeed.
	ErrInvalidTransition = errors.New("invalid challenge transition")
)
