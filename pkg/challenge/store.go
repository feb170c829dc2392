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

import "context"

// Store persists challenges keyed by the id of the interaction that
// created them. Implementations must make Transition an atomic
// check-and-set: for any id, exactly one of N concurrent identical
// transitions succeeds and the rest observe ErrInvalidTransition.
type Store interface {
	// Create inserts a challenge in StateIssued, overwriting any
	// existing entry for the same id. Overwrites are legal (the platform
	// may redeliver a webhook) and never raise a uniqueness error.
	Create(ctx context.Context, id, challengerID, object string) (*Challenge, error)

	// Get retrieves a challenge by id. Returns ErrNotFound if the id has
	// no entry or the entry has expired.
	Get(ctx context.Context, id string) (*Challenge, error)

	// Transition atomically moves a challenge from one state to another.
	// Returns ErrNotFound if the id has no entry, ErrInvalidTransition if
	// the current state does not equal from. It never creates an entry.
	Transition(ctx context.Context, id string, from, to State) (*Challenge, error)
}
