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

// Package challenge holds the per-session state for two-party challenges:
// one user issues a challenge through a slash command, another accepts it
// by clicking the button attached to the reply. The store owns all
// Challenge values; callers only ever see copies.
package challenge

import "time"

// State is the lifecycle state of a challenge.
type State string

const (
	// StateIssued is the initial state, entered when a challenge command
	// creates the session.
	StateIssued State = "issued"

	// StateAccepted is entered when an opponent accepts the challenge.
	// Terminal for this package; game resolution is layered on top.
	StateAccepted State = "accepted"
)

// Challenge is one outstanding two-party interaction, keyed by the id of
// the interaction that created it. The id is assigned by the platform and
// trusted as unique for the life of the process.
type Challenge struct {
	// ID is the platform-assigned interaction id of the issuing command.
	ID string `json:"id"`

	// ChallengerID identifies the user who issued the challenge.
	ChallengerID string `json:"challenger_id"`

	// Object is the challenger's chosen object (e.g. "rock").
	Object string `json:"object"`

	// State is the current lifecycle state.
	State State `json:"state"`

	// CreatedAt is when the challenge was issued.
	CreatedAt time.Time `json:"created_at"`
}

// clone returns a copy so store internals never escape to callers.
func (c *Challenge) clone() *Challenge {
	dup := *c
	return &dup
}
