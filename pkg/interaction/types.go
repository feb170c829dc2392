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

// Package interaction models the platform's interaction webhook payloads
// and routes decoded events to their handlers. Incoming bodies are only
// decoded after the signature gate has passed.
package interaction

import "encoding/json"

// Type is the discriminant of an inbound interaction.
type Type int

// Interaction types defined by the platform wire contract.
const (
	// TypePing is the platform's liveness probe for the endpoint.
	TypePing Type = 1

	// TypeApplicationCommand is a slash command invocation.
	TypeApplicationCommand Type = 2

	// TypeMessageComponent is a follow-up event from an interactive
	// element (e.g. a button) attached to an earlier reply.
	TypeMessageComponent Type = 3
)

// Interaction is a decoded inbound event.
type Interaction struct {
	// ID is the platform-assigned id of this interaction. For challenge
	// commands it doubles as the challenge session id.
	ID string `json:"id"`

	// Type discriminates the event kind.
	Type Type `json:"type"`

	// Data carries the command or component payload.
	Data *Data `json:"data,omitempty"`

	// Member is present when the interaction originates in a guild.
	Member *Member `json:"member,omitempty"`

	// User is present when the interaction originates in a DM.
	User *User `json:"user,omitempty"`
}

// Data is the nested payload of a command or component interaction.
type Data struct {
	// Name is the invoked command name (commands only).
	Name string `json:"name,omitempty"`

	// CustomID is the opaque identifier of the activated component
	// (component interactions only).
	CustomID string `json:"custom_id,omitempty"`

	// Options are the ordered command arguments (commands only).
	Options []Option `json:"options,omitempty"`
}

// Option is a single command argument.
type Option struct {
	Name  string          `json:"name,omitempty"`
	Value json.RawMessage `json:"value"`
}

// StringValue returns the option value as a string, tolerating both
// quoted and unquoted wire encodings.
func (o Option) StringValue() string {
	var s string
	if err := json.Unmarshal(o.Value, &s); err == nil {
		return s
	}
	return string(o.Value)
}

// Member is the guild membership wrapper around the acting user.
type Member struct {
	User *User `json:"user,omitempty"`
}

// User identifies the user who triggered the interaction.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
}

// UserID returns the id of the acting user, whether the interaction
// arrived from a guild or a DM. Empty if neither is present.
func (i *Interaction) UserID() string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
