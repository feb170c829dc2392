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

import (
	"fmt"
	"strings"
)

// ResponseType selects the shape of an interaction response.
type ResponseType int

// Response types defined by the platform wire contract.
const (
	// ResponsePong acknowledges a ping without content.
	ResponsePong ResponseType = 1

	// ResponseChannelMessage posts a message into the originating channel.
	ResponseChannelMessage ResponseType = 4
)

// ComponentType identifies an interactive element.
type ComponentType int

const (
	// ComponentActionRow is a container for up to five child components.
	ComponentActionRow ComponentType = 1

	// ComponentButton is a clickable button.
	ComponentButton ComponentType = 2
)

// ButtonStyle selects the visual style of a button.
type ButtonStyle int

// ButtonStylePrimary is the platform's prominent call-to-action style.
const ButtonStylePrimary ButtonStyle = 1

// FlagEphemeral marks a message as visible only to the acting user.
const FlagEphemeral = 1 << 6

// Response is the reply returned for an interaction.
type Response struct {
	Type ResponseType  `json:"type"`
	Data *ResponseData `json:"data,omitempty"`
}

// ResponseData carries message content and optional components.
type ResponseData struct {
	Content    string      `json:"content,omitempty"`
	Flags      int         `json:"flags,omitempty"`
	Components []Component `json:"components,omitempty"`
}

// Component is one node of a component tree: an action row containing
// child components, or a leaf element such as a button.
type Component struct {
	Type       ComponentType `json:"type"`
	CustomID   string        `json:"custom_id,omitempty"`
	Label      string        `json:"label,omitempty"`
	Style      ButtonStyle   `json:"style,omitempty"`
	Components []Component   `json:"components,omitempty"`
}

// AcceptButtonPrefix prefixes the custom_id of challenge accept buttons.
// The challenge id is appended so a later component interaction can be
// routed back to its session without server-side mapping state.
const AcceptButtonPrefix = "accept_button_"

// AcceptCustomID builds the accept button identifier for a challenge.
func AcceptCustomID(challengeID string) string {
	return AcceptButtonPrefix + challengeID
}

// ParseAcceptCustomID recovers the challenge id from an accept button
// identifier. Returns ErrMalformedCustomID when the expected prefix is
// absent or nothing follows it.
func ParseAcceptCustomID(customID string) (string, error) {
	id, ok := strings.CutPrefix(customID, AcceptButtonPrefix)
	if !ok || id == "" {
		return "", ErrMalformedCustomID
	}
	return id, nil
}

// NewPong builds the canonical liveness acknowledgment.
func NewPong() *Response {
	return &Response{Type: ResponsePong}
}

// NewMessage builds a plain channel message response.
func NewMessage(content string) *Response {
	return &Response{
		Type: ResponseChannelMessage,
		Data: &ResponseData{Content: content},
	}
}

// NewEphemeralMessage builds a channel message visible only to the
// acting user. Used for error outcomes that should not spam the channel.
func NewEphemeralMessage(content string) *Response {
	return &Response{
		Type: ResponseChannelMessage,
		Data: &ResponseData{
			Content: content,
			Flags:   FlagEphemeral,
		},
	}
}

// NewChallengeMessage builds the challenge announcement with a single
// action row holding the accept button for the given challenge id.
func NewChallengeMessage(challengerID, challengeID string) *Response {
	return &Response{
		Type: ResponseChannelMessage,
		Data: &ResponseData{
			Content: fmt.Sprintf("Rock papers scissors challenge from <@%s>", challengerID),
			Components: []Component{
				{
					Type: ComponentActionRow,
					Components: []Component{
						{
							Type:     ComponentButton,
							CustomID: AcceptCustomID(challengeID),
							Label:    "Accept",
							Style:    ButtonStylePrimary,
						},
					},
				},
			},
		},
	}
}

// NewAcceptedMessage builds the reply posted when an opponent accepts a
// challenge.
func NewAcceptedMessage(accepterID, challengerID string) *Response {
	return NewMessage(fmt.Sprintf("<@%s> accepted the challenge from <@%s>!", accepterID, challengerID))
}
