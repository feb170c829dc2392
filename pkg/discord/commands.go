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

package discord

// Command is a global application command definition.
type Command struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Type        int             `json:"type"`
	Options     []CommandOption `json:"options,omitempty"`
}

// CommandOption is one argument of an application command.
type CommandOption struct {
	Type        int            `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Required    bool           `json:"required,omitempty"`
	Choices     []OptionChoice `json:"choices,omitempty"`
}

// OptionChoice is one selectable value for a command option.
type OptionChoice struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Command and option type values from the platform wire contract.
const (
	CommandTypeChatInput = 1
	OptionTypeString     = 3
)

// GatewayCommands returns the command definitions this gateway handles:
// the test command and the rock-paper-scissors challenge command.
func GatewayCommands() []Command {
	return []Command{
		{
			Name:        "test",
			Description: "Basic command",
			Type:        CommandTypeChatInput,
		},
		{
			Name:        "challenge",
			Description: "Challenge to a match of rock paper scissors",
			Type:        CommandTypeChatInput,
			Options: []CommandOption{
				{
					Type:        OptionTypeString,
					Name:        "object",
					Description: "Pick your object",
					Required:    true,
					Choices: []OptionChoice{
						{Name: "Rock", Value: "rock"},
						{Name: "Paper", Value: "paper"},
						{Name: "Scissors", Value: "scissors"},
					},
				},
			},
		},
	}
}
