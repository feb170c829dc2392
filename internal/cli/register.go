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

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-interactions/pkg/discord"
)

// registerCmd installs the global application commands.
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register the application commands with the platform",
	Long: `Register installs the gateway's slash command definitions (test and
challenge) as global application commands. Run this once per deployment
or whenever the command definitions change.

Requires the application id and bot token, supplied via configuration or
the INTERACTIONS_APP_ID and INTERACTIONS_BOT_TOKEN environment variables.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runRegister(); err != nil {
			handleError(err)
		}
	},
}

func runRegister() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := discord.NewClient(&discord.ClientConfig{
		Token:   cfg.Discord.BotToken,
		APIBase: cfg.Discord.APIBase,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	commands := discord.GatewayCommands()
	if err := client.RegisterCommands(ctx, cfg.Discord.AppID, commands); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	for _, c := range commands {
		fmt.Printf("Registered command: /%s\n", c.Name)
	}
	return nil
}
