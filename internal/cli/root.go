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
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-interactions/internal/config"
)

var (
	// configFile is the path to the YAML configuration file.
	configFile string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "interactions",
	Short: "go-interactions - Signed webhook gateway for platform interactions",
	Long: `go-interactions is a webhook gateway that authenticates inbound
interaction deliveries with Ed25519 signatures, routes them to command
handlers, and tracks rock-paper-scissors challenge sessions.

Every request is verified against the application's published public key
before any part of the payload is decoded.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (optional, environment variables are used when omitted)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads configuration from the --config file or, when none
// is given, entirely from environment variables.
func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.Load(configFile)
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// handleError prints an error and exits with code 1
func handleError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
