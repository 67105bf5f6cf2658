// Package config implements the megaflow CLI's configuration management
// subcommands.
package config

import (
	"github.com/spf13/cobra"
)

// Cmd is the config subcommand.
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long: `Manage megaflow configuration files.

Use 'megaflow config init' to create a new configuration file, and
'megaflow config show' to display the configuration that would be loaded.`,
}

func init() {
	Cmd.AddCommand(initCmd)
	Cmd.AddCommand(showCmd)
}
