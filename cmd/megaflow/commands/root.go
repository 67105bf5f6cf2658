// Package commands implements the megaflow CLI's subcommands.
package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/streamshard/megaflow/cmd/megaflow/commands/config"
)

var (
	// Version information injected at build time by cmd/megaflow/main.go.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// cfgFile is the --config persistent flag.
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "megaflow",
	Short: "Dynamic key-space repartitioning for a timely dataflow runtime",
	Long: `megaflow runs a cluster of simulated workers implementing the
migration protocol: a routing operator and state operator pair that route
keyed records to worker-local state shards and migrate those shards between
workers at runtime without violating the dataflow's progress and ordering
guarantees.

Use "megaflow [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and runs it. Called
// once from cmd/megaflow/main.go's main().
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command, for testing.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

// GetConfigFile returns the --config flag's value.
func GetConfigFile() string {
	return cfgFile
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/megaflow/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(config.Cmd)
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}

// Exit prints an error and exits with code 1.
func Exit(format string, args ...any) {
	PrintErr(format, args...)
	os.Exit(1)
}
