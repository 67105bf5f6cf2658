package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/streamshard/megaflow/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Initialize a sample megaflow configuration file.

By default, the configuration file is created at
$XDG_CONFIG_HOME/megaflow/config.yaml. Use --config on the root command to
specify a custom path.

Examples:
  # Initialize with default location
  megaflow config init

  # Initialize with a custom path
  megaflow --config /etc/megaflow/config.yaml config init

  # Force overwrite an existing config file
  megaflow config init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")

	var configPath string
	var err error
	if configFile != "" {
		err = config.InitConfigToPath(configFile, initForce)
		configPath = configFile
	} else {
		configPath, err = config.InitConfig(initForce)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration file to customize your setup")
	fmt.Println("  2. Start the cluster with: megaflow start")
	fmt.Printf("  3. Or specify a custom config: megaflow --config %s start\n", configPath)
	return nil
}
