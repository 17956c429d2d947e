package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/orbitgraph/pkg/config"
)

// configCommand creates the config management command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the default configuration unless one exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.configFile()
			created, err := config.EnsureExists(path)
			if err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			if !created {
				printInfo("Config already exists")
				printFile(path)
				return nil
			}
			printSuccess("Config created")
			printFile(path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(c.configFile())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return toml.NewEncoder(os.Stdout).Encode(c.settings())
		},
	})

	return cmd
}
