package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pakproperty/pakproperty/internal/cli/userconfig"
)

// NewConfigCmd creates the config command
func NewConfigCmd() *cobra.Command {
	var apiURL string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the CLI configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := userconfig.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if apiURL != "" {
				cfg.APIURL = apiURL
				if err := userconfig.Save(cfg); err != nil {
					return err
				}
				fmt.Printf("✓ API URL set to %s\n", cfg.APIURL)
				return nil
			}

			path, err := userconfig.GetConfigPath()
			if err != nil {
				return err
			}
			fmt.Printf("Config file: %s\n", path)
			fmt.Printf("API URL:     %s\n", cfg.APIURL)
			return nil
		},
	}

	cmd.Flags().StringVar(&apiURL, "api-url", "", "Set the API base URL")

	return cmd
}
