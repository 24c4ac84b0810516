// File: cmd/settings.go
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xkilldash9x/pagepilot/internal/config"
	"github.com/xkilldash9x/pagepilot/internal/settings"
)

// newSettingsCmd groups maintenance operations on the settings document.
func newSettingsCmd() *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and initialize the settings document",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Creates a normalized default settings document if none exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return err
			}
			existed := true
			if _, err := os.Stat(cfg.Settings.File); os.IsNotExist(err) {
				existed = false
			}
			if _, err := settings.Load(cfg.Settings.File); err != nil {
				return fmt.Errorf("initializing settings: %w", err)
			}
			if existed {
				fmt.Printf("Settings file already exists: %s\n", cfg.Settings.File)
			} else {
				fmt.Printf("Created default settings file: %s\n", cfg.Settings.File)
			}
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Prints the normalized settings document",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return err
			}
			doc, err := settings.Load(cfg.Settings.File)
			if err != nil {
				return fmt.Errorf("loading settings: %w", err)
			}
			out, err := settings.Marshal(doc)
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	settingsCmd.AddCommand(initCmd, showCmd)
	return settingsCmd
}

func init() {
	rootCmd.AddCommand(newSettingsCmd())
}
