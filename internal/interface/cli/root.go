// Package cli is the cobra command surface over the observation use cases.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/atelierlabs/obswork/internal/app"
	"github.com/atelierlabs/obswork/internal/app/config"
	infraConfig "github.com/atelierlabs/obswork/internal/infra/config"
)

// globalConfig holds the loaded configuration for all commands
var globalConfig config.Config

// NewRoot builds the obswork root command
func NewRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "obswork",
		Short: "Versioned observation records for theatre workshop sessions",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load configuration before any command runs
			// Priority: setting.json > OBSWORK_* env > defaults
			baseDir := ".obswork"
			if home := os.Getenv("OBSWORK_HOME"); home != "" {
				baseDir = home
			}

			cfg, err := infraConfig.LoadSettings(baseDir)
			if err != nil {
				return err
			}
			globalConfig = cfg
			app.InitLogger(cfg.StderrLevel())
			return nil
		},
		RunE: func(c *cobra.Command, _ []string) error { return c.Help() },
	}
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newObserveCmd())
	cmd.AddCommand(newProvisionCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newReportCmd())
	cmd.AddCommand(newCatalogCmd())
	cmd.AddCommand(newRecordCmd())
	cmd.AddCommand(newAttachCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}
