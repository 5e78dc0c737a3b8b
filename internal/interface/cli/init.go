package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	infraConfig "github.com/atelierlabs/obswork/internal/infra/config"
)

func newInitCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the .obswork data directory and database",
		RunE: func(c *cobra.Command, _ []string) error {
			if dir == "" {
				dir = "."
			}

			home := filepath.Join(dir, ".obswork")
			for _, d := range []string{home, filepath.Join(home, "storage")} {
				if err := os.MkdirAll(d, 0o755); err != nil {
					return fmt.Errorf("failed to create directory %s: %w", d, err)
				}
			}

			settingPath := filepath.Join(home, "setting.json")
			if err := writeIfNotExists(settingPath, infraConfig.CreateDefaultSettings(home)); err != nil {
				return fmt.Errorf("failed to create %s: %w", settingPath, err)
			}

			cfg, err := infraConfig.LoadSettings(home)
			if err != nil {
				return err
			}
			container, err := NewContainer(cfg)
			if err != nil {
				return err
			}
			defer container.Close()

			fmt.Fprintln(c.OutOrStdout(), "Initialized .obswork structure:")
			fmt.Fprintf(c.OutOrStdout(), "  %s\n", settingPath)
			fmt.Fprintf(c.OutOrStdout(), "  %s\n", cfg.DatabasePath())
			fmt.Fprintf(c.OutOrStdout(), "  %s\n", filepath.Join(home, "storage"))
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Target directory")
	return cmd
}

func writeIfNotExists(path string, b []byte) error {
	if _, err := os.Stat(path); err == nil {
		return nil // never overwrite an existing configuration
	}
	return os.WriteFile(path, b, 0o644)
}
