package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atelierlabs/obswork/internal/buildinfo"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the obswork version",
		RunE: func(c *cobra.Command, _ []string) error {
			fmt.Fprintf(c.OutOrStdout(), "obswork %s\n", buildinfo.GetVersion())
			return nil
		},
	}
}
