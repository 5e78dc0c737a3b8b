package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atelierlabs/obswork/internal/domain/model"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the question catalog and the answer domain",
		RunE: func(c *cobra.Command, _ []string) error {
			container, err := NewContainer(globalConfig)
			if err != nil {
				return err
			}
			defer container.Close()

			out := c.OutOrStdout()
			lastHeader := ""
			for _, q := range container.Catalog.Flattened() {
				header := q.Category
				if q.Subcategory != "" {
					header += " / " + q.Subcategory
				}
				if header != lastHeader {
					fmt.Fprintf(out, "\n[%s]\n", header)
					lastHeader = header
				}
				fmt.Fprintf(out, "  %-28s %s\n", q.ID, q.Text)
			}

			fmt.Fprintf(out, "\n%d questions\n", container.Catalog.TotalQuestions())
			fmt.Fprint(out, "Answers:")
			for _, a := range model.AnswerValues() {
				fmt.Fprintf(out, " %s", a)
			}
			fmt.Fprintln(out)
			return nil
		},
	}
	return cmd
}
