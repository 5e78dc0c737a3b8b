package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atelierlabs/obswork/internal/domain/model"
)

func newRecordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Inspect and remove stored observation records",
	}
	cmd.AddCommand(newRecordShowCmd())
	cmd.AddCommand(newRecordDeleteCmd())
	cmd.AddCommand(newRecordPurgeCmd())
	return cmd
}

func newRecordShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <record-id>",
		Short: "Show one record with its answers",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			container, err := NewContainer(globalConfig)
			if err != nil {
				return err
			}
			defer container.Close()

			id, err := model.NewRecordIDFromString(args[0])
			if err != nil {
				return err
			}
			rec, err := container.Records.FindByID(c.Context(), id)
			if err != nil {
				return err
			}

			out := c.OutOrStdout()
			fmt.Fprintf(out, "%s\n", rec.ID())
			fmt.Fprintf(out, "  pair:    %s/%s\n", rec.SessionID(), rec.ParticipantID())
			fmt.Fprintf(out, "  version: %s (%s)\n", rec.Version(), rec.State())
			fmt.Fprintf(out, "  created: %s\n", rec.CreatedAt())
			if rec.IsPending() {
				fmt.Fprintln(out, "  placeholder, no answers recorded yet")
				return nil
			}
			for _, q := range container.Catalog.Flattened() {
				fmt.Fprintf(out, "  %-14s %s\n", rec.Answers()[q.ID], q.Text)
			}
			if notes := rec.FreeformNotes(); notes != nil {
				fmt.Fprintf(out, "  notes: %s\n", *notes)
			}
			return nil
		},
	}
	return cmd
}

func newRecordDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <record-id>",
		Short: "Delete the latest record of its pair",
		Long: "Delete a stored record. Only the highest version of a pair may be\n" +
			"deleted; removing an interior version would leave a hole in the\n" +
			"version sequence and is rejected.",
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			container, err := NewContainer(globalConfig)
			if err != nil {
				return err
			}
			defer container.Close()

			id, err := model.NewRecordIDFromString(args[0])
			if err != nil {
				return err
			}
			if err := container.Records.Delete(c.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "Deleted record %s\n", args[0])
			return nil
		},
	}
	return cmd
}

func newRecordPurgeCmd() *cobra.Command {
	var sessionID, participantID string
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Cascade-delete all records of a session or participant",
		RunE: func(c *cobra.Command, _ []string) error {
			if (sessionID == "") == (participantID == "") {
				return fmt.Errorf("exactly one of --session or --participant is required")
			}

			container, err := NewContainer(globalConfig)
			if err != nil {
				return err
			}
			defer container.Close()

			var removed int64
			if sessionID != "" {
				removed, err = container.Records.DeleteBySession(c.Context(), model.SessionID(sessionID))
			} else {
				removed, err = container.Records.DeleteByParticipant(c.Context(), model.ParticipantID(participantID))
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "Removed %d records\n", removed)
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "Delete all records of this session")
	cmd.Flags().StringVar(&participantID, "participant", "", "Delete all records of this participant")
	return cmd
}
