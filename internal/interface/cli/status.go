package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atelierlabs/obswork/internal/domain/model"
)

func newStatusCmd() *cobra.Command {
	var sessionID, participantID string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the observation status of a session/participant pair",
		RunE: func(c *cobra.Command, _ []string) error {
			container, err := NewContainer(globalConfig)
			if err != nil {
				return err
			}
			defer container.Close()

			ctx := c.Context()
			sid := model.SessionID(sessionID)
			pid := model.ParticipantID(participantID)
			out := c.OutOrStdout()

			count, err := container.Versioning.ObservationCount(ctx, sid, pid)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Pair %s/%s\n", sessionID, participantID)
			fmt.Fprintf(out, "  stored versions: %d\n", count)

			latest, err := container.Records.FindLatest(ctx, sid, pid)
			if err != nil {
				return err
			}
			if latest == nil {
				fmt.Fprintln(out, "  no records, pair is unprovisioned")
				return nil
			}
			fmt.Fprintf(out, "  latest: %s %s (%s)\n",
				latest.Version(), latest.State(), latest.ID())

			pending, err := container.Records.FindPending(ctx, sid, pid)
			if err != nil {
				return err
			}
			if pending != nil {
				fmt.Fprintf(out, "  pending placeholder at %s awaits recording\n", pending.Version())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "Session ID (required)")
	cmd.Flags().StringVar(&participantID, "participant", "", "Participant ID (required)")
	cmd.MarkFlagRequired("session")
	cmd.MarkFlagRequired("participant")
	return cmd
}
