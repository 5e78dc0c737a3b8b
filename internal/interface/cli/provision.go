package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atelierlabs/obswork/internal/application/dto"
	"github.com/atelierlabs/obswork/internal/domain/model"
)

func newProvisionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Provision pending observation placeholders on membership changes",
	}
	cmd.AddCommand(newProvisionParticipantCmd())
	cmd.AddCommand(newProvisionSessionCmd())
	return cmd
}

func newProvisionParticipantCmd() *cobra.Command {
	var sessions []string
	cmd := &cobra.Command{
		Use:   "participant <participant-id>",
		Short: "Provision a new participant across existing sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			container, err := NewContainer(globalConfig)
			if err != nil {
				return err
			}
			defer container.Close()

			sessionIDs := make([]model.SessionID, 0, len(sessions))
			for _, s := range sessions {
				sessionIDs = append(sessionIDs, model.SessionID(s))
			}
			report, err := container.Provision.ParticipantAdded(c.Context(),
				model.ParticipantID(args[0]), sessionIDs)
			if err != nil {
				return err
			}
			return printProvisionReport(c.OutOrStdout(), report)
		},
	}
	cmd.Flags().StringSliceVar(&sessions, "sessions", nil, "Existing session IDs (comma separated)")
	cmd.MarkFlagRequired("sessions")
	return cmd
}

func newProvisionSessionCmd() *cobra.Command {
	var participants []string
	cmd := &cobra.Command{
		Use:   "session <session-id>",
		Short: "Provision a new session across existing participants",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			container, err := NewContainer(globalConfig)
			if err != nil {
				return err
			}
			defer container.Close()

			participantIDs := make([]model.ParticipantID, 0, len(participants))
			for _, p := range participants {
				participantIDs = append(participantIDs, model.ParticipantID(p))
			}
			report, err := container.Provision.SessionAdded(c.Context(),
				model.SessionID(args[0]), participantIDs)
			if err != nil {
				return err
			}
			return printProvisionReport(c.OutOrStdout(), report)
		},
	}
	cmd.Flags().StringSliceVar(&participants, "participants", nil, "Existing participant IDs (comma separated)")
	cmd.MarkFlagRequired("participants")
	return cmd
}

// printProvisionReport renders one line per pair plus a summary. A batch
// with failures exits non-zero so scripted callers notice.
func printProvisionReport(out io.Writer, report *dto.ProvisionReport) error {
	for _, p := range report.Created {
		fmt.Fprintf(out, "created  %s/%s v1 (pending)\n", p.SessionID, p.ParticipantID)
	}
	for _, p := range report.Skipped {
		fmt.Fprintf(out, "skipped  %s/%s (already provisioned)\n", p.SessionID, p.ParticipantID)
	}
	for _, f := range report.Failures {
		fmt.Fprintf(out, "FAILED   %s/%s: %s\n", f.SessionID, f.ParticipantID, f.Reason)
	}
	fmt.Fprintf(out, "%d created, %d skipped, %d failed\n",
		len(report.Created), len(report.Skipped), len(report.Failures))

	if len(report.Failures) > 0 {
		pairs := make([]string, 0, len(report.Failures))
		for _, f := range report.Failures {
			pairs = append(pairs, f.SessionID+"/"+f.ParticipantID)
		}
		return fmt.Errorf("provisioning failed for %s", strings.Join(pairs, ", "))
	}
	return nil
}
