package cli

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/atelierlabs/obswork/internal/application/dto"
	"github.com/atelierlabs/obswork/internal/domain/model"
)

func newReportCmd() *cobra.Command {
	var sessions []string
	var asCSV bool
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Consolidated answer table over completed observations",
		RunE: func(c *cobra.Command, _ []string) error {
			container, err := NewContainer(globalConfig)
			if err != nil {
				return err
			}
			defer container.Close()

			sessionIDs := make([]model.SessionID, 0, len(sessions))
			for _, s := range sessions {
				sessionIDs = append(sessionIDs, model.SessionID(s))
			}
			report, err := container.Reports.ConsolidatedReport(c.Context(), sessionIDs)
			if err != nil {
				return err
			}

			if asCSV {
				return writeReportCSV(c.OutOrStdout(), report)
			}
			writeReportText(c.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&sessions, "sessions", nil, "Session IDs to include (comma separated)")
	cmd.Flags().BoolVar(&asCSV, "csv", false, "Emit the full answer matrix as CSV")
	cmd.MarkFlagRequired("sessions")
	return cmd
}

// writeReportText renders one block per record with answers grouped by
// category
func writeReportText(out io.Writer, report *dto.ConsolidatedReport) {
	if len(report.Rows) == 0 {
		fmt.Fprintln(out, "No completed observations for the given sessions")
		return
	}
	for _, row := range report.Rows {
		fmt.Fprintf(out, "%s / %s v%d\n", row.SessionID, row.ParticipantID, row.Version)
		lastHeader := ""
		for _, q := range report.Questions {
			header := q.Category
			if q.Subcategory != "" {
				header += " / " + q.Subcategory
			}
			if header != lastHeader {
				fmt.Fprintf(out, "  [%s]\n", header)
				lastHeader = header
			}
			fmt.Fprintf(out, "    %-14s %s\n", row.Answers[q.ID], q.Text)
		}
		if row.FreeformNotes != nil {
			fmt.Fprintf(out, "  notes: %s\n", *row.FreeformNotes)
		}
		fmt.Fprintln(out)
	}
}

// writeReportCSV emits one column per catalog question, one row per record
func writeReportCSV(out io.Writer, report *dto.ConsolidatedReport) error {
	w := csv.NewWriter(out)

	header := []string{"session", "participant", "version", "recorded_at"}
	for _, q := range report.Questions {
		header = append(header, q.ID)
	}
	header = append(header, "notes")
	if err := w.Write(header); err != nil {
		return err
	}

	for _, row := range report.Rows {
		record := []string{
			row.SessionID,
			row.ParticipantID,
			strconv.Itoa(row.Version),
			row.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for _, q := range report.Questions {
			record = append(record, row.Answers[q.ID])
		}
		notes := ""
		if row.FreeformNotes != nil {
			notes = *row.FreeformNotes
		}
		record = append(record, notes)
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
