package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atelierlabs/obswork/internal/domain/model"
	"github.com/atelierlabs/obswork/internal/domain/model/observation"
)

// answerKeys maps single-letter console input to the answer domain
var answerKeys = map[string]model.Answer{
	"y": model.AnswerYes,
	"n": model.AnswerNo,
	"s": model.AnswerNotSure,
	"a": model.AnswerNotApplicable,
}

func newObserveCmd() *cobra.Command {
	var sessionID, participantID string
	cmd := &cobra.Command{
		Use:   "observe",
		Short: "Record an observation by answering the catalog question by question",
		RunE: func(c *cobra.Command, _ []string) error {
			container, err := NewContainer(globalConfig)
			if err != nil {
				return err
			}
			defer container.Close()

			ctx := c.Context()
			wf, err := container.Recording.Start(ctx,
				model.SessionID(sessionID), model.ParticipantID(participantID))
			if err != nil {
				return err
			}

			out := c.OutOrStdout()
			_, total := wf.Progress()
			if wf.IsRedo() {
				fmt.Fprintf(out, "Recording observation %s for %s/%s (%d questions)\n",
					wf.TargetVersion(), sessionID, participantID, total)
			} else {
				fmt.Fprintf(out, "Completing pending observation %s for %s/%s (%d questions)\n",
					wf.TargetVersion(), sessionID, participantID, total)
			}
			fmt.Fprintln(out, "Answers: [y]es  [n]o  [s] not sure  [a] not applicable  [q]uit")

			scanner := bufio.NewScanner(c.InOrStdin())
			for {
				q, err := wf.CurrentQuestion()
				if err != nil {
					return err
				}
				answered, _ := wf.Progress()
				header := q.Category
				if q.Subcategory != "" {
					header += " / " + q.Subcategory
				}
				fmt.Fprintf(out, "\n[%d/%d] %s\n%s\n> ", answered+1, total, header, q.Text)

				line, err := readLine(scanner)
				if err != nil {
					container.Recording.Cancel(wf)
					return err
				}
				key := strings.ToLower(strings.TrimSpace(line))
				if key == "q" {
					if err := container.Recording.Cancel(wf); err != nil {
						return err
					}
					fmt.Fprintln(out, "Observation cancelled, nothing was stored")
					return nil
				}
				value, ok := answerKeys[key]
				if !ok {
					fmt.Fprintf(out, "Unknown answer %q, try again\n", key)
					continue
				}

				_, done, err := container.Recording.Answer(wf, q.ID, value)
				if err != nil {
					return err
				}
				if done {
					break
				}
			}

			fmt.Fprint(out, "\nFreeform notes (empty for none)\n> ")
			line, err := readLine(scanner)
			if err != nil {
				container.Recording.Cancel(wf)
				return err
			}
			var notes *string
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				notes = &trimmed
			}

			rec, err := container.Recording.SubmitNotes(ctx, wf, notes)
			if err != nil {
				if errors.Is(err, observation.ErrRecordConflict) {
					return fmt.Errorf("observation %s was completed elsewhere, rerun observe to record a new version: %w",
						wf.TargetVersion(), err)
				}
				return err
			}
			fmt.Fprintf(out, "Stored observation %s v%d\n", rec.ID, rec.Version)
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "Session ID (required)")
	cmd.Flags().StringVar(&participantID, "participant", "", "Participant ID (required)")
	cmd.MarkFlagRequired("session")
	cmd.MarkFlagRequired("participant")
	return cmd
}

// readLine reads one line from the scanner, mapping end of input to an
// error so an interrupted observation cancels cleanly
func readLine(scanner *bufio.Scanner) (string, error) {
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return scanner.Text(), nil
}
