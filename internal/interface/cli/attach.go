package cli

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/atelierlabs/obswork/internal/application/port/output"
	"github.com/atelierlabs/obswork/internal/domain/model"
)

func newAttachCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attach",
		Short: "Manage material attached to observation records",
	}
	cmd.AddCommand(newAttachAddCmd())
	cmd.AddCommand(newAttachListCmd())
	cmd.AddCommand(newAttachGetCmd())
	return cmd
}

func newAttachAddCmd() *cobra.Command {
	var kind, participantName string
	cmd := &cobra.Command{
		Use:   "add <record-id> <file>",
		Short: "Attach a file to a completed observation record",
		Args:  cobra.ExactArgs(2),
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
			if rec.IsPending() {
				return fmt.Errorf("record %s is a pending placeholder, record the observation first", args[0])
			}

			content, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read attachment file: %w", err)
			}

			meta, err := container.Attachments.SaveAttachment(c.Context(), output.SaveAttachmentRequest{
				RecordID:        rec.ID().String(),
				ParticipantName: participantName,
				Kind:            output.AttachmentKind(kind),
				Content:         content,
				ContentType:     http.DetectContentType(content),
				Metadata:        map[string]string{"filename": filepath.Base(args[1])},
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "Attached %s (%s, %d bytes) as %s\n",
				filepath.Base(args[1]), meta.Kind, meta.Size, meta.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", string(output.AttachmentKindPhoto), "Attachment kind: photo, document or audio")
	cmd.Flags().StringVar(&participantName, "participant-name", "", "Participant name for storage keys")
	return cmd
}

func newAttachListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <record-id>",
		Short: "List the attachments of a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			container, err := NewContainer(globalConfig)
			if err != nil {
				return err
			}
			defer container.Close()

			metas, err := container.Attachments.ListAttachments(c.Context(), args[0])
			if err != nil {
				return err
			}
			if len(metas) == 0 {
				fmt.Fprintln(c.OutOrStdout(), "No attachments")
				return nil
			}
			for _, m := range metas {
				fmt.Fprintf(c.OutOrStdout(), "%s  %-8s %8d  %s\n",
					m.ID, m.Kind, m.Size, m.ContentType)
			}
			return nil
		},
	}
	return cmd
}

func newAttachGetCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "get <record-id> <attachment-id>",
		Short: "Download one attachment",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			container, err := NewContainer(globalConfig)
			if err != nil {
				return err
			}
			defer container.Close()

			att, err := container.Attachments.LoadAttachment(c.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if outPath == "" {
				outPath = att.ID
				if name := att.Metadata.Metadata["filename"]; name != "" {
					outPath = name
				}
			}
			if err := os.WriteFile(outPath, att.Content, 0o644); err != nil {
				return fmt.Errorf("write attachment: %w", err)
			}
			fmt.Fprintf(c.OutOrStdout(), "Wrote %s (%d bytes)\n", outPath, len(att.Content))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (defaults to the stored filename)")
	return cmd
}
