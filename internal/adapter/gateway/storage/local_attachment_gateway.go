// Package storage provides attachment gateway implementations for local
// filesystem and S3 backends.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/atelierlabs/obswork/internal/application/port/output"
)

// LocalAttachmentGateway implements AttachmentGateway on the local
// filesystem.
// Directory structure: <baseDir>/attachments/<recordID>/<attachmentID>/
//   - content: attachment bytes
//   - metadata.json: attachment metadata
type LocalAttachmentGateway struct {
	baseDir string
}

// NewLocalAttachmentGateway creates a new local filesystem-based gateway
func NewLocalAttachmentGateway(baseDir string) (*LocalAttachmentGateway, error) {
	attachmentsDir := filepath.Join(baseDir, "attachments")
	if err := os.MkdirAll(attachmentsDir, 0755); err != nil {
		return nil, fmt.Errorf("create attachments directory: %w", err)
	}
	return &LocalAttachmentGateway{baseDir: baseDir}, nil
}

// SaveAttachment saves an attachment to the local filesystem
func (g *LocalAttachmentGateway) SaveAttachment(ctx context.Context, req output.SaveAttachmentRequest) (*output.AttachmentMetadata, error) {
	if req.RecordID == "" {
		return nil, fmt.Errorf("record id is required")
	}
	attachmentID := generateAttachmentID(req.Content)

	attachmentDir := filepath.Join(g.baseDir, "attachments", req.RecordID, attachmentID)
	if err := os.MkdirAll(attachmentDir, 0755); err != nil {
		return nil, fmt.Errorf("create attachment directory: %w", err)
	}

	contentPath := filepath.Join(attachmentDir, "content")
	if err := os.WriteFile(contentPath, req.Content, 0644); err != nil {
		return nil, fmt.Errorf("write attachment content: %w", err)
	}

	metadata := output.AttachmentMetadata{
		ID:          attachmentID,
		RecordID:    req.RecordID,
		Kind:        req.Kind,
		StoragePath: contentPath,
		ContentType: req.ContentType,
		Size:        int64(len(req.Content)),
		UploadedAt:  time.Now(),
		Metadata:    req.Metadata,
	}

	metadataJSON, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	metadataPath := filepath.Join(attachmentDir, "metadata.json")
	if err := os.WriteFile(metadataPath, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("write metadata: %w", err)
	}

	return &metadata, nil
}

// LoadAttachment retrieves an attachment from the local filesystem
func (g *LocalAttachmentGateway) LoadAttachment(ctx context.Context, recordID, attachmentID string) (*output.Attachment, error) {
	attachmentDir := filepath.Join(g.baseDir, "attachments", recordID, attachmentID)

	metadataJSON, err := os.ReadFile(filepath.Join(attachmentDir, "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("attachment not found: %s/%s", recordID, attachmentID)
		}
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	var metadata output.AttachmentMetadata
	if err := json.Unmarshal(metadataJSON, &metadata); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}

	content, err := os.ReadFile(filepath.Join(attachmentDir, "content"))
	if err != nil {
		return nil, fmt.Errorf("read attachment content: %w", err)
	}

	return &output.Attachment{
		ID:       attachmentID,
		Content:  content,
		Metadata: metadata,
	}, nil
}

// ListAttachments lists attachments stored for a record
func (g *LocalAttachmentGateway) ListAttachments(ctx context.Context, recordID string) ([]*output.AttachmentMetadata, error) {
	recordDir := filepath.Join(g.baseDir, "attachments", recordID)
	entries, err := os.ReadDir(recordDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read record directory: %w", err)
	}

	var metadatas []*output.AttachmentMetadata
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		metadataJSON, err := os.ReadFile(filepath.Join(recordDir, entry.Name(), "metadata.json"))
		if err != nil {
			return nil, fmt.Errorf("read metadata for %s: %w", entry.Name(), err)
		}
		var metadata output.AttachmentMetadata
		if err := json.Unmarshal(metadataJSON, &metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata for %s: %w", entry.Name(), err)
		}
		metadatas = append(metadatas, &metadata)
	}
	return metadatas, nil
}

// generateAttachmentID derives a stable id from content
func generateAttachmentID(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])[:16]
}
