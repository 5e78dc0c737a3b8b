// Package output defines outbound ports of the application layer.
package output

import (
	"context"
	"time"
)

// AttachmentGateway is the interface for storing material captured during
// an observation (photos of the participant's production, scanned sheets).
// Supports both local filesystem and S3 backends.
type AttachmentGateway interface {
	// SaveAttachment persists an attachment for a record
	SaveAttachment(ctx context.Context, req SaveAttachmentRequest) (*AttachmentMetadata, error)

	// LoadAttachment retrieves an attachment of a record
	LoadAttachment(ctx context.Context, recordID, attachmentID string) (*Attachment, error)

	// ListAttachments lists attachments stored for a record
	ListAttachments(ctx context.Context, recordID string) ([]*AttachmentMetadata, error)
}

// SaveAttachmentRequest represents a request to save an attachment
type SaveAttachmentRequest struct {
	RecordID        string            // Owning observational record
	ParticipantName string            // Used for human-readable storage keys
	Kind            AttachmentKind    // Type of attachment
	Content         []byte            // Attachment content
	ContentType     string            // MIME type (optional)
	Metadata        map[string]string // Additional metadata
}

// AttachmentKind represents the type of attachment
type AttachmentKind string

const (
	AttachmentKindPhoto    AttachmentKind = "photo"    // Photographed production
	AttachmentKindDocument AttachmentKind = "document" // Scanned sheet or document
	AttachmentKindAudio    AttachmentKind = "audio"    // Recorded verbalization
)

// Attachment represents a stored attachment
type Attachment struct {
	ID       string
	Content  []byte
	Metadata AttachmentMetadata
}

// AttachmentMetadata contains information about an attachment
type AttachmentMetadata struct {
	ID          string            // Unique attachment ID
	RecordID    string            // Owning record ID
	Kind        AttachmentKind    // Attachment kind
	StoragePath string            // Storage path (file path or s3://bucket/key)
	ContentType string            // MIME type
	Size        int64             // Size in bytes
	UploadedAt  time.Time         // Upload timestamp
	Metadata    map[string]string // Additional metadata
}
