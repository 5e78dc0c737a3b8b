package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/atelierlabs/obswork/internal/application/port/output"
	"github.com/atelierlabs/obswork/internal/pkg/slug"
)

// S3AttachmentGateway implements AttachmentGateway using AWS S3.
// Bucket structure: s3://<bucket>/<prefix>/attachments/<recordID>/<attachmentID>/
//   - content: attachment bytes
//   - metadata.json: attachment metadata
type S3AttachmentGateway struct {
	client     S3API
	bucketName string
	prefix     string // optional key prefix (e.g., "obswork/prod")
}

// S3Config holds S3 attachment gateway configuration
type S3Config struct {
	BucketName string // S3 bucket name
	Prefix     string // Optional key prefix
	Region     string // AWS region (optional, uses default if empty)
}

// NewS3AttachmentGateway creates a new S3-based attachment gateway
func NewS3AttachmentGateway(cfg S3Config) (*S3AttachmentGateway, error) {
	awsCfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	if cfg.Region != "" {
		awsCfg.Region = cfg.Region
	}

	return &S3AttachmentGateway{
		client:     s3.NewFromConfig(awsCfg),
		bucketName: cfg.BucketName,
		prefix:     cfg.Prefix,
	}, nil
}

// NewS3AttachmentGatewayWithClient creates a gateway with a custom S3
// client, primarily for testing with mocks
func NewS3AttachmentGatewayWithClient(client S3API, bucketName, prefix string) *S3AttachmentGateway {
	return &S3AttachmentGateway{
		client:     client,
		bucketName: bucketName,
		prefix:     prefix,
	}
}

// SaveAttachment saves an attachment to S3
func (g *S3AttachmentGateway) SaveAttachment(ctx context.Context, req output.SaveAttachmentRequest) (*output.AttachmentMetadata, error) {
	if req.RecordID == "" {
		return nil, fmt.Errorf("record id is required")
	}
	attachmentID := generateAttachmentID(req.Content)
	contentKey := g.buildKey("attachments", req.RecordID, attachmentID, "content")

	// S3 object metadata values must be ASCII; participant names are not
	s3Metadata := map[string]string{
		"attachment-id":   attachmentID,
		"record-id":       req.RecordID,
		"attachment-kind": string(req.Kind),
		"participant":     slug.Make(req.ParticipantName),
		"uploaded-at":     time.Now().Format(time.RFC3339),
	}

	_, err := g.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(g.bucketName),
		Key:         aws.String(contentKey),
		Body:        bytes.NewReader(req.Content),
		ContentType: aws.String(req.ContentType),
		Metadata:    s3Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("upload to S3: %w", err)
	}

	metadata := output.AttachmentMetadata{
		ID:          attachmentID,
		RecordID:    req.RecordID,
		Kind:        req.Kind,
		StoragePath: fmt.Sprintf("s3://%s/%s", g.bucketName, contentKey),
		ContentType: req.ContentType,
		Size:        int64(len(req.Content)),
		UploadedAt:  time.Now(),
		Metadata:    req.Metadata,
	}

	metadataKey := g.buildKey("attachments", req.RecordID, attachmentID, "metadata.json")
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	_, err = g.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(g.bucketName),
		Key:         aws.String(metadataKey),
		Body:        bytes.NewReader(metadataJSON),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("upload metadata to S3: %w", err)
	}

	return &metadata, nil
}

// LoadAttachment retrieves an attachment from S3
func (g *S3AttachmentGateway) LoadAttachment(ctx context.Context, recordID, attachmentID string) (*output.Attachment, error) {
	metadataKey := g.buildKey("attachments", recordID, attachmentID, "metadata.json")
	metadataObj, err := g.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(g.bucketName),
		Key:    aws.String(metadataKey),
	})
	if err != nil {
		return nil, fmt.Errorf("attachment not found %s/%s: %w", recordID, attachmentID, err)
	}
	defer metadataObj.Body.Close()

	metadataJSON, err := io.ReadAll(metadataObj.Body)
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	var metadata output.AttachmentMetadata
	if err := json.Unmarshal(metadataJSON, &metadata); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}

	contentKey := g.buildKey("attachments", recordID, attachmentID, "content")
	contentObj, err := g.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(g.bucketName),
		Key:    aws.String(contentKey),
	})
	if err != nil {
		return nil, fmt.Errorf("download content from S3: %w", err)
	}
	defer contentObj.Body.Close()

	content, err := io.ReadAll(contentObj.Body)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}

	return &output.Attachment{
		ID:       attachmentID,
		Content:  content,
		Metadata: metadata,
	}, nil
}

// ListAttachments lists attachments stored for a record
func (g *S3AttachmentGateway) ListAttachments(ctx context.Context, recordID string) ([]*output.AttachmentMetadata, error) {
	prefix := g.buildKey("attachments", recordID) + "/"
	listOutput, err := g.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(g.bucketName),
		Prefix: aws.String(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("list S3 objects: %w", err)
	}

	var metadatas []*output.AttachmentMetadata
	for _, obj := range listOutput.Contents {
		key := aws.ToString(obj.Key)
		if !strings.HasSuffix(key, "metadata.json") {
			continue
		}
		metadataObj, err := g.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(g.bucketName),
			Key:    aws.String(key),
		})
		if err != nil {
			return nil, fmt.Errorf("download metadata from S3: %w", err)
		}
		metadataJSON, err := io.ReadAll(metadataObj.Body)
		metadataObj.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read metadata: %w", err)
		}
		var metadata output.AttachmentMetadata
		if err := json.Unmarshal(metadataJSON, &metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
		metadatas = append(metadatas, &metadata)
	}
	return metadatas, nil
}

// buildKey joins key parts under the configured prefix
func (g *S3AttachmentGateway) buildKey(parts ...string) string {
	all := parts
	if g.prefix != "" {
		all = append([]string{g.prefix}, parts...)
	}
	return strings.Join(all, "/")
}
