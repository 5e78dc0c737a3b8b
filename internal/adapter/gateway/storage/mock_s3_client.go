package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// MockS3Client is an in-memory S3API implementation for tests
type MockS3Client struct {
	mu      sync.RWMutex
	objects map[string]*mockS3Object // key -> object
}

// mockS3Object represents an S3 object stored in memory
type mockS3Object struct {
	content     []byte
	contentType string
	metadata    map[string]string
}

// NewMockS3Client creates a new mock S3 client
func NewMockS3Client() *MockS3Client {
	return &MockS3Client{
		objects: make(map[string]*mockS3Object),
	}
}

// PutObject simulates uploading an object to S3
func (m *MockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	content, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	key := aws.ToString(params.Key)
	m.objects[key] = &mockS3Object{
		content:     content,
		contentType: aws.ToString(params.ContentType),
		metadata:    params.Metadata,
	}
	return &s3.PutObjectOutput{}, nil
}

// GetObject simulates retrieving an object from S3
func (m *MockS3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key := aws.ToString(params.Key)
	obj, exists := m.objects[key]
	if !exists {
		return nil, &types.NoSuchKey{
			Message: aws.String(fmt.Sprintf("The specified key does not exist: %s", key)),
		}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(obj.content)),
		ContentType:   aws.String(obj.contentType),
		ContentLength: aws.Int64(int64(len(obj.content))),
		Metadata:      obj.metadata,
	}, nil
}

// HeadObject simulates a metadata-only fetch
func (m *MockS3Client) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key := aws.ToString(params.Key)
	obj, exists := m.objects[key]
	if !exists {
		return nil, &types.NotFound{
			Message: aws.String(fmt.Sprintf("Not found: %s", key)),
		}
	}
	return &s3.HeadObjectOutput{
		ContentType:   aws.String(obj.contentType),
		ContentLength: aws.Int64(int64(len(obj.content))),
		Metadata:      obj.metadata,
	}, nil
}

// ListObjectsV2 simulates listing objects by prefix
func (m *MockS3Client) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	prefix := aws.ToString(params.Prefix)
	var keys []string
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var contents []types.Object
	for _, key := range keys {
		k := key
		contents = append(contents, types.Object{
			Key:  aws.String(k),
			Size: aws.Int64(int64(len(m.objects[k].content))),
		})
	}
	return &s3.ListObjectsV2Output{
		Contents: contents,
		KeyCount: aws.Int32(int32(len(contents))),
	}, nil
}

// ObjectCount returns the number of stored objects
func (m *MockS3Client) ObjectCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
