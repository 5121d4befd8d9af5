// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

/*
Package objectstore uploads public product images.

[GCS] writes to a Google Cloud Storage bucket that is publicly readable and
returns the storage.googleapis.com URL of the object. [Memory] keeps objects
in process for tests and for local runs without a bucket.
*/
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/abbassi001/souk-bazaar-hub/internal/gateway"
)

// # Google Cloud Storage

// GCS uploads objects to one bucket.
type GCS struct {
	client        *storage.Client
	bucket        string
	publicBaseURL string
}

// NewGCSClient creates a storage client. A non-empty endpoint targets an
// emulator and disables authentication.
func NewGCSClient(ctx context.Context, endpoint string) (*storage.Client, error) {
	var options []option.ClientOption
	if endpoint != "" {
		options = append(options, option.WithEndpoint(endpoint), option.WithoutAuthentication())
	}

	client, err := storage.NewClient(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("objectstore: failed to create gcs client: %w", err)
	}
	return client, nil
}

// NewGCS binds a client to bucket.
func NewGCS(client *storage.Client, bucket, publicBaseURL string) *GCS {
	return &GCS{client: client, bucket: bucket, publicBaseURL: publicBaseURL}
}

/*
Upload streams body into the bucket at path.

Returns:
  - string: Public URL of the object
  - error: *gateway.Error (unavailable on context expiry, unknown otherwise)
*/
func (store *GCS) Upload(ctx context.Context, path, contentType string, body io.Reader) (string, error) {
	objectPath := strings.TrimLeft(strings.TrimSpace(path), "/")
	if objectPath == "" {
		return "", gateway.NewError(gateway.CodeUnknown, "object path is empty", nil)
	}

	writer := store.client.Bucket(store.bucket).Object(objectPath).NewWriter(ctx)
	writer.ContentType = contentType
	writer.CacheControl = "public, max-age=31536000"
	writer.Metadata = map[string]string{
		"uploadedAt": time.Now().UTC().Format(time.RFC3339),
	}

	if _, err := io.Copy(writer, body); err != nil {
		_ = writer.Close()
		return "", classify("upload write failed", err)
	}
	if err := writer.Close(); err != nil {
		return "", classify("upload commit failed", err)
	}

	return PublicURL(store.publicBaseURL, store.bucket, objectPath), nil
}

func classify(message string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return gateway.NewError(gateway.CodeUnavailable, message, err)
	}
	return gateway.NewError(gateway.CodeUnknown, message, err)
}

// PublicURL builds the public URL of an object, escaping each path segment.
func PublicURL(baseURL, bucket, objectPath string) string {
	parts := strings.Split(objectPath, "/")
	for i := range parts {
		parts[i] = url.PathEscape(parts[i])
	}
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(baseURL, "/"), bucket, strings.Join(parts, "/"))
}

// # In-memory

// Object is a stored upload.
type Object struct {
	ContentType string
	Data        []byte
}

// Memory is an in-process object store.
type Memory struct {
	mu            sync.Mutex
	objects       map[string]Object
	bucket        string
	publicBaseURL string
}

// NewMemory creates an empty store that reports URLs under publicBaseURL/bucket.
func NewMemory(publicBaseURL, bucket string) *Memory {
	return &Memory{objects: make(map[string]Object), bucket: bucket, publicBaseURL: publicBaseURL}
}

// Upload implements [gateway.ObjectStore].
func (store *Memory) Upload(ctx context.Context, path, contentType string, body io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", classify("upload cancelled", err)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", classify("upload read failed", err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	store.objects[path] = Object{ContentType: contentType, Data: data}

	return PublicURL(store.publicBaseURL, store.bucket, path), nil
}

// Get returns the object stored at path.
func (store *Memory) Get(path string) (Object, bool) {
	store.mu.Lock()
	defer store.mu.Unlock()
	object, found := store.objects[path]
	return object, found
}
