// Package gcs stores audio artifacts in Google Cloud Storage.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"github.com/fwojciec/speakloud"
)

// Ensure ArtifactStore implements speakloud.ArtifactStore at compile time.
var _ speakloud.ArtifactStore = (*ArtifactStore)(nil)

// ArtifactStore implements speakloud.ArtifactStore on a GCS bucket.
type ArtifactStore struct {
	bucket *storage.BucketHandle
	name   string
}

// NewArtifactStore creates an ArtifactStore for bucket.
func NewArtifactStore(client *storage.Client, bucket string) *ArtifactStore {
	return &ArtifactStore{bucket: client.Bucket(bucket), name: bucket}
}

func (s *ArtifactStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.bucket.Object(key).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat gs://%s/%s: %w", s.name, key, err)
	}
	return true, nil
}

// Put uploads the file at path and returns its public URL.
func (s *ArtifactStore) Put(ctx context.Context, key, path, contentType string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := s.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload gs://%s/%s: %w", s.name, key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("upload gs://%s/%s: %w", s.name, key, err)
	}
	return PublicURL(s.name, key), nil
}

func (s *ArtifactStore) Location(key string) string {
	return PublicURL(s.name, key)
}

// PublicURL returns the storage.googleapis.com URL of an object.
func PublicURL(bucket, key string) string {
	return "https://storage.googleapis.com/" + bucket + "/" + key
}
