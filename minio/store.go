// Package minio stores audio artifacts in an S3-compatible bucket.
package minio

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/fwojciec/speakloud"
	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config holds connection settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string

	// PublicBaseURL, when set, prefixes object keys in returned locations.
	PublicBaseURL string
}

// Ensure ArtifactStore implements speakloud.ArtifactStore at compile time.
var _ speakloud.ArtifactStore = (*ArtifactStore)(nil)

// ArtifactStore implements speakloud.ArtifactStore on MinIO or any S3 API.
type ArtifactStore struct {
	client  *mclient.Client
	bucket  string
	baseURL string
}

// New connects to the endpoint and checks that the bucket exists. The
// endpoint may carry an http or https scheme, which selects TLS.
func New(ctx context.Context, cfg Config) (*ArtifactStore, error) {
	endpoint := cfg.Endpoint
	secure := strings.HasPrefix(endpoint, "https://")
	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	client, err := mclient.New(endpoint, &mclient.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		return nil, speakloud.Errorf(speakloud.ENOTFOUND, "bucket %q does not exist", cfg.Bucket)
	}

	baseURL := strings.TrimSuffix(cfg.PublicBaseURL, "/")
	if baseURL == "" {
		scheme := "http"
		if secure {
			scheme = "https"
		}
		baseURL = scheme + "://" + endpoint + "/" + cfg.Bucket
	}

	return &ArtifactStore{client: client, bucket: cfg.Bucket, baseURL: baseURL}, nil
}

func (s *ArtifactStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, key, mclient.StatObjectOptions{})
	if err != nil {
		resp := mclient.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", key, err)
	}
	return true, nil
}

// Put uploads the file at path and returns its public URL.
func (s *ArtifactStore) Put(ctx context.Context, key, path, contentType string) (string, error) {
	_, err := s.client.FPutObject(ctx, s.bucket, key, path, mclient.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return Location(s.baseURL, key), nil
}

func (s *ArtifactStore) Location(key string) string {
	return Location(s.baseURL, key)
}

// Location joins a base URL and an object key.
func Location(baseURL, key string) string {
	return strings.TrimSuffix(baseURL, "/") + "/" + key
}
