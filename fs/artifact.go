package fs

import (
	"context"
	"errors"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/fwojciec/speakloud"
)

// Ensure ArtifactStore implements speakloud.ArtifactStore at compile time.
var _ speakloud.ArtifactStore = (*ArtifactStore)(nil)

// ArtifactStore keeps audio artifacts in a local directory.
type ArtifactStore struct {
	baseDir string
}

// NewArtifactStore creates an ArtifactStore rooted at baseDir.
func NewArtifactStore(baseDir string) *ArtifactStore {
	return &ArtifactStore{baseDir: baseDir}
}

func (s *ArtifactStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := validKey(key); err != nil {
		return false, err
	}
	_, err := os.Stat(filepath.Join(s.baseDir, key))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Put copies the file at path to baseDir/key and returns a file:// URL.
func (s *ArtifactStore) Put(ctx context.Context, key, path, contentType string) (string, error) {
	if err := validKey(key); err != nil {
		return "", err
	}

	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := filepath.Abs(filepath.Join(s.baseDir, key))
	if err != nil {
		return "", err
	}
	if err := writeAtomic(dst, src); err != nil {
		return "", err
	}
	return fileURL(dst), nil
}

// Location returns the file:// URL of baseDir/key.
func (s *ArtifactStore) Location(key string) string {
	p := filepath.Join(s.baseDir, key)
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return fileURL(p)
}

func fileURL(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}
