// Package fs provides file-based storage for audio artifacts and item
// records.
package fs

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/speakloud"
)

// validKey rejects keys that would escape the base directory.
func validKey(key string) error {
	if key == "" || strings.Contains(key, "..") || strings.ContainsAny(key, `/\`) {
		return speakloud.Errorf(speakloud.EINVALID, "invalid key %q", key)
	}
	return nil
}

// writeAtomic copies r into path through a temporary file in the same
// directory, so readers never observe a partial file.
func writeAtomic(path string, r io.Reader) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
