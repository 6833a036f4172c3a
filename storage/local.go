package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore implements BlobStore on the local filesystem, for development
// deployments without object storage.
type LocalStore struct {
	// BaseDir is the directory files are written under.
	BaseDir string
	// BaseURL is the public prefix the files are served from.
	BaseURL string
}

// Store writes the stream to BaseDir/folder/name and returns its URL.
func (ls *LocalStore) Store(ctx context.Context, folder, name string, r io.Reader, size int64, contentType string) (string, error) {
	dir := filepath.Join(ls.BaseDir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	dst := filepath.Join(dir, name)
	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		_ = os.Remove(dst)
		return "", err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return "", err
	}
	return strings.TrimSuffix(ls.BaseURL, "/") + "/" + folder + "/" + name, nil
}

// Delete removes the file the URL refers to. Missing files are ignored.
func (ls *LocalStore) Delete(ctx context.Context, url string) error {
	rel := strings.TrimPrefix(url, strings.TrimSuffix(ls.BaseURL, "/"))
	full := filepath.Join(ls.BaseDir, filepath.FromSlash(strings.TrimPrefix(rel, "/")))
	err := os.Remove(full)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
