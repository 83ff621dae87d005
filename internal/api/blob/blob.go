// Package blob abstracts the object store pizza images land in. The real
// deployment points this at a bucket; the default implementation just writes
// to local disk, which is all the API itself needs to know about.
package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Uploader is the opaque "put object" collaborator.
type Uploader interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (url string, err error)
}

// LocalDir stores objects as plain files under Dir and returns BaseURL/key.
type LocalDir struct {
	Dir     string
	BaseURL string
}

func (l *LocalDir) Put(ctx context.Context, key string, data []byte, _ string) (string, error) {
	path := filepath.Join(l.Dir, filepath.Clean("/"+key))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("blob: mkdir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("blob: write %s: %w", key, err)
	}

	return l.BaseURL + "/" + key, nil
}
