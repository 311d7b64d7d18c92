package local

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrianliechti/mistral-ocr/pkg/storage"
)

var _ storage.Sink = &Sink{}

// Sink writes artifacts below a root directory. Files are written to a
// temporary name and renamed into place, so readers never observe a
// half-written artifact.
type Sink struct {
	root string
}

func New(root string) (*Sink, error) {
	if root == "" {
		root = "."
	}

	return &Sink{
		root: root,
	}, nil
}

func (s *Sink) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.resolve(key)

	if err != nil {
		return err
	}

	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")

	if err != nil {
		return err
	}

	defer os.Remove(f.Name())

	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return err
	}

	if err := os.Chmod(f.Name(), 0644); err != nil {
		return err
	}

	return os.Rename(f.Name(), path)
}

func (s *Sink) Delete(ctx context.Context, key string) error {
	path, err := s.resolve(key)

	if err != nil {
		return err
	}

	return os.RemoveAll(path)
}

func (s *Sink) resolve(key string) (string, error) {
	key = strings.Trim(key, "/")

	if key == "" {
		return "", errors.New("invalid key")
	}

	clean := filepath.Clean(filepath.FromSlash(key))

	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", errors.New("invalid key: " + key)
	}

	return filepath.Join(s.root, clean), nil
}
