package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FSStore keeps artifacts under {root}/{bucket}/{key}.
type FSStore struct {
	root string
}

var _ Store = (*FSStore)(nil)

// NewFSStore creates a filesystem store rooted at root.
func NewFSStore(root string) *FSStore {
	return &FSStore{root: root}
}

// Put writes data, replacing any existing object atomically.
func (s *FSStore) Put(_ context.Context, bucket Bucket, key string, data []byte) error {
	if err := validate(bucket, key); err != nil {
		return fmt.Errorf("put: %w", err)
	}
	p := s.objectPath(bucket, key)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return fmt.Errorf("creating artifact directory: %w", err)
	}
	if err := writeFileAtomic(p, data, 0644); err != nil {
		return fmt.Errorf("writing artifact %s/%s: %w", bucket, key, err)
	}
	return nil
}

// Get reads an object.
func (s *FSStore) Get(_ context.Context, bucket Bucket, key string) ([]byte, error) {
	if err := validate(bucket, key); err != nil {
		return nil, fmt.Errorf("get: %w", err)
	}
	data, err := os.ReadFile(s.objectPath(bucket, key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, bucket, key)
	}
	if err != nil {
		return nil, fmt.Errorf("reading artifact %s/%s: %w", bucket, key, err)
	}
	return data, nil
}

// Exists reports whether an object is present.
func (s *FSStore) Exists(_ context.Context, bucket Bucket, key string) (bool, error) {
	if err := validate(bucket, key); err != nil {
		return false, fmt.Errorf("exists: %w", err)
	}
	_, err := os.Stat(s.objectPath(bucket, key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("checking artifact: %w", err)
	}
	return true, nil
}

func (s *FSStore) objectPath(bucket Bucket, key string) string {
	return filepath.Join(s.root, string(bucket), filepath.FromSlash(key))
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	_ = tmp.Sync()
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
