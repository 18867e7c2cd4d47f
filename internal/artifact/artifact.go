package artifact

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrNotFound is returned by Get for a missing object.
var ErrNotFound = errors.New("artifact not found")

// Bucket is a top-level artifact namespace.
type Bucket string

const (
	Real          Bucket = "real"
	Synthetic     Bucket = "synthetic"
	Tasks         Bucket = "tasks"
	FinishedTasks Bucket = "finished-tasks"
	FailedTasks   Bucket = "failed-tasks"
	SkippedTasks  Bucket = "skipped-tasks"
)

// Buckets returns every known bucket.
func Buckets() []Bucket {
	return []Bucket{Real, Synthetic, Tasks, FinishedTasks, FailedTasks, SkippedTasks}
}

// Valid reports whether b is a known bucket.
func (b Bucket) Valid() bool {
	for _, known := range Buckets() {
		if b == known {
			return true
		}
	}
	return false
}

// Store puts and gets artifacts.
type Store interface {
	Put(ctx context.Context, bucket Bucket, key string, data []byte) error
	Get(ctx context.Context, bucket Bucket, key string) ([]byte, error)
	Exists(ctx context.Context, bucket Bucket, key string) (bool, error)
}

// DataKey returns the key of a data file for an experiment storage path.
func DataKey(storagePath, ext string) string {
	return path.Join("data", storagePath) + ext
}

// validate rejects unknown buckets and keys that could escape the bucket.
func validate(bucket Bucket, key string) error {
	if !bucket.Valid() {
		return fmt.Errorf("unknown bucket %q", bucket)
	}
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return fmt.Errorf("invalid key %q", key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return fmt.Errorf("invalid key %q", key)
		}
	}
	return nil
}
