package artifact

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStore_PutGet(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s := NewFSStore(root)

	key := DataKey("NOR/adult/42/IMP/placeholder/10/ctgan", ".csv")
	assert.Equal(t, "data/NOR/adult/42/IMP/placeholder/10/ctgan.csv", key)

	ok, err := s.Exists(ctx, Synthetic, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, Synthetic, key, []byte("a,b\n1,2\n")))
	ok, err = s.Exists(ctx, Synthetic, key)
	require.NoError(t, err)
	assert.True(t, ok)

	data, err := s.Get(ctx, Synthetic, key)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(data))

	_, err = os.Stat(filepath.Join(root, "synthetic", "data", "NOR", "adult", "42", "IMP", "placeholder", "10", "ctgan.csv"))
	assert.NoError(t, err)
}

func TestFSStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	s := NewFSStore(t.TempDir())

	require.NoError(t, s.Put(ctx, Tasks, "task.json", []byte("v1")))
	require.NoError(t, s.Put(ctx, Tasks, "task.json", []byte("v2")))

	data, err := s.Get(ctx, Tasks, "task.json")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))

	entries, err := os.ReadDir(filepath.Join(s.root, "tasks"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestFSStore_GetMissing(t *testing.T) {
	_, err := NewFSStore(t.TempDir()).Get(context.Background(), Real, "nope.csv")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValidate(t *testing.T) {
	s := NewFSStore(t.TempDir())
	ctx := context.Background()

	bad := []struct {
		bucket Bucket
		key    string
	}{
		{"archive", "x"},
		{Real, ""},
		{Real, "/abs"},
		{Real, "../escape"},
		{Real, "a//b"},
		{Real, "a/./b"},
		{Real, `a\b`},
	}
	for _, tt := range bad {
		assert.Error(t, s.Put(ctx, tt.bucket, tt.key, nil), "%s/%s", tt.bucket, tt.key)
	}
}

func TestBuckets(t *testing.T) {
	for _, b := range Buckets() {
		assert.True(t, b.Valid(), b)
	}
	assert.False(t, Bucket("data").Valid())
}

func TestNewMinioStore(t *testing.T) {
	_, err := NewMinioStore(MinioConfig{}, nil)
	assert.Error(t, err)

	s, err := NewMinioStore(MinioConfig{Endpoint: "localhost:9000", AccessKey: "minioadmin", SecretKey: "minioadmin"}, nil)
	require.NoError(t, err)

	// Validation happens before any request is made.
	err = s.Put(context.Background(), "archive", "x", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown bucket")
}
