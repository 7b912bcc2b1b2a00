package store

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitScheme(t *testing.T) {
	testCases := []struct {
		location string
		scheme   string
		key      string
		ok       bool
	}{
		{location: "/tmp/a.index"},
		{location: "relative/a.index"},
		{location: `C:\data\a.index`},
		{location: "C:/data/a.index"},
		{location: "file:///tmp/a.index", scheme: "file", key: "/tmp/a.index", ok: true},
		{location: "S3://bucket/a", scheme: "s3", key: "bucket/a", ok: true},
		{location: "sqlite:///tmp/x.db#docs", scheme: "sqlite", key: "/tmp/x.db#docs", ok: true},
		{location: "1x://bucket/a"},
		{location: "://nothing"},
	}
	for _, tc := range testCases {
		t.Run(tc.location, func(t *testing.T) {
			scheme, key, ok := splitScheme(tc.location)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.scheme, scheme)
			assert.Equal(t, tc.key, key)
		})
	}
}

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver()

	s, key, err := r.Resolve("/tmp/a.index")
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)
	assert.Equal(t, "/tmp/a.index", key)

	s, key, err = r.Resolve("file:///tmp/a.index")
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)
	assert.Equal(t, "/tmp/a.index", key)

	_, _, err = r.Resolve("s3://bucket/a")
	assert.ErrorIs(t, err, ErrUnsupportedScheme)

	_, _, err = r.Resolve("")
	assert.ErrorIs(t, err, ErrInvalidLocation)

	r.Register("mem", NewCatalogStore())
	_, _, err = r.Resolve("mem://")
	assert.ErrorIs(t, err, ErrInvalidLocation)
	require.NoError(t, r.Close())
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	r := NewResolver()
	path := filepath.Join(t.TempDir(), "stream.bin")

	w, err := r.Create(ctx, path)
	require.NoError(t, err)
	_, err = w.Write([]byte("first content"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	w, err = r.Create(ctx, path)
	require.NoError(t, err)
	_, err = w.Write([]byte("second"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	rc, err := r.Open(ctx, "file://"+path)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "second", string(data), "create replaces the previous content")

	_, err = r.Open(ctx, filepath.Join(t.TempDir(), "missing.bin"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSplitBucket(t *testing.T) {
	bucket, key, err := splitBucket("models/2024/docs.index")
	require.NoError(t, err)
	assert.Equal(t, "models", bucket)
	assert.Equal(t, "2024/docs.index", key)

	for _, bad := range []string{"models", "models/", "/docs.index"} {
		_, _, err := splitBucket(bad)
		assert.ErrorIs(t, err, ErrInvalidLocation, bad)
	}
}

func TestFileStore_Abort(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "stream.bin")
	s := NewFileStore()

	w, err := s.Create(ctx, path)
	require.NoError(t, err)
	_, err = w.Write([]byte("kept"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	w, err = s.Create(ctx, path)
	require.NoError(t, err)
	_, err = w.Write([]byte("discarded"))
	require.NoError(t, err)
	require.NoError(t, Abort(w, io.ErrUnexpectedEOF))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "kept", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file removed")
}
