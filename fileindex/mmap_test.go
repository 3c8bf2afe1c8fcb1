package fileindex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMmapReadsBackWrittenBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob.bin")
	want := []byte("0123456789")
	require.NoError(t, os.WriteFile(path, want, 0o644))

	src, err := OpenMmap(path)
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, int64(len(want)), src.Len())

	got := make([]byte, 4)
	n, err := src.ReadAt(got, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte("3456"), got)
}

func TestOpenMmapMissingFileErrors(t *testing.T) {
	_, err := OpenMmap(filepath.Join(t.TempDir(), "does-not-exist.bin"))
	assert.Error(t, err)
}
