package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/clips2video/internal/media"
)

func TestListDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.mp4", "a.MP4", "notes.txt", "c.avi"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.mp4"), 0755))

	all, err := ListDir(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.MP4"),
		filepath.Join(dir, "b.mp4"),
		filepath.Join(dir, "c.avi"),
		filepath.Join(dir, "notes.txt"),
	}, all)

	mp4, err := ListDir(dir, ".mp4")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.MP4"), filepath.Join(dir, "b.mp4")}, mp4)
}

func TestListDirUnreadable(t *testing.T) {
	_, err := ListDir(filepath.Join(t.TempDir(), "missing"), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, media.ErrDirectoryUnreadable))
}
