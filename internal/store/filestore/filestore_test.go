package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GetAbsent_ReturnsNilNil(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	v, err := s.Get(context.Background(), "savedChecklists")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestStore_SetOverwritesAndIsReadable(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "savedChecklists", []byte("[1]")))
	require.NoError(t, s.Set(ctx, "savedChecklists", []byte("[2]")))

	v, err := s.Get(ctx, "savedChecklists")
	require.NoError(t, err)
	assert.Equal(t, []byte("[2]"), v)

	onDisk, err := os.ReadFile(filepath.Join(dir, "savedChecklists.json"))
	require.NoError(t, err)
	assert.Equal(t, "[2]", string(onDisk))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not linger")
}

func TestStore_DeleteIsIdempotent(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v")))
	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.Delete(ctx, "k"))

	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestStore_RejectsPathLikeKeys(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = s.Get(context.Background(), "../escape")
	require.Error(t, err)
}

func TestNew_EmptyDir(t *testing.T) {
	_, err := New("")
	require.Error(t, err)
}
