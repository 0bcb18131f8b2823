package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tada.db")
	s, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestGet_NotExists_ReturnsNilNil(t *testing.T) {
	s, _ := openTemp(t)

	v, err := s.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestSet_UpsertOverwritesValue(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("old")))
	require.NoError(t, s.Set(ctx, "k", []byte("new")))

	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("new"), v)
}

func TestSet_EmptyValueIsPresent(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", nil))

	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Empty(t, v)
}

func TestDelete_RemovesKey_AndIsIdempotent(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "x", []byte{0x01}))
	require.NoError(t, s.Delete(ctx, "x"))
	require.NoError(t, s.Delete(ctx, "x"))

	v, err := s.Get(ctx, "x")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tada.db")
	ctx := context.Background()

	s1, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s1.Set(ctx, "savedChecklists", []byte(`[]`)))
	require.NoError(t, s1.Close())

	s2, err := Open(ctx, path)
	require.NoError(t, err, "re-running migrations must be a no-op")
	t.Cleanup(func() { _ = s2.Close() })

	v, err := s2.Get(ctx, "savedChecklists")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), v)
}
