package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocal(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(Config{BasePath: t.TempDir(), BaseURL: "/static/uploads/"})
	require.NoError(t, err)
	return s
}

func TestLocalStorage_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	s := newLocal(t)

	require.NoError(t, s.Save(ctx, "avatars/a.png", strings.NewReader("png-bytes"), "image/png"))

	ok, err := s.Exists(ctx, "avatars/a.png")
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := s.Get(ctx, "avatars/a.png")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	_, err = os.Stat(filepath.Join(s.BasePath(), "avatars", "a.png"))
	assert.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "avatars/a.png"))
	require.NoError(t, s.Delete(ctx, "avatars/a.png"))

	ok, err = s.Exists(ctx, "avatars/a.png")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Get(ctx, "avatars/a.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorage_GetURL(t *testing.T) {
	s := newLocal(t)
	url, err := s.GetURL(context.Background(), "images/post_0a1b2c3d.jpg")
	require.NoError(t, err)
	assert.Equal(t, "/static/uploads/images/post_0a1b2c3d.jpg", url)
}

func TestLocalStorage_RejectsEscapingKeys(t *testing.T) {
	s := newLocal(t)
	err := s.Save(context.Background(), "../outside.txt", strings.NewReader("x"), "text/plain")
	assert.ErrorIs(t, err, errUnsafeKey)
}

func TestNewStorage_UnknownType(t *testing.T) {
	_, err := NewStorage(Config{Type: "ftp"})
	assert.Error(t, err)
}

func TestNewStorage_R2RequiresEndpoint(t *testing.T) {
	_, err := NewStorage(Config{Type: TypeCloudflareR2, Bucket: "b"})
	assert.Error(t, err)
}
