package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLocalUploadAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocal(dir, "uploads/", zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, "/uploads", store.PublicPath())

	ctx := context.Background()
	url, err := store.Upload(ctx, "clip.mp4", strings.NewReader("payload"))
	require.NoError(t, err)
	require.Equal(t, "/uploads/clip.mp4", url)

	content, err := os.ReadFile(filepath.Join(dir, "clip.mp4"))
	require.NoError(t, err)
	require.Equal(t, "payload", string(content))

	_, err = store.Upload(ctx, "clip.mp4", strings.NewReader("again"))
	require.Error(t, err)

	require.NoError(t, store.Delete(ctx, "http://localhost:8080/uploads/clip.mp4"))
	_, err = os.Stat(filepath.Join(dir, "clip.mp4"))
	require.True(t, os.IsNotExist(err))

	require.NoError(t, store.Delete(ctx, "/uploads/clip.mp4"))
}

func TestLocalDeleteRejectsForeignPaths(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "/uploads", zerolog.Nop())
	require.NoError(t, err)

	ctx := context.Background()
	require.ErrorIs(t, store.Delete(ctx, "/static/clip.mp4"), ErrOutsideRoot)
	require.ErrorIs(t, store.Delete(ctx, "/uploads/../config.env"), ErrOutsideRoot)
	require.ErrorIs(t, store.Delete(ctx, "https://cdn.example.com/uploads/a/b.mp4"), ErrOutsideRoot)
}

func TestLocalUploadStripsDirectories(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocal(dir, "/media", zerolog.Nop())
	require.NoError(t, err)

	url, err := store.Upload(context.Background(), "../../escape.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)
	require.Equal(t, "/media/escape.pdf", url)
	require.FileExists(t, filepath.Join(dir, "escape.pdf"))
}
