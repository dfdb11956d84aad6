package upload

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/IVANFROL/reklama-oleg/pkg/errutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()

	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(store, node, "/uploads"), dir
}

func TestStoreRejectsUnsupportedType(t *testing.T) {
	svc, dir := newTestService(t)

	_, err := svc.Store(context.Background(), "notes.txt", "text/plain", 5, strings.NewReader("hello"))
	require.Error(t, err)

	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, errutil.StatusUnsupportedMediaType, be.Code)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestStoreImage(t *testing.T) {
	svc, dir := newTestService(t)
	payload := "fake png bytes"

	stored, err := svc.Store(context.Background(), "Photo.PNG", "image/png", int64(len(payload)), strings.NewReader(payload))
	require.NoError(t, err)
	require.Equal(t, "image", stored.Type)
	require.EqualValues(t, len(payload), stored.Size)
	require.True(t, strings.HasSuffix(stored.Filename, ".png"))
	require.Equal(t, "/uploads/"+stored.Filename, stored.URL)

	written, err := os.ReadFile(filepath.Join(dir, stored.Filename))
	require.NoError(t, err)
	require.Equal(t, payload, string(written))
}

func TestStoreVideo(t *testing.T) {
	svc, _ := newTestService(t)

	stored, err := svc.Store(context.Background(), "clip.mp4", "video/mp4", 4, strings.NewReader("data"))
	require.NoError(t, err)
	require.Equal(t, "video", stored.Type)
	require.True(t, strings.HasSuffix(stored.Filename, ".mp4"))
}

func TestStoredNamesAreUnique(t *testing.T) {
	svc, _ := newTestService(t)

	first, err := svc.Store(context.Background(), "a.png", "image/png", 1, strings.NewReader("a"))
	require.NoError(t, err)
	second, err := svc.Store(context.Background(), "a.png", "image/png", 1, strings.NewReader("b"))
	require.NoError(t, err)

	require.NotEqual(t, first.Filename, second.Filename)
}

func TestOpenRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	payload := "fake png bytes"

	stored, err := svc.Store(context.Background(), "photo.png", "image/png", int64(len(payload)), strings.NewReader(payload))
	require.NoError(t, err)

	rc, info, err := svc.Open(context.Background(), stored.Filename)
	require.NoError(t, err)
	defer rc.Close()

	require.EqualValues(t, len(payload), info.Size)
	require.Contains(t, info.ContentType, "image/png")

	read, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, payload, string(read))
}

func TestOpenMissing(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.Open(context.Background(), "nope.png")
	require.Error(t, err)

	var be errutil.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, errutil.StatusNotFound, be.Code)
}
