package tempstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_SaveOpenRemove(t *testing.T) {
	l, err := NewLocal(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	ctx := context.Background()

	key, err := l.Save(ctx, "Books.XLSX", strings.NewReader("payload"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(key, ".xlsx"), "key keeps the extension: %s", key)

	rc, err := l.Open(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "payload", string(data))

	require.NoError(t, l.Remove(ctx, key))
	_, err = os.Stat(filepath.Join(l.Dir(), key))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, l.Remove(ctx, key), "removing twice is fine")
}

func TestLocal_SameNameDifferentKeys(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	k1, err := l.Save(context.Background(), "books.csv", strings.NewReader("a"))
	require.NoError(t, err)
	k2, err := l.Save(context.Background(), "books.csv", strings.NewReader("b"))
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2)
}

func TestLocal_RejectsTraversal(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = l.Open(context.Background(), "../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidKey)
	assert.ErrorIs(t, l.Remove(context.Background(), ".."), ErrInvalidKey)
}

func TestLocal_Sweep(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	oldKey, err := l.Save(ctx, "old.xlsx", strings.NewReader("x"))
	require.NoError(t, err)
	newKey, err := l.Save(ctx, "new.xlsx", strings.NewReader("y"))
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(filepath.Join(l.Dir(), "subdir"), 0o750))

	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(l.Dir(), oldKey), past, past))

	removed, err := l.Sweep(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(filepath.Join(l.Dir(), newKey))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(l.Dir(), "subdir"))
	assert.NoError(t, err, "directories are left alone")
}

func TestLocal_SweepKeepsForeignFiles(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	key, err := l.Save(ctx, "old.xlsx", strings.NewReader("x"))
	require.NoError(t, err)
	foreign := filepath.Join(l.Dir(), "not-an-upload.txt")
	require.NoError(t, os.WriteFile(foreign, []byte("keep me"), 0o600))

	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(l.Dir(), key), past, past))
	require.NoError(t, os.Chtimes(foreign, past, past))

	removed, err := l.Sweep(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(foreign)
	assert.NoError(t, err, "files the store did not create survive")
	_, err = os.Stat(filepath.Join(l.Dir(), key))
	assert.True(t, os.IsNotExist(err))
}

func TestIssuedKey(t *testing.T) {
	assert.True(t, issuedKey(newKey("books.xlsx")))
	assert.True(t, issuedKey(newKey("noext")))
	assert.False(t, issuedKey("not-an-upload.txt"))
	assert.False(t, issuedKey(".gitkeep"))
	assert.False(t, issuedKey("../"+newKey("a.csv")))
}

func TestNewKey(t *testing.T) {
	assert.True(t, strings.HasSuffix(newKey("a.csv"), ".csv"))
	assert.False(t, strings.Contains(newKey("../../x.xls"), "/"))
	assert.Len(t, newKey("noext"), 36)
	assert.Len(t, newKey("weird.extension-too-long"), 36)
}
