package fs

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internal_errors "github.com/tatami-dev/tatami/internal/errors"
)

func TestWriteReadDelete(t *testing.T) {
	ctx := context.Background()
	store, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Write(ctx, "abc123", []byte("payload"), "image/jpeg"))

	rc, err := store.Read(ctx, "abc123")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, []byte("payload"), data)

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"abc123"}, names)

	require.NoError(t, store.Delete(ctx, "abc123"))
	_, err = store.Read(ctx, "abc123")
	assert.True(t, errors.Is(err, internal_errors.NotFound))

	// deleting a missing object is not an error
	assert.NoError(t, store.Delete(ctx, "abc123"))
}

func TestRejectsPathTraversal(t *testing.T) {
	ctx := context.Background()
	store, err := New(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, store.Write(ctx, "../escape", []byte("x"), ""))
	_, err = store.Read(ctx, "a/b")
	assert.Error(t, err)
}
