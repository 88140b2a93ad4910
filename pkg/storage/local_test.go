package storage

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalPutAndDelete(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	path, err := store.Put(ctx, "prescriptions/u1/rx.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, store.Delete(ctx, "prescriptions/u1/rx.png"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, store.Delete(ctx, "prescriptions/u1/rx.png"))
}

func TestLocalPathStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocal(root)
	require.NoError(t, err)

	p, err := store.Path("../../etc/passwd")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p, store.root))

	_, err = store.Path("")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestNewLocalRequiresRoot(t *testing.T) {
	_, err := NewLocal(" ")
	assert.Error(t, err)
}
