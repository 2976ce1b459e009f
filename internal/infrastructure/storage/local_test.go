package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_SaveYRemove(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	s, err := NewLocalStorage(dir)
	require.NoError(t, err)
	ctx := context.Background()

	name, err := s.Save(ctx, ".JPG", strings.NewReader("contenido"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".jpg"))

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "contenido", string(data))

	other, err := s.Save(ctx, "jpg", strings.NewReader("x"))
	require.NoError(t, err)
	assert.NotEqual(t, name, other, "cada archivo recibe un nombre único")

	require.NoError(t, s.Remove(ctx, name))
	_, err = os.Stat(filepath.Join(dir, name))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStorage_RemoveInexistenteNoEsError(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, s.Remove(context.Background(), "no-existe.png"))
}

func TestLocalStorage_RemoveRechazaRutas(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	for _, bad := range []string{"", "../secreto", "a/b.png", ".."} {
		assert.Error(t, s.Remove(context.Background(), bad), bad)
	}
}
