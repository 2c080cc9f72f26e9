package site

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterStaysInsideRoot(t *testing.T) {
	t.Parallel()

	parent := t.TempDir()
	w := &writer{root: filepath.Join(parent, "public")}

	tests := []struct {
		name    string
		urlPath string
	}{
		{"parent", "/../escaped/"},
		{"nested parent", "/blog/tags/../../../escaped/"},
	}
	for _, tt := range tests {
		err := w.write(tt.urlPath, []byte("x"))
		require.ErrorIs(t, err, ErrOutsideRoot, tt.name)
	}
	require.ErrorIs(t, w.writeFile("..", []byte("x")), ErrOutsideRoot)
	require.ErrorIs(t, w.writeFile(".", []byte("x")), ErrOutsideRoot)

	assert.NoDirExists(t, filepath.Join(parent, "escaped"))
	assert.Zero(t, w.files.Load())

	require.NoError(t, w.write("/blog/tags/css/", []byte("css")))
	got, err := os.ReadFile(filepath.Join(parent, "public", "blog", "tags", "css", "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "css", string(got))
	assert.Equal(t, int64(1), w.files.Load())
}
