package fsext

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "a/src.txt", []byte("data"), 0o644))

	require.NoError(t, CopyFile(fs, "a/src.txt", "b/c/dst.txt"))

	got, err := afero.ReadFile(fs, "b/c/dst.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), got)
}

func TestCopyTree(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "src/x.txt", []byte("x"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "src/sub/y.txt", []byte("y"), 0o644))

	require.NoError(t, CopyTree(fs, "src", "dst"))

	got, err := afero.ReadFile(fs, "dst/x.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), got)
	got, err = afero.ReadFile(fs, "dst/sub/y.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("y"), got)
}
