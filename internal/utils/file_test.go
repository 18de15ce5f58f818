package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsImageFile(t *testing.T) {
	assert.True(t, IsImageFile("slide.TIF"))
	assert.True(t, IsImageFile("/a/b/slide.webp"))
	assert.False(t, IsImageFile("notes.txt"))
	assert.False(t, IsImageFile("noext"))
}

func TestGenerateOutputFilename(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "slide_panel.png"), GenerateOutputFilename("/data/slide.tif", "out", "_panel", "png"))
	assert.Equal(t, filepath.Join("out", "slide_overlay.tif"), GenerateOutputFilename("slide.tif", "out", "_overlay", ""))
	assert.Equal(t, filepath.Join("out", "slide.jpg"), GenerateOutputFilename("slide", "out", "", ""))
}

func TestEnsureDirAndFileExists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(dir))
	require.NoError(t, EnsureDir(dir))
	assert.False(t, FileExists(dir))

	path := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	assert.True(t, FileExists(path))
}

func TestReadSelectionArg(t *testing.T) {
	s, err := ReadSelectionArg("1x2y3pp0no")
	require.NoError(t, err)
	assert.Equal(t, "1x2y3pp0no", s)

	path := filepath.Join(t.TempDir(), "sel.txt")
	require.NoError(t, os.WriteFile(path, []byte("1x2y3pp0no\n"), 0o644))
	s, err = ReadSelectionArg("@" + path)
	require.NoError(t, err)
	assert.Equal(t, "1x2y3pp0no", s)

	_, err = ReadSelectionArg("@" + filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}
