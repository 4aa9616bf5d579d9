package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tmpDir := t.TempDir()

	dir, err := New(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "a.pdf"), dir.Path("a.pdf"))
}

func TestNew_Missing(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestNew_File(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, err := New(file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a folder")
}

func TestNew_HomeExpansion(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.Mkdir(filepath.Join(home, "passes"), 0755))

	dir, err := New("~/passes")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "passes"), dir.String())
}

func TestWrite(t *testing.T) {
	dir, err := New(t.TempDir())
	require.NoError(t, err)

	path, err := dir.Write("Schedule_2025-03-15.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	// overwrite keeps a single file
	_, err = dir.Write("Schedule_2025-03-15.pdf", []byte("%PDF-1.7"))
	require.NoError(t, err)
	entries, err := os.ReadDir(dir.String())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestPath_StaysInside(t *testing.T) {
	dir, err := New(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir.String(), "passwd"), dir.Path("../../etc/passwd"))
}
