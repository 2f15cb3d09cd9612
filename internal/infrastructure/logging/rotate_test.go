package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotatingFile_RotatesAtSizeCap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "ccv.log")
	f, err := OpenRotatingFile(path, 32, 2)
	require.NoError(t, err)
	defer f.Close()

	line := strings.Repeat("a", 19) + "\n"
	for _, c := range []string{"1", "2", "3", "4"} {
		_, err := f.Write([]byte(c + line))
		require.NoError(t, err)
	}

	current, err := os.ReadFile(path)
	require.NoError(t, err)
	newest, err := os.ReadFile(path + ".1")
	require.NoError(t, err)
	oldest, err := os.ReadFile(path + ".2")
	require.NoError(t, err)

	assert.Equal(t, "4"+line, string(current))
	assert.Equal(t, "3"+line, string(newest))
	assert.Equal(t, "2"+line, string(oldest))
	assert.NoFileExists(t, path+".3")
}

func TestRotatingFile_AppendsToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ccv.log")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0644))

	f, err := OpenRotatingFile(path, 0, 0)
	require.NoError(t, err)
	_, err = f.Write([]byte("new\n"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old\nnew\n", string(data))

	_, err = f.Write([]byte("late\n"))
	assert.ErrorIs(t, err, os.ErrClosed)
}

func TestFileArchive_ExportStatsClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ccv.log")
	require.NoError(t, os.WriteFile(path+".1", []byte(`{"level":"warn","message":"first"}`+"\n"), 0644))
	require.NoError(t, os.WriteFile(path, []byte(
		`{"level":"error","message":"second"}`+"\n"+
			"not json\n"+
			"\n"+
			`{"message":"third"}`+"\n"), 0644))

	archive := NewFileArchive(path, 3)
	assert.Equal(t, []string{path + ".1", path}, archive.Files())

	entries, err := archive.Export()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "first", entries[0]["message"])
	assert.Equal(t, "second", entries[1]["message"])
	assert.Equal(t, "", entries[2].Level())

	stats, err := archive.Stats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, map[string]int{"warn": 1, "error": 1, "unknown": 1}, stats.ByLevel)

	require.NoError(t, archive.Clear())
	entries, err = archive.Export()
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.FileExists(t, path)
}

func TestFileArchive_MissingFileIsEmpty(t *testing.T) {
	archive := NewFileArchive(filepath.Join(t.TempDir(), "none.log"), 0)

	entries, err := archive.Export()
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, archive.Clear())
}
