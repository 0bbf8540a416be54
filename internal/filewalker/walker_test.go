package filewalker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("label start:\n"), 0644))
}

func TestWalkFindsScripts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "game", "script.rpy"))
	writeFile(t, filepath.Join(root, "game", "tl", "turkish", "script.RPY"))
	writeFile(t, filepath.Join(root, "game", "script.rpyc"))
	writeFile(t, filepath.Join(root, "game", "cache", "x.rpy"))
	writeFile(t, filepath.Join(root, ".git", "y.rpy"))

	entries, err := NewWalker().Walk(root)
	require.NoError(t, err)

	var rels []string
	for _, e := range entries {
		rels = append(rels, e.Rel)
	}
	assert.Equal(t, []string{"game/script.rpy", "game/tl/turkish/script.RPY"}, rels)
}

func TestWalkCustomExtensions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.rpy"))
	writeFile(t, filepath.Join(root, "b.rpym"))

	entries, err := NewWalker(".rpym").Walk(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "b.rpym", entries[0].Rel)
	assert.Equal(t, ".rpym", entries[0].Ext)
}

func TestWalkRejectsFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.rpy")
	writeFile(t, path)

	_, err := NewWalker().Walk(path)
	assert.Error(t, err)
}
