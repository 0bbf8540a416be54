package filewalker

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// DefaultExtensions lists the script file types handled by the tool.
var DefaultExtensions = []string{".rpy"}

// skippedDirs are never descended into.
var skippedDirs = map[string]bool{
	".git":        true,
	"cache":       true,
	"saves":       true,
	"__pycache__": true,
}

// Walker traverses a project tree and collects script files.
type Walker struct {
	extensions map[string]bool
}

// NewWalker creates a Walker for the given extensions, or the defaults.
func NewWalker(extensions ...string) *Walker {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	w := &Walker{extensions: make(map[string]bool, len(extensions))}
	for _, ext := range extensions {
		w.extensions[strings.ToLower(ext)] = true
	}
	return w
}

// FileEntry represents a discovered file ready for processing.
type FileEntry struct {
	Path string
	// Rel is the path relative to the walked root, with forward slashes.
	Rel string
	Ext string
}

// Walk discovers all supported files under the given root directory,
// sorted by relative path.
func (w *Walker) Walk(root string) ([]FileEntry, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}

	var entries []FileEntry

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error walking path")
			return nil
		}

		if d.IsDir() {
			if path != root && skippedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if !w.extensions[ext] {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relative path: %w", err)
		}
		entries = append(entries, FileEntry{
			Path: path,
			Rel:  filepath.ToSlash(rel),
			Ext:  ext,
		})
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Rel < entries[j].Rel })

	log.Info().Int("count", len(entries)).Str("root", root).Msg("Discovered script files")
	return entries, nil
}
