package pipeline

import (
	"io/fs"
	"path/filepath"
)

// Iterator enumerates candidate file paths under a root. The pipeline
// depends only on this interface, not on filepath.WalkDir directly: the
// tree walker itself is swappable, and the core just consumes an
// iterator of file paths.
type Iterator interface {
	Walk(root string, fn func(path string) error) error
}

// dirIterator is the default Iterator: a plain recursive filesystem walk.
type dirIterator struct{}

func (dirIterator) Walk(root string, fn func(path string) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		return fn(path)
	})
}
