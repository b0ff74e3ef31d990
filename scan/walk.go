package scan

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// Walk lists the regular files under root in lexical order. maxDepth limits
// the recursion: 0 only lists files directly in root, a negative value means
// unlimited. Symlinks are not followed. Entries that cannot be read are
// passed to onError and skipped; an unreadable root is returned as error.
func Walk(root string, maxDepth int, onError func(path string, err error)) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			if onError != nil {
				onError(p, err)
			}
			return nil
		}

		depth := relativeDepth(root, p)
		if d.IsDir() {
			if maxDepth >= 0 && depth > maxDepth {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		// a file directly in root has depth 1
		if maxDepth >= 0 && depth > maxDepth+1 {
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func relativeDepth(root, p string) int {
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(filepath.ToSlash(rel), "/") + 1
}
