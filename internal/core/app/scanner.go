package app

import (
	"cratedeps/internal/engine/parser"
	"cratedeps/internal/shared/util"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
)

// ScanDirectories expands the given paths into the Rust files to analyse.
// Directories are walked recursively, skipping excluded directory and file
// names. Explicit file arguments are kept as given, even when they are not
// Rust sources or do not exist, so the caller reports them as failures.
// The result is sorted and free of duplicates.
func (a *App) ScanDirectories(paths []string) ([]string, error) {
	seen := make(map[string]struct{})

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			seen[root] = struct{}{}
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && a.excludedDir(path) {
					return filepath.SkipDir
				}
				return nil
			}
			if !parser.IsRustSource(path) || a.excludedFile(path) {
				return nil
			}
			seen[path] = struct{}{}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return util.SortedStringKeys(seen), nil
}

func (a *App) excludedDir(path string) bool {
	base := filepath.Base(path)
	for _, g := range a.excludeDirs {
		if g.Match(base) {
			return true
		}
	}
	return false
}

func (a *App) excludedFile(path string) bool {
	base := filepath.Base(path)
	for _, g := range a.excludeFiles {
		if g.Match(base) {
			return true
		}
	}
	return false
}

// underExcludedDir reports whether a directory between path and the watch
// root containing it is excluded. The root itself and its ancestors are not
// checked; without a containing root every ancestor is.
func (a *App) underExcludedDir(path string) bool {
	roots := a.watchedRoots()
	if slices.Contains(roots, filepath.Clean(path)) {
		return false
	}
	dir := filepath.Dir(path)
	for !slices.Contains(roots, dir) {
		if a.excludedDir(dir) {
			return true
		}
		next := filepath.Dir(dir)
		if next == dir {
			return false
		}
		dir = next
	}
	return false
}

func sortedCopy(paths []string) []string {
	out := append([]string(nil), paths...)
	sort.Strings(out)
	return out
}
