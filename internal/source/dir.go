package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ivlev/clips2video/internal/media"
)

// ListDir returns the plain files of dir sorted by name. When ext is set only
// files with that extension (case-insensitive) are kept.
func ListDir(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", media.ErrDirectoryUnreadable, dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			// Symlinks count when they resolve to a file.
			if entry.Type()&os.ModeSymlink == 0 {
				continue
			}
			fi, err := os.Stat(filepath.Join(dir, entry.Name()))
			if err != nil || !fi.Mode().IsRegular() {
				continue
			}
		}
		if ext != "" && !strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)

	return paths, nil
}
