package library

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/maruel/natural"
	"go.uber.org/zap"
)

// DefaultPatterns is used when no library pattern is configured.
var DefaultPatterns = []string{"**/*.epub"}

// LoadLocalBooks scans the library folders for books matching any of the
// patterns. Patterns are matched against the path relative to the folder.
func LoadLocalBooks(paths, patterns []string, log *zap.Logger) ([]Entry, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	var entries []Entry
	seen := make(map[string]bool)

	for _, dir := range paths {
		root := filepath.Clean(dir)
		err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if p != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}

			rel, err := filepath.Rel(root, p)
			if err != nil {
				return nil
			}
			if !matchAny(patterns, filepath.ToSlash(rel)) || seen[p] {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				return err
			}
			seen[p] = true
			entries = append(entries, Entry{
				Name:     strings.TrimSuffix(d.Name(), filepath.Ext(d.Name())),
				Path:     p,
				Root:     dir,
				Folder:   filepath.Dir(rel),
				Size:     info.Size(),
				Modified: info.ModTime(),
			})
			return nil
		})
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("Library folder is missing", zap.String("path", dir))
			continue
		}
		if err != nil {
			return nil, err
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Name == entries[j].Name {
			return natural.Less(entries[i].Path, entries[j].Path)
		}
		return natural.Less(entries[i].Name, entries[j].Name)
	})
	return entries, nil
}

func matchAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}
