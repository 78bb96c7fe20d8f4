package library

import (
	"fmt"
	"path/filepath"
	"time"

	"epub_reader/lang"
)

// Entry is a book file found in a library folder.
type Entry struct {
	Name     string
	Path     string
	Root     string // library folder the file was found in
	Folder   string // directory relative to Root
	Size     int64
	Modified time.Time
}

// list.Item interface for Bubble Tea
func (e Entry) Title() string { return e.Name }
func (e Entry) Description() string {
	where := filepath.Base(e.Root)
	if e.Folder != "" && e.Folder != "." {
		where = filepath.Join(where, e.Folder)
	}
	return fmt.Sprintf("%s | %s | %s", where, humanSize(e.Size), e.Modified.Format(lang.Active().Library.DateLayout))
}
func (e Entry) FilterValue() string { return e.Name + " | " + e.Folder }

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
