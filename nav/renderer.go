package nav

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// DisplayMode selects how the renderer lays the book out.
type DisplayMode int

const (
	Paged DisplayMode = iota // one chapter at a time
	Continuous
)

func (m DisplayMode) String() string {
	switch m {
	case Paged:
		return "paged"
	case Continuous:
		return "continuous"
	default:
		return fmt.Sprintf("DisplayMode(%d)", int(m))
	}
}

// ParseDisplayMode accepts "paged" (or "chapter") and "continuous".
func ParseDisplayMode(s string) (DisplayMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "paged", "chapter", "by-chapter":
		return Paged, nil
	case "continuous", "scrolled":
		return Continuous, nil
	default:
		return Paged, fmt.Errorf("unknown display mode %q", s)
	}
}

var (
	// ErrTornDown is returned by a renderer used after Teardown.
	ErrTornDown = errors.New("renderer torn down")
	// ErrUnknownChapter is returned when a target is not part of the book.
	ErrUnknownChapter = errors.New("unknown chapter")
)

// Renderer is the rendering engine as the navigation core sees it. Display
// may run off the UI goroutine; it must not depend on state the UI mutates.
type Renderer interface {
	Mode() DisplayMode
	// Display lays out chapter (the first document when empty).
	Display(ctx context.Context, chapter string) (*Surface, error)
	// Next and Prev return the sibling of the currently displayed chapter.
	Next(current string) (string, bool)
	Prev(current string) (string, bool)
	// Teardown releases the rendering surface. It is safe to call twice.
	Teardown()
}

// Settings is the session configuration. It is copied on read.
type Settings struct {
	Mode      DisplayMode
	Theme     string
	FontSize  string
	Width     int
	NestedTOC bool
}

// RendererFactory builds a renderer for the given settings.
type RendererFactory func(settings Settings) (Renderer, error)
