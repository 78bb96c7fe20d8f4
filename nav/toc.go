package nav

import (
	"strconv"
	"strings"
)

// RawChapter is a table of contents entry as the book loader delivers it.
// The JSON shape (label, href, optional subitems) is the only wire format
// the reader has and must be kept as is.
type RawChapter struct {
	Label    string       `json:"label"`
	Href     string       `json:"href"`
	Subitems []RawChapter `json:"subitems,omitempty"`
}

// ChapterNode is a built TOC node.
type ChapterNode struct {
	ID           string // pre-order path: "0", "1", "1.0", ...
	Label        string
	Href         string
	OriginalHref string // Href without the anchor fragment
	Children     []*ChapterNode
}

// Entry is one rendered menu line.
type Entry struct {
	Node   *ChapterNode
	Depth  int
	Parent int // index of the parent entry, -1 for top level
	Active bool
}

// HasChildren reports whether the entry has nested entries below it.
func (e *Entry) HasChildren() bool { return len(e.Node.Children) > 0 }

// Menu is the navigation structure built from a TOC.
type Menu struct {
	Roots   []*ChapterNode
	Entries []*Entry // pre-order
}

// Len returns the number of entries at every depth.
func (m *Menu) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Entries)
}

// Visible returns the entries shown for the given menu mode: only the top
// level, or the whole tree when nested is set.
func (m *Menu) Visible(nested bool) []*Entry {
	if m == nil {
		return nil
	}
	if nested {
		return m.Entries
	}
	out := make([]*Entry, 0, len(m.Roots))
	for _, e := range m.Entries {
		if e.Depth == 0 {
			out = append(out, e)
		}
	}
	return out
}

// Find returns the index of the first entry, in pre-order, whose key equals
// key. The empty key never matches.
func (m *Menu) Find(key string) int {
	if m == nil || key == "" {
		return -1
	}
	for i, e := range m.Entries {
		if e.Node.OriginalHref == key {
			return i
		}
	}
	return -1
}

// Active returns the entries currently carrying the active marker.
func (m *Menu) Active() []*Entry {
	if m == nil {
		return nil
	}
	var out []*Entry
	for _, e := range m.Entries {
		if e.Active {
			out = append(out, e)
		}
	}
	return out
}

// Label returns the label of the first entry matching key.
func (m *Menu) Label(key string) string {
	if i := m.Find(key); i >= 0 {
		return m.Entries[i].Node.Label
	}
	return ""
}

type buildOptions struct {
	markDefault bool
}

// BuildOption tweaks Build.
type BuildOption func(*buildOptions)

// WithoutDefault keeps Build from marking the first top-level entry.
func WithoutDefault() BuildOption {
	return func(o *buildOptions) { o.markDefault = false }
}

// OriginalHref strips the anchor fragment from href.
func OriginalHref(href string) string {
	if i := strings.IndexByte(href, '#'); i >= 0 {
		return href[:i]
	}
	return href
}

// Build turns the raw chapters into a menu and its navigation state. The
// first top-level entry starts active unless WithoutDefault is given.
func Build(chapters []RawChapter, opts ...BuildOption) (*Menu, *Tracker) {
	o := buildOptions{markDefault: true}
	for _, opt := range opts {
		opt(&o)
	}

	menu := &Menu{}
	menu.Roots = buildLevel(menu, chapters, "", 0, -1)

	tracker := NewTracker(menu)
	if o.markDefault && len(menu.Roots) > 0 {
		tracker.Activate(menu.Roots[0].OriginalHref)
	}
	return menu, tracker
}

// buildLevel appends entries for one level in pre-order. Children are fully
// built before they are attached to their parent node.
func buildLevel(menu *Menu, chapters []RawChapter, prefix string, depth, parent int) []*ChapterNode {
	if len(chapters) == 0 {
		return nil
	}
	nodes := make([]*ChapterNode, 0, len(chapters))
	for i, ch := range chapters {
		id := strconv.Itoa(i)
		if prefix != "" {
			id = prefix + "." + id
		}
		node := &ChapterNode{
			ID:           id,
			Label:        ch.Label,
			Href:         ch.Href,
			OriginalHref: OriginalHref(ch.Href),
		}
		menu.Entries = append(menu.Entries, &Entry{Node: node, Depth: depth, Parent: parent})
		self := len(menu.Entries) - 1

		children := buildLevel(menu, ch.Subitems, id, depth+1, self)
		node.Children = children
		nodes = append(nodes, node)
	}
	return nodes
}
