package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type readerKeyMap struct {
	Down   key.Binding
	Up     key.Binding
	Top    key.Binding // pressed twice
	Bottom key.Binding
	Next   key.Binding
	Prev   key.Binding
	TOC    key.Binding
	Dark   key.Binding
	Mode   key.Binding
	Font   key.Binding
	Back   key.Binding
}

func newReaderKeyMap() readerKeyMap {
	return readerKeyMap{
		Down:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "scroll down")),
		Up:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "scroll up")),
		Top:    key.NewBinding(key.WithKeys("g"), key.WithHelp("gg", "top")),
		Bottom: key.NewBinding(key.WithKeys("G"), key.WithHelp("G", "bottom")),
		Next:   key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n", "next chapter")),
		Prev:   key.NewBinding(key.WithKeys("p", "left"), key.WithHelp("p", "previous chapter")),
		TOC:    key.NewBinding(key.WithKeys("t", "tab"), key.WithHelp("t", "contents")),
		Dark:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dark mode")),
		Mode:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "continuous")),
		Font:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "font size")),
		Back:   key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("q", "library")),
	}
}

type tocKeyMap struct {
	Select key.Binding
	Close  key.Binding
	Nested key.Binding
	Jump   key.Binding
}

func newTOCKeyMap() tocKeyMap {
	return tocKeyMap{
		Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "go to")),
		Close:  key.NewBinding(key.WithKeys("esc", "t", "tab"), key.WithHelp("esc", "close")),
		Nested: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "nested")),
		Jump:   key.NewBinding(key.WithKeys("g", "G"), key.WithHelp("<num>g", "jump")),
	}
}

type libraryKeyMap struct {
	Open     key.Binding
	Dialog   key.Binding
	Rescan   key.Binding
	Settings key.Binding
	Quit     key.Binding
}

func newLibraryKeyMap() libraryKeyMap {
	return libraryKeyMap{
		Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Dialog:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "choose file")),
		Rescan:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rescan")),
		Settings: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "settings")),
		Quit:     key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "quit")),
	}
}

type settingsKeyMap struct {
	Decrease key.Binding
	Increase key.Binding
	Select   key.Binding
	Back     key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
}

func newSettingsKeyMap() settingsKeyMap {
	return settingsKeyMap{
		Decrease: key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("←", "less")),
		Increase: key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("→", "more")),
		Select:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Back:     key.NewBinding(key.WithKeys("esc", "q", "s"), key.WithHelp("esc", "back")),
		Confirm:  key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", "remove")),
		Cancel:   key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "keep")),
	}
}

// chord recognises a key pressed twice in a row, like "gg". The second
// press must follow within timeout; a zero timeout only requires that no
// other key came in between.
type chord struct {
	timeout time.Duration
	now     func() time.Time

	pending bool
	at      time.Time
}

func newChord(timeout time.Duration) chord {
	return chord{timeout: timeout, now: time.Now}
}

// press feeds one key press and reports whether it completed the chord.
func (c *chord) press(msg tea.KeyMsg, b key.Binding) bool {
	if !key.Matches(msg, b) {
		c.pending = false
		return false
	}
	now := c.now()
	if c.pending && (c.timeout <= 0 || now.Sub(c.at) <= c.timeout) {
		c.pending = false
		return true
	}
	c.pending = true
	c.at = now
	return false
}
