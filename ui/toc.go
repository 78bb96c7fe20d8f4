package ui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	gloss "github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"epub_reader/lang"
	"epub_reader/nav"
)

// TOCModel wraps a bubbles list to display the table of contents of the
// session it was opened on.
type TOCModel struct {
	session    *nav.Session
	list       list.Model
	keys       tocKeyMap
	theme      Theme
	jumpBuffer string // accumulate number keys
}

type TOCItem struct {
	entry  *nav.Entry
	nested bool
}

func (i TOCItem) Title() string       { return i.entry.Node.Label }
func (i TOCItem) Description() string { return "" }
func (i TOCItem) FilterValue() string { return i.entry.Node.Label }

// Messages used to communicate selection/cancel to the parent AppModel
type TOCSelectMsg string
type TOCCancelMsg struct{}

// tocDelegate draws one entry per line, indented by depth in the nested
// menu, with a marker in front of the chapter being read.
type tocDelegate struct {
	theme Theme
}

func (d tocDelegate) Height() int                             { return 1 }
func (d tocDelegate) Spacing() int                            { return 0 }
func (d tocDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d tocDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(TOCItem)
	if !ok {
		return
	}

	marker := "  "
	if it.entry.Active {
		marker = "● "
	}
	indent := ""
	if it.nested {
		indent = strings.Repeat("  ", it.entry.Depth)
	}

	room := max(m.Width()-4-runewidth.StringWidth(marker+indent), 1)
	label := runewidth.Truncate(it.entry.Node.Label, room, "…")

	var line string
	switch {
	case index == m.Index():
		line = d.theme.SelectedTitle().Render(marker + indent + label)
	case it.entry.Active:
		line = d.theme.NormalTitle().Inherit(d.theme.ActiveMarker()).Render(marker + indent + label)
	default:
		line = d.theme.NormalTitle().Render(marker + indent + label)
	}
	fmt.Fprint(w, line)
}

func NewTOCModel(session *nav.Session, theme Theme, width, height int) TOCModel {
	l := list.New(nil, tocDelegate{theme: theme}, width, max(height-2, 1))
	l.SetShowHelp(false)
	l.SetShowStatusBar(true)
	l.Styles.StatusBar = gloss.NewStyle().
		Foreground(theme.Muted).
		PaddingBottom(1).
		PaddingLeft(2)
	l.SetShowTitle(false)
	l.SetShowPagination(true)
	l.DisableQuitKeybindings()

	applyTOCStrings(&l)

	l.FilterInput.PromptStyle = theme.Prompt().PaddingTop(1)
	l.FilterInput.TextStyle = theme.PromptText()
	l.FilterInput.Cursor.Style = theme.Prompt()

	// remove list’s default padding
	l.Styles.Title = l.Styles.Title.Margin(0).Padding(0)
	l.Styles.FilterPrompt = l.Styles.FilterPrompt.Padding(0)
	l.Styles.FilterCursor = l.Styles.FilterCursor.Padding(0)

	m := TOCModel{session: session, list: l, keys: newTOCKeyMap(), theme: theme}
	m.reload()
	return m
}

func applyTOCStrings(l *list.Model) {
	texts := lang.Active()
	l.Title = texts.TOC.Title
	l.SetStatusBarItemName(texts.TOC.StatusSingular, texts.TOC.StatusPlural)
	l.FilterInput.Prompt = texts.TOC.FilterPrompt
}

// reload rebuilds the items for the current menu mode and selects the
// active entry, or its top level ancestor in the flat menu.
func (m *TOCModel) reload() {
	nested := m.session.Settings().NestedTOC
	menu := m.session.Menu()
	visible := menu.Visible(nested)

	items := make([]list.Item, len(visible))
	pos := map[*nav.Entry]int{}
	for i, e := range visible {
		items[i] = TOCItem{entry: e, nested: nested}
		pos[e] = i
	}
	m.list.SetItems(items)

	for _, e := range menu.Active() {
		for e != nil {
			if i, ok := pos[e]; ok {
				m.list.Select(i)
				return
			}
			if e.Parent < 0 {
				break
			}
			e = menu.Entries[e.Parent]
		}
	}
}

func (m *TOCModel) SetSize(width, height int) {
	m.list.SetSize(width, max(height-2, 1))
}

func (m TOCModel) Init() tea.Cmd { return nil }

func (m TOCModel) Update(msg tea.Msg) (TOCModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.String() == "esc" && m.list.FilterState() != list.Unfiltered {
			// drop the filter but keep the TOC open
			m.list.ResetFilter()
			return m, nil
		}

		// Only intercept keys if we're NOT filtering
		if m.list.FilterState() != list.Filtering {
			switch {
			case key.Matches(keyMsg, m.keys.Select):
				if item, ok := m.list.SelectedItem().(TOCItem); ok {
					href := item.entry.Node.Href
					return m, func() tea.Msg { return TOCSelectMsg(href) }
				}
				return m, nil
			case key.Matches(keyMsg, m.keys.Close):
				return m, func() tea.Msg { return TOCCancelMsg{} }
			case key.Matches(keyMsg, m.keys.Nested):
				m.session.ToggleNested()
				m.jumpBuffer = ""
				m.reload()
				return m, nil
			}

			s := keyMsg.String()
			if len(s) == 1 && s[0] >= '0' && s[0] <= '9' {
				m.jumpBuffer += s
				return m, nil
			}
			if key.Matches(keyMsg, m.keys.Jump) && m.jumpBuffer != "" {
				n, err := strconv.Atoi(m.jumpBuffer)
				m.jumpBuffer = ""
				if err == nil && n >= 1 && n <= len(m.list.VisibleItems()) {
					m.list.Select(n - 1)
				}
				return m, nil
			}
			m.jumpBuffer = ""
		}
	}

	// If not handled, let list process the key normally
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// Selected returns the highlighted entry, nil when the list is empty.
func (m TOCModel) Selected() *nav.Entry {
	if item, ok := m.list.SelectedItem().(TOCItem); ok {
		return item.entry
	}
	return nil
}

func (m TOCModel) View() string {
	texts := lang.Active().TOC

	mode := texts.Flat
	if m.session.Settings().NestedTOC {
		mode = texts.Nested
	}
	header := m.theme.Header().Render(texts.Title) +
		m.theme.StatusMuted().PaddingTop(0).Render("["+mode+"]")

	body := m.list.View()
	if m.session.Menu().Len() == 0 {
		body = m.theme.StatusMuted().Render(texts.Empty)
	}

	// apply padding around the whole list
	return gloss.NewStyle().
		PaddingTop(1).
		PaddingLeft(2).
		Render(header + "\n" + body)
}
