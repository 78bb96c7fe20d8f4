package ui

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	gloss "github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
	"go.uber.org/zap"

	"epub_reader/lang"
	"epub_reader/library"
	"epub_reader/utils"
)

// ---------------- LibraryModel ----------------
type LibraryModel struct {
	list      list.Model
	pathInput textinput.Model
	typing    bool // path input shown in place of the dialog
	keys      libraryKeyMap
	conf      utils.Config
	confPath  string
	theme     Theme
	width     int
	height    int
	scanning  bool
	status    string
	log       *zap.Logger

	settingsOpen  bool
	settingsState settingsState
	settingsList  list.Model
	removeList    list.Model
	settingsKeys  settingsKeyMap
	settingsBusy  bool // folder dialog open
	pendingRemove string
}

// Library -> App
type openBookMsg struct{ Path string }

type booksLoadedMsg struct {
	books []library.Entry
	err   error
}

type fileSelectedMsg struct {
	Path string
	Err  error
}

// NewLibraryModel lists the books in conf's library folders. Settings
// changes are saved to confPath.
func NewLibraryModel(conf utils.Config, confPath string, theme Theme, log *zap.Logger) LibraryModel {
	if log == nil {
		log = zap.NewNop()
	}

	l := list.New(nil, &BookDelegate{theme: theme}, 0, 0)
	listSettings(&l)
	filterStyle(&l, theme)

	ti := textinput.New()
	ti.Prompt = lang.Active().Dialog.SelectFilePrompt + ": "
	ti.PromptStyle = theme.Prompt().PaddingLeft(1).Bold(true)
	ti.TextStyle = theme.PromptText()
	ti.Cursor.Style = theme.Prompt()
	ti.Cursor.SetMode(cursor.CursorStatic)
	ti.CharLimit = 4096
	ti.Width = ListMaxWidth - 10

	m := LibraryModel{
		list:         l,
		pathInput:    ti,
		keys:         newLibraryKeyMap(),
		conf:         conf,
		confPath:     confPath,
		theme:        theme,
		scanning:     true,
		log:          log,
		settingsList: newSettingsList(theme),
		removeList:   newSettingsList(theme),
		settingsKeys: newSettingsKeyMap(),
	}
	m.rebuildSettingsList()
	return m
}

// Init scans the library folders.
func (m LibraryModel) Init() tea.Cmd { return m.scanCmd() }

func (m LibraryModel) scanCmd() tea.Cmd {
	paths, patterns, log := slices.Clone(m.conf.Library.Paths), m.conf.Library.Patterns, m.log
	return func() tea.Msg {
		books, err := library.LoadLocalBooks(paths, patterns, log)
		return booksLoadedMsg{books: books, err: err}
	}
}

func selectFileCmd(start string) tea.Cmd {
	return func() tea.Msg {
		path, err := utils.SelectFileDialog(start)
		if err != nil {
			return fileSelectedMsg{Err: err}
		}
		return fileSelectedMsg{Path: path}
	}
}

func (m *LibraryModel) resize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(m.containerWidth()-8, max(height-6, 1))
	m.settingsList.SetSize(m.containerWidth()-8, max(height-6, 1))
	m.removeList.SetSize(m.containerWidth()-8, max(height-6, 1))
}

func (m LibraryModel) containerWidth() int {
	w := ListMaxWidth
	if m.width-8 < w {
		w = m.width - 8
	}
	if w < 0 {
		w = ListMaxWidth
	}
	return w
}

func (m *LibraryModel) setBooks(books []library.Entry) {
	items := make([]list.Item, len(books))
	for i, b := range books {
		items[i] = b
	}
	m.list.SetItems(items)
	if len(items) > 0 {
		m.list.Select(0)
	}
}

// SetStatus shows a message under the header, for example a book that
// failed to open.
func (m *LibraryModel) SetStatus(s string) { m.status = s }

func (m LibraryModel) Update(msg tea.Msg) (LibraryModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case booksLoadedMsg:
		m.scanning = false
		if msg.err != nil {
			m.status = lang.ScanFailed(msg.err)
			m.log.Warn("Library scan failed", zap.Error(msg.err))
		}
		m.setBooks(msg.books)
		return m, nil

	case fileSelectedMsg:
		switch {
		case msg.Err == nil:
			return m, openCmd(msg.Path)
		case errors.Is(msg.Err, utils.ErrDialogCancelled):
			m.status = lang.Active().Library.SelectFilePrompt
		case errors.Is(msg.Err, utils.ErrDialogUnavailable):
			m.status = lang.Active().Library.DialogUnavailable
			m.typing = true
			m.pathInput.SetValue("")
			cmd := m.pathInput.Focus()
			return m, cmd
		default:
			m.status = lang.Error(msg.Err)
			m.log.Warn("File dialog failed", zap.Error(msg.Err))
		}
		return m, nil

	case folderSelectedMsg:
		return m.handleFolderSelected(msg)

	case tea.KeyMsg:
		if m.typing {
			return m.updatePathInput(msg)
		}
		if m.settingsOpen {
			return m.updateSettings(msg)
		}
		if m.list.FilterState() == list.Filtering {
			break
		}
		m.status = ""
		switch {
		case key.Matches(msg, m.keys.Open):
			entry, ok := m.list.SelectedItem().(library.Entry)
			if !ok {
				m.status = lang.Active().Library.SelectFilePrompt
				return m, nil
			}
			return m, openCmd(entry.Path)
		case key.Matches(msg, m.keys.Dialog):
			return m, selectFileCmd(m.startDir())
		case key.Matches(msg, m.keys.Rescan):
			m.scanning = true
			return m, m.scanCmd()
		case key.Matches(msg, m.keys.Settings):
			m.openSettings()
			return m, nil
		case key.Matches(msg, m.keys.Quit):
			if m.list.FilterState() == list.FilterApplied {
				m.list.ResetFilter()
				return m, nil
			}
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m LibraryModel) updatePathInput(msg tea.KeyMsg) (LibraryModel, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.typing = false
		m.pathInput.Blur()
		m.status = ""
		return m, nil
	case tea.KeyEnter:
		path := strings.TrimSpace(m.pathInput.Value())
		if path == "" {
			m.status = lang.Active().Library.SelectFilePrompt
			return m, nil
		}
		m.typing = false
		m.pathInput.Blur()
		m.status = ""
		return m, openCmd(path)
	}
	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

func (m LibraryModel) startDir() string {
	if len(m.conf.Library.Paths) > 0 {
		return m.conf.Library.Paths[0]
	}
	return ""
}

func openCmd(path string) tea.Cmd {
	return func() tea.Msg { return openBookMsg{Path: path} }
}

func (m LibraryModel) View() string {
	texts := lang.Active()

	underlineLen := texts.Layout.UnderlineLength
	if underlineLen <= 0 {
		underlineLen = 48
	}
	lineWidth := min(m.width, underlineLen)
	title, content, help := texts.Library.Title, m.list.View(), texts.Library.Help
	if m.settingsOpen {
		title, content, help = m.settingsView()
	}
	header := m.theme.Header().Width(m.width).Render(title) + "\n" +
		m.theme.Underline().Width(m.width).Render(strings.Repeat("─", max(lineWidth, 0)))

	status := m.status
	switch {
	case m.settingsOpen && m.settingsState == settingsStateConfirm:
		status = lang.RemoveFolderPrompt(m.pendingRemove)
	case status == "" && m.scanning && !m.settingsOpen:
		status = texts.Library.Scanning
	}

	var body string
	switch {
	case m.typing && !m.settingsOpen:
		body = gloss.Place(m.width, 4, gloss.Center, gloss.Center, m.pathInput.View())
	case !m.settingsOpen && !m.scanning && len(m.list.Items()) == 0:
		empty := lang.LibraryEmpty(strings.Join(m.conf.Library.Paths, ", "))
		body = m.theme.StatusMuted().Width(m.width).Render(wordwrap.String(empty, max(m.width-8, 10)))
	default:
		block := m.theme.List().Width(m.containerWidth()).Render(content)
		body = gloss.NewStyle().Width(m.width).Align(gloss.Center).Render(block)
	}

	out := header
	if status != "" {
		out += "\n" + m.theme.Status().Width(m.width).Render(wordwrap.String(status, max(m.width-8, 10)))
	}
	out += "\n" + body
	out += "\n" + m.theme.StatusMuted().Width(m.width).Render(help)
	return m.theme.Page().Width(m.width).Render(out)
}

// ---------------- BookDelegate ----------------
type BookDelegate struct {
	theme Theme
}

func (d *BookDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	var title, desc string
	if v, ok := item.(library.Entry); ok {
		title = runewidth.Truncate(v.Title(), max(m.Width()-6, 1), "…")
		desc = runewidth.Truncate(v.Description(), max(m.Width()-10, 1), "…")
	} else {
		title = lang.Active().Common.UnknownState
	}
	if index == m.Index() {
		title = d.theme.SelectedTitle().Render(title)
		desc = d.theme.SelectedDesc().Render(desc)
	} else {
		title = d.theme.NormalTitle().Render(title)
		desc = d.theme.NormalDesc().Render(desc)
	}
	fmt.Fprintf(w, "%s\n%s", title, desc)
}

func (d *BookDelegate) Height() int  { return 2 }
func (d *BookDelegate) Spacing() int { return 1 }
func (d *BookDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd {
	return nil
}

// ---------------- List styling ----------------
func filterStyle(l *list.Model, theme Theme) {
	l.FilterInput.Prompt = lang.Active().Library.FilterPrompt
	l.FilterInput.PromptStyle = theme.Prompt()
	l.FilterInput.TextStyle = theme.PromptText()
	l.FilterInput.Cursor.Style = theme.Prompt()
}

func listSettings(l *list.Model) {
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowTitle(false)
	l.DisableQuitKeybindings()
}
