package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	gloss "github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"

	"epub_reader/lang"
	"epub_reader/library"
	"epub_reader/nav"
	"epub_reader/render"
	"epub_reader/utils"
)

// renderedMsg carries a finished display back to the UI goroutine.
type renderedMsg struct {
	req     nav.Request
	surface *nav.Surface
	err     error
}

// Reader -> App
type openTOCMsg struct{}
type closeReaderMsg struct{}

// displayCmd runs a display request off the UI goroutine.
func displayCmd(req nav.Request) tea.Cmd {
	if !req.Valid() {
		return nil
	}
	return func() tea.Msg {
		s, err := req.Renderer.Display(context.Background(), req.Target.Chapter)
		return renderedMsg{req: req, surface: s, err: err}
	}
}

// pane is where the session's render-completed hook leaves the latest
// surface. It is shared by every copy of the model.
type pane struct {
	surface *nav.Surface
	req     nav.Request
	fresh   bool
}

type ReaderModel struct {
	book     *library.Book
	session  *nav.Session
	pane     *pane
	viewport viewport.Model
	font     textinput.Model
	editing  bool
	keys     readerKeyMap
	gg       chord
	themes   *ThemeRegistry
	conf     utils.ReaderConfig
	width    int
	height   int
	loading  bool
	status   string
	log      *zap.Logger
}

// NewReaderModel starts a reading session for book sized to the terminal.
// Call Start for the first display.
func NewReaderModel(book *library.Book, conf utils.ReaderConfig, settings nav.Settings, themes *ThemeRegistry,
	width, height int, log *zap.Logger) (ReaderModel, error) {
	if log == nil {
		log = zap.NewNop()
	}

	m := ReaderModel{
		book:     book,
		pane:     &pane{},
		viewport: viewport.New(0, 0),
		keys:     newReaderKeyMap(),
		gg:       newChord(time.Duration(conf.ChordTimeoutMS) * time.Millisecond),
		themes:   themes,
		conf:     conf,
		loading:  true,
		log:      log,
	}
	m.setSize(width, height)
	settings.Width = m.viewport.Width

	factory := render.NewFactory(book, conf.LineSpacing, log.Named("render"))
	session, err := nav.NewSession(book.TOC, settings, factory, log.Named("nav"))
	if err != nil {
		return ReaderModel{}, err
	}
	p := m.pane
	session.OnRendered(func(r nav.Rendered) {
		p.surface = r.Surface
		p.req = r.Request
		p.fresh = true
	})
	m.session = session

	theme := themes.Get(settings.Theme)
	ti := textinput.New()
	ti.Prompt = lang.Active().Reader.FontSizePrompt
	ti.PromptStyle = theme.Prompt()
	ti.TextStyle = theme.PromptText()
	ti.Cursor.Style = theme.Prompt()
	ti.CharLimit = 12
	ti.Width = 12
	m.font = ti

	return m, nil
}

func (m ReaderModel) Session() *nav.Session { return m.session }
func (m ReaderModel) Book() *library.Book    { return m.book }

// Start requests the first display.
func (m *ReaderModel) Start() tea.Cmd {
	m.loading = true
	return displayCmd(m.session.Start())
}

// Navigate requests href, normally picked from the table of contents.
func (m *ReaderModel) Navigate(href string) tea.Cmd {
	m.loading = true
	return displayCmd(m.session.Request(href))
}

// Close ends the session. Displays still in flight are dropped.
func (m *ReaderModel) Close() {
	m.session.Close()
}

func (m *ReaderModel) setSize(width, height int) {
	m.width = width
	m.height = height
	// before the first WindowSizeMsg the renderer falls back to its default width
	if width > 0 {
		m.viewport.Width = max(width-2*m.conf.HorizontalPadding, 1)
	}
	if height > 0 {
		m.viewport.Height = max(height-2*m.conf.VerticalPadding-1, 1)
	}
}

func (m *ReaderModel) resize(width, height int) tea.Cmd {
	m.setSize(width, height)
	req, err := m.session.Resize(m.viewport.Width)
	return m.issue(req, err)
}

// issue turns a session request into a display command, keeping the
// current surface on screen until the new one is ready.
func (m *ReaderModel) issue(req nav.Request, err error) tea.Cmd {
	if err != nil {
		m.status = lang.Error(err)
		m.log.Warn("Renderer change failed", zap.Error(err))
	}
	if !req.Valid() {
		return nil
	}
	m.loading = true
	return displayCmd(req)
}

func (m ReaderModel) Init() tea.Cmd { return nil }

func (m ReaderModel) Update(msg tea.Msg) (ReaderModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m, m.resize(msg.Width, msg.Height)
	case renderedMsg:
		m.handleRendered(msg)
		return m, nil
	case tea.KeyMsg:
		if m.editing {
			return m.updateFontInput(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

// errNoSurface reports a display that finished without content.
var errNoSurface = errors.New("display produced no content")

func (m *ReaderModel) handleRendered(msg renderedMsg) {
	if msg.err == nil && msg.surface == nil {
		msg.err = errNoSurface
	}
	if msg.err != nil {
		if !m.session.Latest(msg.req) || errors.Is(msg.err, nav.ErrTornDown) {
			return
		}
		m.loading = false
		m.status = lang.Error(msg.err)
		m.log.Warn("Display failed", zap.String("chapter", msg.req.Target.Chapter), zap.Error(msg.err))
		return
	}
	if m.session.Complete(msg.req, msg.surface) {
		m.applyPane()
	}
}

// applyPane is the post-render step: put the surface on screen and scroll
// to the requested position.
func (m *ReaderModel) applyPane() {
	p := m.pane
	if !p.fresh || p.surface == nil {
		return
	}
	p.fresh = false

	m.viewport.SetContent(strings.Join(p.surface.Lines, "\n"))
	m.viewport.SetYOffset(nav.ScrollOffset(p.surface, p.req, m.viewport.Height))
	m.loading = false
}

// observe reports the scroll position so the active entry follows the
// reader across chapter boundaries.
func (m *ReaderModel) observe() {
	if m.pane.surface == nil {
		return
	}
	chapter, progress := m.pane.surface.Progress(m.viewport.YOffset)
	m.session.Observe(chapter, progress)
}

func (m ReaderModel) handleKey(msg tea.KeyMsg) (ReaderModel, tea.Cmd) {
	m.status = ""
	top := m.gg.press(msg, m.keys.Top)

	switch {
	case top:
		m.viewport.GotoTop()
		m.observe()
	case key.Matches(msg, m.keys.Top):
		// first half of the chord
	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
		m.observe()
	case key.Matches(msg, m.keys.Down):
		m.viewport.SetYOffset(m.viewport.YOffset + m.conf.ScrollStep)
		m.observe()
	case key.Matches(msg, m.keys.Up):
		m.viewport.SetYOffset(m.viewport.YOffset - m.conf.ScrollStep)
		m.observe()
	case key.Matches(msg, m.keys.Next):
		if req, ok := m.session.Next(); ok {
			return m, m.issue(req, nil)
		}
	case key.Matches(msg, m.keys.Prev):
		if req, ok := m.session.Prev(); ok {
			return m, m.issue(req, nil)
		}
	case key.Matches(msg, m.keys.Dark):
		m.toggleDark()
	case key.Matches(msg, m.keys.Mode):
		mode := nav.Continuous
		if m.session.Settings().Mode == nav.Continuous {
			mode = nav.Paged
		}
		req, err := m.session.SwitchMode(mode)
		return m, m.issue(req, err)
	case key.Matches(msg, m.keys.Font):
		m.editing = true
		m.font.SetValue(m.session.Settings().FontSize)
		m.font.CursorEnd()
		cmd := m.font.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.TOC):
		return m, func() tea.Msg { return openTOCMsg{} }
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return closeReaderMsg{} }
	}
	return m, nil
}

func (m *ReaderModel) toggleDark() {
	name := ThemeDark
	if m.session.Settings().Theme == ThemeDark {
		name = ThemeLight
	}
	m.session.SetTheme(name)
}

// updateFontInput edits the font size. Leaving the input, by enter or esc,
// applies the value.
func (m ReaderModel) updateFontInput(msg tea.KeyMsg) (ReaderModel, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		m.editing = false
		m.font.Blur()
		size := strings.TrimSpace(m.font.Value())
		if size == "" {
			return m, nil
		}
		req, err := m.session.SetFontSize(size)
		if err != nil {
			m.status = lang.FontSizeInvalid(err)
			m.log.Warn("Font size rejected", zap.String("size", size), zap.Error(err))
			err = nil
		}
		return m, m.issue(req, err)
	}

	var cmd tea.Cmd
	m.font, cmd = m.font.Update(msg)
	return m, cmd
}

func (m ReaderModel) View() string {
	settings := m.session.Settings()
	theme := m.themes.Get(settings.Theme)

	body := m.viewport.View()
	if m.pane.surface == nil {
		text := m.status
		if text == "" {
			text = lang.ReaderLoadingTitle(m.title())
		}
		body = theme.Loading().Width(m.viewport.Width).Height(m.viewport.Height).Render(text)
	}

	page := theme.Reader(m.width, m.conf.VerticalPadding, m.conf.HorizontalPadding).
		Height(max(m.height-1, 1)).
		Render(body)
	return page + "\n" + m.statusBar(theme, settings)
}

func (m ReaderModel) title() string {
	if m.book != nil && m.book.Title != "" {
		return m.book.Title
	}
	return lang.Active().Reader.Untitled
}

func (m ReaderModel) statusBar(theme Theme, settings nav.Settings) string {
	bar := theme.StatusBar()
	if m.editing {
		return bar.Width(m.width).Render(m.font.View())
	}

	right := fmt.Sprintf("[c] %s  %3.f%%", lang.ModeToggleLabel(settings.Mode == nav.Continuous), m.viewport.ScrollPercent()*100)
	left := m.title()
	if label := m.session.ActiveLabel(); label != "" {
		left += " · " + label
	}
	switch {
	case m.status != "":
		left = m.status
	case m.loading:
		left = lang.Active().Reader.LoadingDefault
	}

	room := m.width - runewidth.StringWidth(right) - 6
	left = runewidth.Truncate(left, max(room, 0), "…")
	gap := max(m.width-4-runewidth.StringWidth(left)-runewidth.StringWidth(right), 1)
	line := gloss.JoinHorizontal(gloss.Top,
		theme.StatusAccent().Render(left),
		strings.Repeat(" ", gap),
		right,
	)
	return bar.Width(m.width).Render(line)
}
