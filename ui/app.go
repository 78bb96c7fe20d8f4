package ui

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"epub_reader/lang"
	"epub_reader/library"
	"epub_reader/nav"
	"epub_reader/utils"
)

type AppState int

const (
	StateLibrary AppState = iota
	StateReader
	StateTOC
)

// Options configures a program run.
type Options struct {
	Config     utils.Config
	ConfigPath string // where settings changes are saved
	Path       string // book to open right away
	Pick       bool   // start with the file dialog
	Log        *zap.Logger
}

type AppModel struct {
	state     AppState
	libraryUI LibraryModel
	readerUI  ReaderModel
	tocUI     TOCModel
	reading   bool

	conf   utils.Config
	themes *ThemeRegistry
	start  tea.Cmd
	width  int
	height int
	log    *zap.Logger
}

type bookOpenedMsg struct {
	path string
	book *library.Book
}

type bookFailedMsg struct {
	path string
	err  error
}

func openBookCmd(path string, log *zap.Logger) tea.Cmd {
	return func() tea.Msg {
		book, err := library.Open(path, log)
		if err != nil {
			return bookFailedMsg{path: path, err: err}
		}
		return bookOpenedMsg{path: path, book: book}
	}
}

func NewAppModel(opts Options) AppModel {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	if loc := opts.Config.Reader.Language; loc != "" && !lang.SetLocale(lang.Locale(loc)) {
		log.Warn("Unknown language, keeping default", zap.String("language", loc))
	}

	themes := NewThemeRegistry(opts.Config.Themes)
	if !themes.Has(opts.Config.Reader.Theme) {
		log.Warn("Unknown theme, using light", zap.String("theme", opts.Config.Reader.Theme))
		opts.Config.Reader.Theme = ThemeLight
	}

	m := AppModel{
		state:     StateLibrary,
		libraryUI: NewLibraryModel(opts.Config, opts.ConfigPath, themes.Get(opts.Config.Reader.Theme), log.Named("library")),
		conf:      opts.Config,
		themes:    themes,
		log:       log,
	}
	switch {
	case opts.Path != "":
		m.start = openBookCmd(opts.Path, log.Named("book"))
	case opts.Pick:
		m.start = selectFileCmd(m.libraryUI.startDir())
	}
	return m
}

func (m AppModel) settings() nav.Settings {
	mode, err := nav.ParseDisplayMode(m.conf.Reader.Mode)
	if err != nil {
		m.log.Warn("Unknown display mode, using paged", zap.String("mode", m.conf.Reader.Mode))
		mode = nav.Paged
	}
	return nav.Settings{
		Mode:      mode,
		Theme:     m.conf.Reader.Theme,
		FontSize:  m.conf.Reader.FontSize,
		NestedTOC: m.conf.Reader.NestedTOC,
	}
}

func (m AppModel) handleBookOpened(msg bookOpenedMsg) (AppModel, tea.Cmd) {
	if m.reading {
		m.readerUI.Close()
		m.reading = false
	}

	reader, err := NewReaderModel(msg.book, m.conf.Reader, m.settings(), m.themes, m.width, m.height, m.log)
	if err != nil {
		m.log.Warn("Unable to start reader", zap.String("path", msg.path), zap.Error(err))
		m.libraryUI.SetStatus(lang.OpenFailed(filepath.Base(msg.path), err))
		m.state = StateLibrary
		return m, nil
	}

	m.readerUI = reader
	m.reading = true
	m.state = StateReader
	return m, m.readerUI.Start()
}

func (m AppModel) handleStateLibrary(msg tea.Msg) (AppModel, tea.Cmd) {
	if open, ok := msg.(openBookMsg); ok {
		m.libraryUI.SetStatus(lang.ReaderLoadingTitle(filepath.Base(open.Path)))
		return m, openBookCmd(open.Path, m.log.Named("book"))
	}
	var cmd tea.Cmd
	m.libraryUI, cmd = m.libraryUI.Update(msg)
	return m, cmd
}

func (m AppModel) handleStateReader(msg tea.Msg) (AppModel, tea.Cmd) {
	switch msg.(type) {
	case openTOCMsg:
		theme := m.themes.Get(m.readerUI.Session().Settings().Theme)
		m.tocUI = NewTOCModel(m.readerUI.Session(), theme, m.width, m.height)
		m.state = StateTOC
		return m, nil
	case closeReaderMsg:
		m.readerUI.Close()
		m.reading = false
		m.state = StateLibrary
		return m, nil
	}

	var cmd tea.Cmd
	m.readerUI, cmd = m.readerUI.Update(msg)
	return m, cmd
}

func (m AppModel) handleStateTOC(msg tea.Msg) (AppModel, tea.Cmd) {
	switch msg := msg.(type) {
	case TOCSelectMsg:
		m.state = StateReader
		return m, m.readerUI.Navigate(string(msg))
	case TOCCancelMsg:
		m.state = StateReader
		return m, nil
	}

	var cmd tea.Cmd
	m.tocUI, cmd = m.tocUI.Update(msg)
	return m, cmd
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.libraryUI.Init(), m.start)
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		var cmds []tea.Cmd
		var cmd tea.Cmd
		m.libraryUI, cmd = m.libraryUI.Update(msg)
		cmds = append(cmds, cmd)
		if m.reading {
			m.readerUI, cmd = m.readerUI.Update(msg)
			cmds = append(cmds, cmd)
		}
		if m.state == StateTOC {
			m.tocUI.SetSize(msg.Width, msg.Height)
		}
		return m, tea.Batch(cmds...)

	case renderedMsg:
		// displays finish whether or not the TOC is on top
		if m.reading {
			var cmd tea.Cmd
			m.readerUI, cmd = m.readerUI.Update(msg)
			return m, cmd
		}
		return m, nil

	case bookOpenedMsg:
		return m.handleBookOpened(msg)

	case configChangedMsg:
		m.conf.Reader.LineSpacing = msg.conf.Reader.LineSpacing
		m.conf.Reader.Language = msg.conf.Reader.Language
		m.conf.Library.Paths = msg.conf.Library.Paths
		m.log.Info("Settings changed", zap.Int("line_spacing", m.conf.Reader.LineSpacing),
			zap.String("language", m.conf.Reader.Language), zap.Strings("paths", m.conf.Library.Paths))
		return m, nil

	case bookFailedMsg:
		m.log.Warn("Unable to open book", zap.String("path", msg.path), zap.Error(msg.err))
		m.libraryUI.SetStatus(lang.OpenFailed(filepath.Base(msg.path), msg.err))
		if !m.reading {
			m.state = StateLibrary
		}
		return m, nil

	case fileSelectedMsg:
		// the dialog may be started before the library is on screen
		var cmd tea.Cmd
		m.libraryUI, cmd = m.libraryUI.Update(msg)
		m.state = StateLibrary
		return m, cmd
	}

	switch m.state {
	case StateLibrary:
		return m.handleStateLibrary(msg)
	case StateReader:
		return m.handleStateReader(msg)
	case StateTOC:
		return m.handleStateTOC(msg)
	default:
		return m, nil
	}
}

func (m AppModel) View() string {
	switch m.state {
	case StateLibrary:
		return m.libraryUI.View()
	case StateReader:
		return m.readerUI.View()
	case StateTOC:
		return m.tocUI.View()
	default:
		return lang.Active().Common.UnknownState
	}
}

// RunApp runs the program until the user quits.
func RunApp(opts Options) error {
	p := tea.NewProgram(NewAppModel(opts), tea.WithAltScreen())
	final, err := p.Run()
	if app, ok := final.(AppModel); ok && app.reading {
		app.readerUI.Close()
	}
	if err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
