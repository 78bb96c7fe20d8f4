package ui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"epub_reader/lang"
	"epub_reader/utils"
)

type SettingKind int

const (
	SettingLanguage SettingKind = iota
	SettingLineSpacing
	SettingAddLibraryFolder
	SettingRemoveLibraryFolder
)

type settingsState int

const (
	settingsStateNormal settingsState = iota
	settingsStateRemoving
	settingsStateConfirm
)

const maxLineSpacing = 5

type SettingItem struct {
	Kind     SettingKind
	Label    string
	Detail   string
	Value    string
	IntValue int
}

func (s SettingItem) Title() string {
	switch s.Kind {
	case SettingLineSpacing:
		return fmt.Sprintf("%s: %d", s.Label, s.IntValue)
	case SettingLanguage:
		if strings.TrimSpace(s.Value) == "" {
			return s.Label
		}
		return fmt.Sprintf("%s: %s", s.Label, s.Value)
	case SettingAddLibraryFolder, SettingRemoveLibraryFolder:
		return fmt.Sprintf("%s %s", s.Label, lang.SettingCount(s.IntValue))
	default:
		return s.Label
	}
}

func (s SettingItem) Description() string { return s.Detail }
func (s SettingItem) FilterValue() string { return s.Label }

type LibraryPathItem struct {
	Name string
	Path string
}

func (i LibraryPathItem) Title() string       { return i.Name }
func (i LibraryPathItem) Description() string { return i.Path }
func (i LibraryPathItem) FilterValue() string { return i.Name + " " + i.Path }

type folderSelectedMsg struct {
	Path string
	Err  error
}

// configChangedMsg carries the settings after a successful save, so books
// opened later pick them up.
type configChangedMsg struct{ conf utils.Config }

func selectFolderCmd(start string) tea.Cmd {
	return func() tea.Msg {
		path, err := utils.SelectFolderDialog(start)
		if err != nil {
			return folderSelectedMsg{Err: err}
		}
		return folderSelectedMsg{Path: path}
	}
}

func settingsDelegate(theme Theme) list.DefaultDelegate {
	d := list.NewDefaultDelegate()
	d.Styles.NormalTitle = theme.NormalTitle()
	d.Styles.NormalDesc = theme.NormalDesc()
	d.Styles.SelectedTitle = theme.SelectedTitle()
	d.Styles.SelectedDesc = theme.SelectedDesc()
	return d
}

func newSettingsList(theme Theme) list.Model {
	l := list.New(nil, settingsDelegate(theme), 0, 0)
	listSettings(&l)
	l.SetFilteringEnabled(false)
	return l
}

func (m *LibraryModel) rebuildSettingsList() {
	texts := lang.Active().Settings

	var selected SettingKind = -1
	if item, ok := m.settingsList.SelectedItem().(SettingItem); ok {
		selected = item.Kind
	}

	items := []list.Item{
		SettingItem{
			Kind:   SettingLanguage,
			Label:  texts.LanguageLabel,
			Detail: texts.LanguageDetail,
			Value:  lang.LanguageName(lang.CurrentLocale()),
		},
		SettingItem{
			Kind:     SettingLineSpacing,
			Label:    texts.LineSpacingLabel,
			Detail:   texts.LineSpacingDetail,
			IntValue: m.conf.Reader.LineSpacing,
		},
		SettingItem{
			Kind:     SettingAddLibraryFolder,
			Label:    texts.AddFolderLabel,
			Detail:   texts.AddFolderDetail,
			IntValue: len(m.conf.Library.Paths),
		},
		SettingItem{
			Kind:     SettingRemoveLibraryFolder,
			Label:    texts.RemoveFolderLabel,
			Detail:   texts.RemoveFolderDetail,
			IntValue: len(m.conf.Library.Paths),
		},
	}
	m.settingsList.SetItems(items)
	m.selectSettingItem(selected)
}

func (m *LibraryModel) selectSettingItem(kind SettingKind) {
	for i, item := range m.settingsList.Items() {
		if s, ok := item.(SettingItem); ok && s.Kind == kind {
			m.settingsList.Select(i)
			return
		}
	}
}

// applyLanguage refreshes strings held by bubbles components.
func (m *LibraryModel) applyLanguage() {
	m.pathInput.Prompt = lang.Active().Dialog.SelectFilePrompt + ": "
	filterStyle(&m.list, m.theme)
	m.rebuildSettingsList()
}

// persist writes change to the config file and, once saved, applies it to
// the running settings. An empty config path keeps changes for this run
// only.
func (m *LibraryModel) persist(change func(*utils.Config)) error {
	if m.confPath != "" {
		if err := utils.UpdateConfig(m.confPath, change); err != nil {
			return err
		}
	}
	change(&m.conf)
	return nil
}

func (m LibraryModel) configChangedCmd() tea.Cmd {
	conf := m.conf
	conf.Library.Paths = slices.Clone(conf.Library.Paths)
	return func() tea.Msg { return configChangedMsg{conf: conf} }
}

func (m *LibraryModel) changeLanguage(delta int) tea.Cmd {
	locales := lang.AvailableLocales()
	if len(locales) < 2 {
		return nil
	}
	current := lang.CurrentLocale()
	idx := slices.Index(locales, current)
	next := locales[((idx+delta)%len(locales)+len(locales))%len(locales)]
	if next == current {
		return nil
	}

	err := m.persist(func(c *utils.Config) { c.Reader.Language = string(next) })
	if err != nil {
		m.status = lang.SaveConfigFailed(err)
		m.log.Warn("Unable to save language", zap.String("language", string(next)), zap.Error(err))
		return nil
	}
	lang.SetLocale(next)
	m.applyLanguage()
	return m.configChangedCmd()
}

func (m *LibraryModel) changeLineSpacing(delta int) tea.Cmd {
	current := m.conf.Reader.LineSpacing
	next := min(max(current+delta, 0), maxLineSpacing)
	if next == current {
		return nil
	}

	err := m.persist(func(c *utils.Config) { c.Reader.LineSpacing = next })
	if err != nil {
		m.status = lang.SaveConfigFailed(err)
		m.log.Warn("Unable to save line spacing", zap.Int("line_spacing", next), zap.Error(err))
		return nil
	}
	m.rebuildSettingsList()
	return m.configChangedCmd()
}

func (m *LibraryModel) addLibraryPath(path string) error {
	cleaned := filepath.Clean(path)
	info, err := os.Stat(cleaned)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", cleaned)
	}
	for _, existing := range m.conf.Library.Paths {
		if pathsEqual(existing, cleaned) {
			return errors.New("folder already added")
		}
	}

	return m.persist(func(c *utils.Config) {
		c.Library.Paths = append(slices.Clone(c.Library.Paths), cleaned)
	})
}

func (m *LibraryModel) removeLibraryPath(path string) error {
	cleaned := filepath.Clean(path)
	if !slices.ContainsFunc(m.conf.Library.Paths, func(p string) bool { return pathsEqual(p, cleaned) }) {
		return fmt.Errorf("folder not found: %s", cleaned)
	}

	return m.persist(func(c *utils.Config) {
		c.Library.Paths = slices.DeleteFunc(slices.Clone(c.Library.Paths), func(p string) bool {
			return pathsEqual(p, cleaned)
		})
	})
}

func (m *LibraryModel) refreshRemoveLibraryList() {
	items := make([]list.Item, 0, len(m.conf.Library.Paths))
	for _, dir := range m.conf.Library.Paths {
		cleaned := filepath.Clean(dir)
		name := filepath.Base(cleaned)
		if name == "." || name == string(os.PathSeparator) {
			name = cleaned
		}
		items = append(items, LibraryPathItem{Name: name, Path: cleaned})
	}
	idx := m.removeList.Index()
	m.removeList.SetItems(items)
	if len(items) > 0 {
		m.removeList.Select(min(idx, len(items)-1))
	}
}

func (m *LibraryModel) enterRemoveMode() {
	if len(m.conf.Library.Paths) == 0 {
		m.status = lang.Active().Settings.NoFolders
		return
	}
	m.refreshRemoveLibraryList()
	m.removeList.Select(0)
	m.settingsState = settingsStateRemoving
}

func (m *LibraryModel) exitRemoveMode() {
	m.settingsState = settingsStateNormal
	m.pendingRemove = ""
	m.selectSettingItem(SettingRemoveLibraryFolder)
}

func (m *LibraryModel) openSettings() {
	m.settingsOpen = true
	m.settingsState = settingsStateNormal
	m.rebuildSettingsList()
	m.settingsList.Select(0)
}

func (m *LibraryModel) closeSettings() {
	m.settingsOpen = false
	m.settingsState = settingsStateNormal
	m.pendingRemove = ""
}

func (m LibraryModel) handleFolderSelected(msg folderSelectedMsg) (LibraryModel, tea.Cmd) {
	m.settingsBusy = false
	switch {
	case msg.Err == nil:
	case errors.Is(msg.Err, utils.ErrDialogCancelled):
		return m, nil
	case errors.Is(msg.Err, utils.ErrDialogUnavailable):
		m.status = lang.Active().Settings.FolderDialogUnavail
		return m, nil
	default:
		m.status = lang.AddFolderFailed(msg.Err)
		m.log.Warn("Folder dialog failed", zap.Error(msg.Err))
		return m, nil
	}

	if err := m.addLibraryPath(msg.Path); err != nil {
		m.status = lang.AddFolderFailed(err)
		m.log.Warn("Unable to add library folder", zap.String("path", msg.Path), zap.Error(err))
		return m, nil
	}
	m.status = lang.FolderAdded(filepath.Clean(msg.Path))
	m.rebuildSettingsList()
	m.scanning = true
	return m, tea.Batch(m.scanCmd(), m.configChangedCmd())
}

func (m LibraryModel) updateSettings(msg tea.KeyMsg) (LibraryModel, tea.Cmd) {
	m.status = ""
	switch m.settingsState {
	case settingsStateRemoving:
		switch {
		case key.Matches(msg, m.settingsKeys.Select):
			if item, ok := m.removeList.SelectedItem().(LibraryPathItem); ok {
				m.pendingRemove = item.Path
				m.settingsState = settingsStateConfirm
			}
			return m, nil
		case key.Matches(msg, m.settingsKeys.Back), key.Matches(msg, m.settingsKeys.Decrease):
			m.exitRemoveMode()
			return m, nil
		}
		var cmd tea.Cmd
		m.removeList, cmd = m.removeList.Update(msg)
		return m, cmd

	case settingsStateConfirm:
		switch {
		case key.Matches(msg, m.settingsKeys.Confirm):
			path := m.pendingRemove
			m.pendingRemove = ""
			if err := m.removeLibraryPath(path); err != nil {
				m.status = lang.RemoveFolderFailed(err)
				m.log.Warn("Unable to remove library folder", zap.String("path", path), zap.Error(err))
				m.settingsState = settingsStateRemoving
				return m, nil
			}
			m.status = lang.FolderRemoved(path)
			m.rebuildSettingsList()
			m.refreshRemoveLibraryList()
			if len(m.conf.Library.Paths) == 0 {
				m.exitRemoveMode()
			} else {
				m.settingsState = settingsStateRemoving
			}
			m.scanning = true
			return m, tea.Batch(m.scanCmd(), m.configChangedCmd())
		case key.Matches(msg, m.settingsKeys.Cancel):
			m.pendingRemove = ""
			m.settingsState = settingsStateRemoving
		}
		return m, nil
	}

	item, _ := m.settingsList.SelectedItem().(SettingItem)
	switch {
	case key.Matches(msg, m.settingsKeys.Back):
		m.closeSettings()
		return m, nil
	case key.Matches(msg, m.settingsKeys.Decrease), key.Matches(msg, m.settingsKeys.Increase):
		delta := 1
		if key.Matches(msg, m.settingsKeys.Decrease) {
			delta = -1
		}
		switch item.Kind {
		case SettingLanguage:
			return m, m.changeLanguage(delta)
		case SettingLineSpacing:
			return m, m.changeLineSpacing(delta)
		}
		return m, nil
	case key.Matches(msg, m.settingsKeys.Select):
		if m.settingsBusy {
			return m, nil
		}
		switch item.Kind {
		case SettingAddLibraryFolder:
			m.settingsBusy = true
			return m, selectFolderCmd(m.startDir())
		case SettingRemoveLibraryFolder:
			m.enterRemoveMode()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.settingsList, cmd = m.settingsList.Update(msg)
	return m, cmd
}

func (m LibraryModel) settingsView() (title, body, help string) {
	texts := lang.Active().Settings
	switch m.settingsState {
	case settingsStateRemoving, settingsStateConfirm:
		return texts.RemoveTitle, m.removeList.View(), texts.RemoveHelp
	default:
		return texts.Title, m.settingsList.View(), texts.Help
	}
}

func pathsEqual(a, b string) bool {
	a = filepath.Clean(a)
	b = filepath.Clean(b)
	if runtime.GOOS == "windows" {
		return strings.EqualFold(a, b)
	}
	return a == b
}
