package ui

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"epub_reader/lang"
	"epub_reader/utils"
)

func openSettingsAt(t *testing.T, m LibraryModel, kind SettingKind) LibraryModel {
	t.Helper()
	m, _ = m.Update(press("s"))
	if !m.settingsOpen {
		t.Fatal("s did not open the settings")
	}
	m.selectSettingItem(kind)
	if item, ok := m.settingsList.SelectedItem().(SettingItem); !ok || item.Kind != kind {
		t.Fatalf("selected %#v, want kind %d", m.settingsList.SelectedItem(), kind)
	}
	return m
}

// writeConfig saves the defaults with paths as the library folders.
func writeConfig(t *testing.T, path string, paths ...string) {
	t.Helper()
	conf := utils.DefaultConfig()
	conf.Library.Paths = paths
	if err := utils.SaveConfig(path, conf); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}
}

func loadSaved(t *testing.T, path string) utils.Config {
	t.Helper()
	cfg, err := utils.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	return cfg
}

func TestSettingsLineSpacing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	books := t.TempDir()
	writeConfig(t, path, books)
	m := openSettingsAt(t, newSavingLibrary(t, path, books), SettingLineSpacing)

	m, cmd := m.Update(press("l"))
	if cmd == nil {
		t.Fatal("no command after a change")
	}
	msg, ok := cmd().(configChangedMsg)
	if !ok || msg.conf.Reader.LineSpacing != 2 {
		t.Fatalf("message = %#v, want line spacing 2", msg)
	}
	if got := loadSaved(t, path).Reader.LineSpacing; got != 2 {
		t.Errorf("saved LineSpacing = %d, want 2", got)
	}
	if !strings.Contains(m.View(), "Line Spacing: 2") {
		t.Error("View() does not show the new line spacing")
	}

	for i := 0; i < maxLineSpacing+2; i++ {
		m, _ = m.Update(press("l"))
	}
	if got := m.conf.Reader.LineSpacing; got != maxLineSpacing {
		t.Errorf("LineSpacing = %d, want it capped at %d", got, maxLineSpacing)
	}
	for i := 0; i < maxLineSpacing+2; i++ {
		m, _ = m.Update(press("h"))
	}
	if got := loadSaved(t, path).Reader.LineSpacing; got != 0 {
		t.Errorf("saved LineSpacing = %d, want 0", got)
	}
	if _, cmd = m.Update(press("h")); cmd != nil {
		t.Error("a change below zero produced a command")
	}
}

func TestSettingsSaveFailureKeepsValue(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	m := openSettingsAt(t, newSavingLibrary(t, filepath.Join(file, "config.toml"), t.TempDir()), SettingLineSpacing)

	m, cmd := m.Update(press("l"))
	if cmd != nil {
		t.Error("a failed save produced a command")
	}
	if got := m.conf.Reader.LineSpacing; got != 1 {
		t.Errorf("LineSpacing = %d, want the previous value", got)
	}
	prefix := strings.SplitN(lang.Active().Settings.SaveConfigFailed, "%", 2)[0]
	if !strings.HasPrefix(m.status, prefix) {
		t.Errorf("status = %q, want the save failure", m.status)
	}
}

func TestSettingsLanguage(t *testing.T) {
	t.Cleanup(func() { lang.SetLocale(lang.LocaleEnglish) })
	path := filepath.Join(t.TempDir(), "config.toml")
	books := t.TempDir()
	writeConfig(t, path, books)
	m := openSettingsAt(t, newSavingLibrary(t, path, books), SettingLanguage)

	m, cmd := m.Update(press("l"))
	if cmd == nil {
		t.Fatal("no command after a change")
	}
	if got := lang.CurrentLocale(); got != lang.LocaleChinese {
		t.Fatalf("CurrentLocale() = %q, want zh", got)
	}
	if got := loadSaved(t, path).Reader.Language; got != "zh" {
		t.Errorf("saved Language = %q, want zh", got)
	}
	item, _ := m.settingsList.SelectedItem().(SettingItem)
	if item.Kind != SettingLanguage || item.Label != "语言" || item.Value != "中文" {
		t.Errorf("selected item = %#v", item)
	}

	m, _ = m.Update(press("h"))
	if got := lang.CurrentLocale(); got != lang.LocaleEnglish {
		t.Errorf("CurrentLocale() = %q, want en", got)
	}
	if got := loadSaved(t, path).Reader.Language; got != "en" {
		t.Errorf("saved Language = %q, want en", got)
	}
}

func TestSettingsAddFolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	first := t.TempDir()
	writeConfig(t, path, first)
	m := openSettingsAt(t, newSavingLibrary(t, path, first), SettingAddLibraryFolder)

	m, cmd := m.Update(press("enter"))
	if cmd == nil || !m.settingsBusy {
		t.Fatal("enter did not start the folder dialog")
	}
	if _, again := m.Update(press("enter")); again != nil {
		t.Error("a second dialog was started while one is open")
	}

	added := t.TempDir()
	m, cmd = m.Update(folderSelectedMsg{Path: added})
	if m.settingsBusy {
		t.Error("still busy after the dialog returned")
	}
	if cmd == nil || !m.scanning {
		t.Fatal("adding a folder did not rescan")
	}
	want := []string{first, added}
	if !reflect.DeepEqual(m.conf.Library.Paths, want) {
		t.Errorf("Paths = %v, want %v", m.conf.Library.Paths, want)
	}
	if got := loadSaved(t, path).Library.Paths; !reflect.DeepEqual(got, want) {
		t.Errorf("saved Paths = %v, want %v", got, want)
	}

	m, _ = m.Update(folderSelectedMsg{Path: added})
	if !strings.Contains(m.status, "already added") {
		t.Errorf("status = %q, want a duplicate error", m.status)
	}
	m, _ = m.Update(folderSelectedMsg{Path: filepath.Join(added, "missing")})
	if len(m.conf.Library.Paths) != 2 {
		t.Errorf("a missing folder was added: %v", m.conf.Library.Paths)
	}
	m, _ = m.Update(folderSelectedMsg{Err: utils.ErrDialogUnavailable})
	if m.status != lang.Active().Settings.FolderDialogUnavail {
		t.Errorf("status = %q, want the unavailable message", m.status)
	}
}

func TestSettingsRemoveFolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	first, second := t.TempDir(), t.TempDir()
	writeConfig(t, path, first, second)
	m := openSettingsAt(t, newSavingLibrary(t, path, first, second), SettingRemoveLibraryFolder)

	m, _ = m.Update(press("enter"))
	if m.settingsState != settingsStateRemoving {
		t.Fatalf("state = %v, want removing", m.settingsState)
	}
	m, _ = m.Update(press("enter"))
	if m.settingsState != settingsStateConfirm || m.pendingRemove != first {
		t.Fatalf("state = %v, pending = %q", m.settingsState, m.pendingRemove)
	}
	if !strings.Contains(m.View(), "(y/n)") {
		t.Error("View() does not ask for confirmation")
	}

	m, cmd := m.Update(press("n"))
	if cmd != nil || m.settingsState != settingsStateRemoving || len(m.conf.Library.Paths) != 2 {
		t.Fatalf("cancel: state = %v, paths = %v", m.settingsState, m.conf.Library.Paths)
	}

	m, _ = m.Update(press("enter"))
	m, cmd = m.Update(press("y"))
	if cmd == nil {
		t.Fatal("removing a folder did not rescan")
	}
	if !reflect.DeepEqual(m.conf.Library.Paths, []string{second}) {
		t.Errorf("Paths = %v, want %v", m.conf.Library.Paths, []string{second})
	}
	if got := loadSaved(t, path).Library.Paths; !reflect.DeepEqual(got, []string{second}) {
		t.Errorf("saved Paths = %v", got)
	}
	if m.settingsState != settingsStateRemoving {
		t.Errorf("state = %v, want removing while folders remain", m.settingsState)
	}

	m, _ = m.Update(press("enter"))
	m, _ = m.Update(press("enter"))
	if len(m.conf.Library.Paths) != 0 {
		t.Fatalf("Paths = %v, want none", m.conf.Library.Paths)
	}
	if m.settingsState != settingsStateNormal {
		t.Errorf("state = %v, want the settings list once no folder is left", m.settingsState)
	}

	m, _ = m.Update(press("enter"))
	if m.status != lang.Active().Settings.NoFolders {
		t.Errorf("status = %q, want the no folders message", m.status)
	}
}

func TestSettingsClose(t *testing.T) {
	m := openSettingsAt(t, newTestLibrary(t, t.TempDir()), SettingLanguage)
	m, _ = m.Update(press("esc"))
	if m.settingsOpen {
		t.Fatal("esc did not close the settings")
	}
	if !strings.Contains(m.View(), lang.Active().Library.Title) {
		t.Error("View() does not show the library")
	}
}
