package lang

import (
	"fmt"
	"sync"
)

type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleChinese Locale = "zh"
)

type LibraryStrings struct {
	Title             string
	StatusSingular    string
	StatusPlural      string
	FilterPrompt      string
	DateLayout        string
	SelectFilePrompt  string
	EmptyTemplate     string
	Scanning          string
	ScanFailed        string
	OpenFailed        string
	DialogUnavailable string
	Help              string
}

type ReaderStrings struct {
	LoadingDefault       string
	LoadingTitleTemplate string
	ModeContinuous       string
	ModeByChapter        string
	FontSizePrompt       string
	FontSizeInvalid      string
	Untitled             string
	EmptyChapter         string
}

type TOCStrings struct {
	Title          string
	StatusSingular string
	StatusPlural   string
	FilterPrompt   string
	Nested         string
	Flat           string
	Empty          string
}

type SettingsStrings struct {
	Title               string
	LanguageLabel       string
	LanguageDetail      string
	LineSpacingLabel    string
	LineSpacingDetail   string
	AddFolderLabel      string
	AddFolderDetail     string
	RemoveFolderLabel   string
	RemoveFolderDetail  string
	CountSuffixNone     string
	CountSuffixSingle   string
	CountSuffixMultiple string
	LanguageNames       map[Locale]string
	RemoveTitle         string
	RemovePrompt        string
	NoFolders           string
	FolderAdded         string
	FolderRemoved       string
	AddFolderFailed     string
	RemoveFolderFailed  string
	SaveConfigFailed    string
	FolderDialogUnavail string
	Help                string
	RemoveHelp          string
}

type DialogStrings struct {
	SelectFilePrompt   string
	SelectFolderPrompt string
}

type CommonStrings struct {
	UnknownState  string
	ErrorTemplate string
}

type LayoutStrings struct {
	UnderlineLength int
}

type Strings struct {
	Library  LibraryStrings
	Settings SettingsStrings
	Reader   ReaderStrings
	TOC      TOCStrings
	Dialog   DialogStrings
	Common   CommonStrings
	Layout   LayoutStrings
}

var (
	mu sync.RWMutex

	translations = map[Locale]*Strings{
		LocaleChinese: {
			Library: LibraryStrings{
				Title:             "书架",
				StatusSingular:    "本书",
				StatusPlural:      "本书",
				FilterPrompt:      "搜索：",
				DateLayout:        "2006-01-02",
				SelectFilePrompt:  "请选择一个文件！",
				EmptyTemplate:     "在 %s 中没有找到电子书",
				Scanning:          "正在扫描书架…",
				ScanFailed:        "扫描书架失败: %v",
				OpenFailed:        "无法打开「%s」: %v",
				DialogUnavailable: "系统不支持文件选择对话框。",
				Help:              "enter 打开 · o 选择文件 · r 刷新 · s 设置 · q 退出",
			},
			Settings: SettingsStrings{
				Title:               "设置",
				LanguageLabel:       "语言",
				LanguageDetail:      "使用左右键切换语言",
				LineSpacingLabel:    "行间距",
				LineSpacingDetail:   "使用左右键调整段落之间的空行",
				AddFolderLabel:      "添加书架文件夹",
				AddFolderDetail:     "选择一个存放电子书的文件夹",
				RemoveFolderLabel:   "移除书架文件夹",
				RemoveFolderDetail:  "从书架中移除一个文件夹",
				CountSuffixNone:     "(无)",
				CountSuffixSingle:   "(1)",
				CountSuffixMultiple: "(%d)",
				LanguageNames: map[Locale]string{
					LocaleChinese: "中文",
					LocaleEnglish: "英文",
				},
				RemoveTitle:         "移除文件夹",
				RemovePrompt:        "从书架中移除 %s？(y/n)",
				NoFolders:           "书架中没有文件夹",
				FolderAdded:         "已添加 %s",
				FolderRemoved:       "已移除 %s",
				AddFolderFailed:     "无法添加文件夹: %v",
				RemoveFolderFailed:  "无法移除文件夹: %v",
				SaveConfigFailed:    "无法保存设置: %v",
				FolderDialogUnavail: "系统不支持文件夹选择对话框。",
				Help:                "←/→ 调整 · enter 选择 · esc 返回",
				RemoveHelp:          "enter 移除 · esc 返回",
			},
			Reader: ReaderStrings{
				LoadingDefault:       "章节加载中…",
				LoadingTitleTemplate: "正在加载「%s」…",
				ModeContinuous:       "连续滚动",
				ModeByChapter:        "按章节",
				FontSizePrompt:       "字号：",
				FontSizeInvalid:      "无效的字号: %v",
				Untitled:             "未命名",
				EmptyChapter:         "（本章没有文字内容）",
			},
			TOC: TOCStrings{
				Title:          "目录",
				StatusSingular: "章",
				StatusPlural:   "章",
				FilterPrompt:   "搜索：",
				Nested:         "层级",
				Flat:           "平铺",
				Empty:          "本书没有目录",
			},
			Dialog: DialogStrings{
				SelectFilePrompt:   "选择 EPUB 文件",
				SelectFolderPrompt: "选择书架文件夹",
			},
			Common: CommonStrings{
				UnknownState:  "未知状态",
				ErrorTemplate: "错误: %v",
			},
			Layout: LayoutStrings{
				UnderlineLength: 48,
			},
		},
		LocaleEnglish: {
			Library: LibraryStrings{
				Title:             "Library",
				StatusSingular:    "book",
				StatusPlural:      "books",
				FilterPrompt:      "Search: ",
				DateLayout:        "Jan 02 2006",
				SelectFilePrompt:  "Please select a file!",
				EmptyTemplate:     "No books found in %s",
				Scanning:          "Scanning library…",
				ScanFailed:        "Failed to scan library: %v",
				OpenFailed:        "Failed to open \"%s\": %v",
				DialogUnavailable: "File selection dialog is not available on this system.",
				Help:              "enter open · o choose file · r rescan · s settings · q quit",
			},
			Settings: SettingsStrings{
				Title:               "Settings",
				LanguageLabel:       "Language",
				LanguageDetail:      "Use left/right to switch language",
				LineSpacingLabel:    "Line Spacing",
				LineSpacingDetail:   "Use left/right to change the blank lines between paragraphs",
				AddFolderLabel:      "Add Library Folder",
				AddFolderDetail:     "Choose a folder that holds EPUB books",
				RemoveFolderLabel:   "Remove Library Folder",
				RemoveFolderDetail:  "Stop scanning a library folder",
				CountSuffixNone:     "(none)",
				CountSuffixSingle:   "(1)",
				CountSuffixMultiple: "(%d)",
				LanguageNames: map[Locale]string{
					LocaleChinese: "Chinese",
					LocaleEnglish: "English",
				},
				RemoveTitle:         "Remove Folder",
				RemovePrompt:        "Remove %s from the library? (y/n)",
				NoFolders:           "No library folders",
				FolderAdded:         "Added %s",
				FolderRemoved:       "Removed %s",
				AddFolderFailed:     "Unable to add folder: %v",
				RemoveFolderFailed:  "Unable to remove folder: %v",
				SaveConfigFailed:    "Unable to save settings: %v",
				FolderDialogUnavail: "Folder selection dialog is not available on this system.",
				Help:                "←/→ change · enter select · esc back",
				RemoveHelp:          "enter remove · esc back",
			},
			Reader: ReaderStrings{
				LoadingDefault:       "Loading chapter…",
				LoadingTitleTemplate: "Loading %s…",
				ModeContinuous:       "Continuous",
				ModeByChapter:        "By Chapter",
				FontSizePrompt:       "Font size: ",
				FontSizeInvalid:      "Invalid font size: %v",
				Untitled:             "Untitled",
				EmptyChapter:         "(this chapter has no text)",
			},
			TOC: TOCStrings{
				Title:          "Table of Contents",
				StatusSingular: "chapter",
				StatusPlural:   "chapters",
				FilterPrompt:   "Search:",
				Nested:         "nested",
				Flat:           "flat",
				Empty:          "This book has no table of contents",
			},
			Dialog: DialogStrings{
				SelectFilePrompt:   "Select an EPUB file",
				SelectFolderPrompt: "Select a library folder",
			},
			Common: CommonStrings{
				UnknownState:  "Unknown state",
				ErrorTemplate: "Error: %v",
			},
			Layout: LayoutStrings{
				UnderlineLength: 60,
			},
		},
	}

	availableLocales = []Locale{
		LocaleEnglish,
		LocaleChinese,
	}

	currentLocale = LocaleEnglish
	current       = translations[currentLocale]
)

func AvailableLocales() []Locale {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Locale, len(availableLocales))
	copy(out, availableLocales)
	return out
}

func SetLocale(loc Locale) bool {
	mu.Lock()
	defer mu.Unlock()
	strings, ok := translations[loc]
	if !ok {
		return false
	}
	currentLocale = loc
	current = strings
	return true
}

func CurrentLocale() Locale {
	mu.RLock()
	defer mu.RUnlock()
	return currentLocale
}

func Active() *Strings {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// ModeToggleLabel names the mode the display toggle switches to.
func ModeToggleLabel(continuous bool) string {
	s := Active()
	if continuous {
		return s.Reader.ModeByChapter
	}
	return s.Reader.ModeContinuous
}

func ReaderLoadingTitle(title string) string {
	s := Active()
	return fmt.Sprintf(s.Reader.LoadingTitleTemplate, title)
}

func LibraryEmpty(paths string) string {
	s := Active()
	return fmt.Sprintf(s.Library.EmptyTemplate, paths)
}

func OpenFailed(name string, err error) string {
	s := Active()
	return fmt.Sprintf(s.Library.OpenFailed, name, err)
}

func ScanFailed(err error) string {
	s := Active()
	return fmt.Sprintf(s.Library.ScanFailed, err)
}

func FontSizeInvalid(err error) string {
	s := Active()
	return fmt.Sprintf(s.Reader.FontSizeInvalid, err)
}

func Error(err error) string {
	s := Active()
	return fmt.Sprintf(s.Common.ErrorTemplate, err)
}

// LanguageName is the display name of loc in the active language.
func LanguageName(loc Locale) string {
	if name, ok := Active().Settings.LanguageNames[loc]; ok {
		return name
	}
	return string(loc)
}

func SettingCount(count int) string {
	s := Active()
	switch count {
	case 0:
		return s.Settings.CountSuffixNone
	case 1:
		return s.Settings.CountSuffixSingle
	default:
		return fmt.Sprintf(s.Settings.CountSuffixMultiple, count)
	}
}

func RemoveFolderPrompt(path string) string {
	s := Active()
	return fmt.Sprintf(s.Settings.RemovePrompt, path)
}

func FolderAdded(path string) string {
	s := Active()
	return fmt.Sprintf(s.Settings.FolderAdded, path)
}

func FolderRemoved(path string) string {
	s := Active()
	return fmt.Sprintf(s.Settings.FolderRemoved, path)
}

func AddFolderFailed(err error) string {
	s := Active()
	return fmt.Sprintf(s.Settings.AddFolderFailed, err)
}

func RemoveFolderFailed(err error) string {
	s := Active()
	return fmt.Sprintf(s.Settings.RemoveFolderFailed, err)
}

func SaveConfigFailed(err error) string {
	s := Active()
	return fmt.Sprintf(s.Settings.SaveConfigFailed, err)
}
