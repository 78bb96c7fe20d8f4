package utils

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"epub_reader/lang"
)

var (
	ErrDialogCancelled   = errors.New("selection cancelled")
	ErrDialogUnavailable = errors.New("selection dialog unavailable")
)

// SelectFileDialog opens a system-specific dialog for choosing an EPUB file and
// returns the selected absolute path. If the dialog is cancelled,
// ErrDialogCancelled is returned.
func SelectFileDialog(start string) (string, error) {
	if info, err := os.Stat(start); start == "" || err != nil || !info.IsDir() {
		if home, err := os.UserHomeDir(); err == nil {
			start = home
		}
	}

	var (
		path string
		err  error
	)
	switch runtime.GOOS {
	case "darwin":
		path, err = selectFileDarwin(start)
	case "windows":
		path, err = selectFileWindows(start)
	default:
		path, err = selectFileLinux(start)
	}
	if err != nil {
		return "", err
	}

	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return "", fmt.Errorf("not a file: %s", path)
	}
	return path, nil
}

// SelectFolderDialog opens a system-specific dialog for choosing a library
// folder. It fails the same way SelectFileDialog does.
func SelectFolderDialog(start string) (string, error) {
	if info, err := os.Stat(start); start == "" || err != nil || !info.IsDir() {
		if home, err := os.UserHomeDir(); err == nil {
			start = home
		}
	}

	var (
		path string
		err  error
	)
	switch runtime.GOOS {
	case "darwin":
		path, err = selectFolderDarwin(start)
	case "windows":
		path, err = selectFolderWindows(start)
	default:
		path, err = selectFolderLinux(start)
	}
	if err != nil {
		return "", err
	}

	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", path)
	}
	return path, nil
}

func selectFileDarwin(start string) (string, error) {
	return runAppleScript(`choose file with prompt _prompt of type {"org.idpf.epub-container", "epub"}`,
		`choose file with prompt _prompt`, lang.Active().Dialog.SelectFilePrompt, start)
}

func selectFolderDarwin(start string) (string, error) {
	return runAppleScript(`choose folder with prompt _prompt`,
		`choose folder with prompt _prompt`, lang.Active().Dialog.SelectFolderPrompt, start)
}

// runAppleScript runs choose, retrying with fallback when the default
// location is rejected.
func runAppleScript(choose, fallback, prompt, start string) (string, error) {
	script := fmt.Sprintf(`
        set _prompt to "%s"
        set _p to ""
        try
            set _p to POSIX path of (%s default location POSIX file "%s")
        on error errMsg number errNum
            if errNum is -128 then error number -128 -- user cancelled, propagate
            set _p to POSIX path of (%s)
        end try
        return _p
    `, escapeAppleScriptString(prompt), choose, escapeAppleScriptString(filepath.Clean(start)), fallback)

	// stderr carries IMKClient noise, only stdout is read
	out, err := exec.Command("osascript", "-e", script).Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) == 0 {
			return "", ErrDialogCancelled
		}
		return "", fmt.Errorf("osascript: %v", err)
	}

	chosen := firstAbsoluteLine(string(out))
	if chosen == "" {
		return "", ErrDialogCancelled
	}
	return filepath.Clean(strings.ReplaceAll(chosen, "\r", "")), nil
}

func firstAbsoluteLine(s string) string {
	for _, ln := range strings.Split(s, "\n") {
		ln = strings.TrimSpace(ln)
		if strings.HasPrefix(ln, "/") {
			return ln
		}
	}
	return ""
}

func selectFileWindows(start string) (string, error) {
	return runPowerShell(fmt.Sprintf(`[System.Reflection.Assembly]::LoadWithPartialName('System.windows.forms') | Out-Null;
$dialog = New-Object System.Windows.Forms.OpenFileDialog;
$dialog.Title = '%s';
$dialog.InitialDirectory = '%s';
$dialog.Filter = 'EPUB (*.epub)|*.epub|All files (*.*)|*.*';
if ($dialog.ShowDialog() -eq 'OK') { Write-Output $dialog.FileName }`,
		escapePowerShellString(lang.Active().Dialog.SelectFilePrompt),
		escapePowerShellString(filepath.Clean(start))))
}

func selectFolderWindows(start string) (string, error) {
	return runPowerShell(fmt.Sprintf(`[System.Reflection.Assembly]::LoadWithPartialName('System.windows.forms') | Out-Null;
$dialog = New-Object System.Windows.Forms.FolderBrowserDialog;
$dialog.Description = '%s';
$dialog.SelectedPath = '%s';
$dialog.ShowNewFolderButton = $false;
if ($dialog.ShowDialog() -eq 'OK') { Write-Output $dialog.SelectedPath }`,
		escapePowerShellString(lang.Active().Dialog.SelectFolderPrompt),
		escapePowerShellString(filepath.Clean(start))))
}

func runPowerShell(script string) (string, error) {
	out, err := exec.Command("powershell", "-NoProfile", "-Command", script).Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) == 0 {
			return "", ErrDialogCancelled
		}
		return "", err
	}

	path := strings.TrimSpace(string(out))
	if path == "" {
		return "", ErrDialogCancelled
	}
	return filepath.Clean(path), nil
}

func selectFileLinux(start string) (string, error) {
	title := lang.Active().Dialog.SelectFilePrompt
	dir := ensureTrailingSeparator(filepath.Clean(start))
	return runFirstAvailable([][]string{
		{"zenity", "--file-selection", "--title", title, "--filename", dir, "--file-filter", "EPUB | *.epub", "--file-filter", "* | *"},
		{"kdialog", "--getopenfilename", dir, "EPUB (*.epub)", "--title", title},
	})
}

func selectFolderLinux(start string) (string, error) {
	title := lang.Active().Dialog.SelectFolderPrompt
	return runFirstAvailable([][]string{
		{"zenity", "--file-selection", "--directory", "--title", title, "--filename", ensureTrailingSeparator(filepath.Clean(start))},
		{"kdialog", "--getexistingdirectory", filepath.Clean(start), "--title", title},
	})
}

// runFirstAvailable runs the first dialog program found on PATH.
func runFirstAvailable(candidates [][]string) (string, error) {
	for _, args := range candidates {
		out, err := exec.Command(args[0], args[1:]...).Output()
		if err != nil {
			if errors.Is(err, exec.ErrNotFound) {
				continue
			}
			if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
				return "", ErrDialogCancelled
			}
			return "", err
		}

		path := strings.TrimSpace(string(out))
		if path == "" {
			return "", ErrDialogCancelled
		}
		return filepath.Clean(path), nil
	}

	return "", ErrDialogUnavailable
}

func escapeAppleScriptString(s string) string {
	replacer := strings.NewReplacer("\\", "\\\\", "\"", "\\\"")
	return replacer.Replace(s)
}

func escapePowerShellString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func ensureTrailingSeparator(path string) string {
	if strings.HasSuffix(path, string(os.PathSeparator)) {
		return path
	}
	return path + string(os.PathSeparator)
}
