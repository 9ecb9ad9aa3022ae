// Package platform keeps the process alive while the frontend is shown in
// the system browser, with a tray or status-bar menu where the OS has one.
package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

// AppConfig configures the platform shell.
type AppConfig struct {
	URL    string
	Title  string
	NoTray bool
	OnQuit func()
}

// App is the platform shell's run loop.
type App interface {
	// Run blocks until Stop is called or the user quits from the tray.
	Run() error
	OpenBrowser(url string) error
	// SetURL changes the page the menu's Open entry shows.
	SetURL(url string)
	URL() string
	// Stop ends Run. It is safe to call more than once and before Run.
	Stop()
}

// target is the page the shell reopens from its menu.
type target struct {
	mu  sync.Mutex
	url string
}

func (t *target) SetURL(url string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.url = url
}

func (t *target) URL() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.url
}

func (c AppConfig) title() string {
	if c.Title == "" {
		return "deskshell"
	}
	return c.Title
}

// LogDir returns the per-user log directory for appName.
func LogDir(appName string) string {
	switch runtime.GOOS {
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, appName, "logs")
		}
	case "darwin":
		if home, _ := os.UserHomeDir(); home != "" {
			return filepath.Join(home, "Library", "Logs", appName)
		}
	default:
		if dir, err := os.UserConfigDir(); err == nil {
			return filepath.Join(dir, appName, "logs")
		}
	}
	return "./logs"
}
