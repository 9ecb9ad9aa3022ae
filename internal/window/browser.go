package window

import (
	"sync"

	"github.com/deskshell/deskshell/internal/platform"
)

func init() {
	Register("browser", func(opts Options) (Window, error) {
		return newBrowser(opts, platform.NewApp), nil
	})
}

// browserWindow shows the page in the system browser and keeps the process
// alive through the platform shell (tray icon where available) until Stop.
type browserWindow struct {
	opts   Options
	newApp func(platform.AppConfig) platform.App

	mu      sync.Mutex
	title   string
	url     string
	app     platform.App
	stopped bool
}

func newBrowser(opts Options, newApp func(platform.AppConfig) platform.App) *browserWindow {
	return &browserWindow{opts: opts, newApp: newApp, title: opts.Title}
}

func (b *browserWindow) SetTitle(title string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.title = title
}

func (b *browserWindow) Navigate(url string) error {
	b.mu.Lock()
	b.url = url
	app := b.app
	b.mu.Unlock()

	if app != nil {
		app.SetURL(url)
		return app.OpenBrowser(url)
	}
	return nil
}

func (b *browserWindow) Run() error {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return nil
	}
	app := b.newApp(platform.AppConfig{
		URL:    b.url,
		Title:  b.title,
		NoTray: b.opts.NoTray,
		OnQuit: func() {
			b.opts.Logger.Info().Msg("browser shell stopped")
		},
	})
	b.app = app
	url := b.url
	b.mu.Unlock()

	if url != "" {
		if err := app.OpenBrowser(url); err != nil {
			b.opts.Logger.Warn().Err(err).Str("url", url).Msg("failed to open browser")
		}
	}
	return app.Run()
}

func (b *browserWindow) Stop() {
	b.mu.Lock()
	b.stopped = true
	app := b.app
	b.mu.Unlock()

	if app != nil {
		app.Stop()
	}
}
