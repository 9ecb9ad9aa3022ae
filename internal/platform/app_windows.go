//go:build windows

package platform

import (
	"context"
	"os/exec"
	"sync"

	"github.com/tailscale/walk"
)

// trayApp shows a notification-area icon whose menu reopens the page,
// copies its address or quits.
type trayApp struct {
	target

	cfg  AppConfig
	done chan struct{}

	mu       sync.Mutex
	app      *walk.Application
	icon     *walk.NotifyIcon
	running  bool
	stopped  bool
	stopOnce sync.Once
}

func NewApp(cfg AppConfig) App {
	a := &trayApp{cfg: cfg, done: make(chan struct{})}
	a.SetURL(cfg.URL)
	return a
}

func (a *trayApp) Run() error {
	a.mu.Lock()
	stopped := a.stopped
	a.mu.Unlock()
	if stopped {
		return nil
	}

	if a.cfg.NoTray {
		<-a.done
		return nil
	}

	// InitApp must precede any other walk call.
	app, err := walk.InitApp()
	if err != nil {
		return err
	}
	walk.App().SetProductName(a.cfg.title())

	icon, err := a.newTrayIcon()
	if err != nil {
		return err
	}

	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		icon.Dispose()
		return nil
	}
	a.app, a.icon, a.running = app, icon, true
	a.mu.Unlock()

	app.Run()
	return nil
}

func (a *trayApp) newTrayIcon() (*walk.NotifyIcon, error) {
	icon, err := walk.NewNotifyIcon()
	if err != nil {
		return nil, err
	}
	if err := icon.SetToolTip(a.cfg.title()); err != nil {
		return nil, err
	}
	if img := walk.IconApplication(); img != nil {
		icon.SetIcon(img)
	}

	icon.MouseDown().Attach(func(x, y int, button walk.MouseButton) {
		if button == walk.LeftButton {
			a.openCurrent()
		}
	})

	actions := icon.ContextMenu().Actions()
	actions.Add(newAction("Open "+a.cfg.title(), a.openCurrent))
	actions.Add(newAction("Copy address", func() {
		_ = walk.Clipboard().SetText(a.URL())
	}))
	actions.Add(walk.NewSeparatorAction())
	actions.Add(newAction("Quit", a.Stop))

	if err := icon.SetVisible(true); err != nil {
		return nil, err
	}
	return icon, nil
}

func newAction(text string, fn func()) *walk.Action {
	action := walk.NewAction()
	action.SetText(text)
	action.Triggered().Attach(fn)
	return action
}

func (a *trayApp) openCurrent() {
	if url := a.URL(); url != "" {
		_ = a.OpenBrowser(url)
	}
}

func (a *trayApp) OpenBrowser(url string) error {
	return exec.CommandContext(context.Background(), "cmd", "/c", "start", "", url).Start()
}

func (a *trayApp) Stop() {
	a.stopOnce.Do(func() {
		a.mu.Lock()
		a.stopped = true
		if a.running {
			a.icon.Dispose()
			a.app.Exit(0)
		}
		a.mu.Unlock()
		close(a.done)

		if a.cfg.OnQuit != nil {
			a.cfg.OnQuit()
		}
	})
}
