//go:build !windows && !darwin

package platform

import (
	"os/exec"
	"sync"
)

// headlessApp has no tray; Run simply waits for Stop.
type headlessApp struct {
	target

	onQuit   func()
	done     chan struct{}
	stopOnce sync.Once
}

func NewApp(cfg AppConfig) App {
	a := &headlessApp{
		onQuit: cfg.OnQuit,
		done:   make(chan struct{}),
	}
	a.SetURL(cfg.URL)
	return a
}

func (a *headlessApp) Run() error {
	<-a.done
	return nil
}

func (a *headlessApp) OpenBrowser(url string) error {
	return exec.Command("xdg-open", url).Start()
}

func (a *headlessApp) Stop() {
	a.stopOnce.Do(func() {
		close(a.done)
		if a.onQuit != nil {
			a.onQuit()
		}
	})
}
