//go:build darwin

package platform

import (
	"os/exec"
	"sync"

	"github.com/progrium/darwinkit/macos/appkit"
	"github.com/progrium/darwinkit/macos/foundation"
	"github.com/progrium/darwinkit/objc"
)

// statusApp puts the title in the menu bar as an accessory app (no Dock
// icon) with Open and Quit entries.
type statusApp struct {
	target

	cfg  AppConfig
	done chan struct{}

	mu         sync.Mutex
	statusItem appkit.StatusItem
	running    bool
	stopped    bool
	stopOnce   sync.Once
}

func NewApp(cfg AppConfig) App {
	a := &statusApp{cfg: cfg, done: make(chan struct{})}
	a.SetURL(cfg.URL)
	return a
}

func (a *statusApp) Run() error {
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

	objc.WithAutoreleasePool(func() {
		app := appkit.Application_SharedApplication()
		app.SetActivationPolicy(appkit.ApplicationActivationPolicyAccessory)

		item := appkit.StatusBar_SystemStatusBar().StatusItemWithLength(appkit.VariableStatusItemLength)
		if button := item.Button(); button.Ptr != nil {
			button.SetTitle(a.cfg.title())
		}
		item.SetMenu(a.newMenu())

		if !a.markRunning(item) {
			return
		}
		app.Run()
	})

	return nil
}

// markRunning records the status item unless Stop already ran.
func (a *statusApp) markRunning(item appkit.StatusItem) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return false
	}
	a.statusItem = item
	a.running = true
	return true
}

func (a *statusApp) newMenu() appkit.Menu {
	menu := appkit.NewMenu()
	menu.AddItem(appkit.NewMenuItemWithAction("Open "+a.cfg.title(), "o", func(objc.Object) {
		if url := a.URL(); url != "" {
			_ = a.OpenBrowser(url)
		}
	}))
	menu.AddItem(appkit.MenuItem_SeparatorItem())
	menu.AddItem(appkit.NewMenuItemWithAction("Quit", "q", func(objc.Object) {
		a.Stop()
	}))
	return menu
}

func (a *statusApp) OpenBrowser(url string) error {
	nsURL := foundation.URL_URLWithString(url)
	if nsURL.Ptr == nil {
		return exec.Command("open", url).Start()
	}
	appkit.Workspace_SharedWorkspace().OpenURL(nsURL)
	return nil
}

func (a *statusApp) Stop() {
	a.stopOnce.Do(func() {
		a.mu.Lock()
		wasRunning := a.running
		a.running = false
		a.stopped = true
		a.mu.Unlock()

		if wasRunning {
			objc.WithAutoreleasePool(func() {
				appkit.Application_SharedApplication().Terminate(nil)
			})
		}
		close(a.done)

		if a.cfg.OnQuit != nil {
			a.cfg.OnQuit()
		}
	})
}
