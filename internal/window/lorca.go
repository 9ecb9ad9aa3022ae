package window

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/zserge/lorca"
)

func init() {
	Register("lorca", newLorca)
}

// lorcaWindow runs the page in a Chrome/Chromium app window over the
// DevTools protocol.
type lorcaWindow struct {
	ui     lorca.UI
	opts   Options
	mu     sync.Mutex
	title  string
	closed sync.Once
}

func newLorca(opts Options) (Window, error) {
	if lorca.LocateChrome() == "" {
		return nil, fmt.Errorf("%w: lorca needs Chrome or Chromium installed", ErrUnavailable)
	}

	var args []string
	if opts.Debug {
		args = append(args, "--auto-open-devtools-for-tabs")
	}

	ui, err := lorca.New("", "", opts.Width, opts.Height, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return &lorcaWindow{ui: ui, opts: opts, title: opts.Title}, nil
}

// SetTitle records the title; Chrome app windows take it from the page, so
// it is applied to document.title after each navigation.
func (l *lorcaWindow) SetTitle(title string) {
	l.mu.Lock()
	l.title = title
	l.mu.Unlock()
	l.applyTitle()
}

func (l *lorcaWindow) Navigate(url string) error {
	if err := l.ui.Load(url); err != nil {
		return fmt.Errorf("load %s: %w", url, err)
	}
	l.applyTitle()
	return nil
}

func (l *lorcaWindow) applyTitle() {
	l.mu.Lock()
	title := l.title
	l.mu.Unlock()
	if title == "" {
		return
	}

	quoted, err := json.Marshal(title)
	if err != nil {
		return
	}
	if v := l.ui.Eval("document.title = " + string(quoted)); v.Err() != nil {
		l.opts.Logger.Debug().Err(v.Err()).Msg("lorca: failed to set title")
	}
}

func (l *lorcaWindow) Run() error {
	<-l.ui.Done()
	l.Stop()
	return nil
}

func (l *lorcaWindow) Bind(name string, fn any) error {
	return l.ui.Bind(name, fn)
}

func (l *lorcaWindow) Stop() {
	l.closed.Do(func() {
		if err := l.ui.Close(); err != nil {
			l.opts.Logger.Debug().Err(err).Msg("lorca: close")
		}
	})
}
