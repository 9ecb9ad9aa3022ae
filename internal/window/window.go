// Package window adapts native webview libraries to one small interface so
// the shell can pick a rendering backend by name at startup.
package window

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// DefaultBackend is used when no backend is configured.
const DefaultBackend = "webview"

var (
	// ErrUnknownBackend is returned for a backend name that is not registered.
	ErrUnknownBackend = errors.New("unknown window backend")

	// ErrUnavailable is returned when a backend cannot run in this build or
	// on this machine (no cgo, wrong OS, browser not installed).
	ErrUnavailable = errors.New("window backend unavailable")
)

// Window is the capability set every backend provides.
type Window interface {
	SetTitle(title string)
	Navigate(url string) error
	// Run shows the window and blocks until it is closed.
	Run() error
}

// Binder is implemented by backends that can expose Go functions to the
// page's JavaScript.
type Binder interface {
	Bind(name string, fn any) error
}

// Stopper is implemented by backends that can be closed from another
// goroutine, e.g. on SIGINT.
type Stopper interface {
	Stop()
}

// Options configures a new window.
type Options struct {
	Title  string
	Width  int
	Height int
	Debug  bool
	NoTray bool // browser backend only
	Logger zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 1200
	}
	if o.Height <= 0 {
		o.Height = 800
	}
	return o
}

// Factory creates a window for a backend.
type Factory func(opts Options) (Window, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}

	// Backend names accepted for compatibility with older launch scripts.
	aliases = map[string]string{
		"webview_python": "webview",
		"webui":          "lorca",
	}
)

// Register makes a backend available under name. Registering the same name
// twice replaces the previous factory.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(name)] = factory
}

// Backends returns the registered backend names, sorted.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates a window using the named backend.
func New(name string, opts Options) (Window, error) {
	if name == "" {
		name = DefaultBackend
	}

	key := strings.ToLower(name)
	if target, ok := aliases[key]; ok {
		key = target
	}

	registryMu.RLock()
	factory, ok := registry[key]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownBackend, name, strings.Join(Backends(), ", "))
	}

	opts = opts.withDefaults()
	w, err := factory(opts)
	if err != nil {
		return nil, fmt.Errorf("create %s window: %w", name, err)
	}

	opts.Logger.Debug().Str("backend", name).Msg("window created")
	return w, nil
}

// unavailable returns a factory that always fails with ErrUnavailable.
func unavailable(name, reason string) Factory {
	return func(Options) (Window, error) {
		return nil, fmt.Errorf("%w: %s %s", ErrUnavailable, name, reason)
	}
}
