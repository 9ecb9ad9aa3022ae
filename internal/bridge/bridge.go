// Package bridge exposes Go functions to the frontend through windows that
// support native bindings.
package bridge

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/deskshell/deskshell/internal/window"
)

// Greeter answers the frontend's hello calls.
type Greeter struct {
	backend string
}

// NewGreeter creates a greeter that reports backend in its replies.
func NewGreeter(backend string) *Greeter {
	return &Greeter{backend: displayName(backend)}
}

// SayHello answers say_hello.
func (g *Greeter) SayHello(name string) string {
	return fmt.Sprintf("Hello %s! (from %s Backend)", name, g.backend)
}

// SayHelloAsync answers say_hello_async. JavaScript sees every binding as a
// promise; the separate name keeps the frontend contract.
func (g *Greeter) SayHelloAsync(name string) string {
	return fmt.Sprintf("Hello %s! (from %s Backend - Async)", name, g.backend)
}

// Bindings returns the functions to expose, keyed by JavaScript name.
func (g *Greeter) Bindings() map[string]any {
	return map[string]any{
		"say_hello":       g.SayHello,
		"say_hello_async": g.SayHelloAsync,
	}
}

// Install binds g into w. It reports false without error when the backend
// has no binding support.
func Install(w window.Window, g *Greeter, logger zerolog.Logger) (bool, error) {
	binder, ok := w.(window.Binder)
	if !ok {
		logger.Debug().Msg("window backend has no native bindings, skipping bridge")
		return false, nil
	}

	for name, fn := range g.Bindings() {
		if err := binder.Bind(name, fn); err != nil {
			return false, fmt.Errorf("bind %s: %w", name, err)
		}
		logger.Debug().Str("binding", name).Msg("bound function")
	}
	return true, nil
}

func displayName(backend string) string {
	switch strings.ToLower(backend) {
	case "", "webview", "webview_python":
		return "WebView"
	case "webkitgtk":
		return "WebKitGTK"
	default:
		return cases.Title(language.Und, cases.NoLower).String(backend)
	}
}
