// Package frontend decides which URL the window shows: a packaged bundle,
// the debug dummy site, a running dev server, a built dist directory, or a
// fallback message.
package frontend

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/deskshell/deskshell/internal/config"
	"github.com/deskshell/deskshell/internal/probe"
	"github.com/deskshell/deskshell/internal/staticserver"
)

// Source identifies where the frontend came from.
type Source string

const (
	SourcePackaged  Source = "packaged"
	SourceDebug     Source = "debug"
	SourceDevServer Source = "devserver"
	SourceDist      Source = "dist"
	SourceFallback  Source = "fallback"
)

const fallbackHTML = "<h1>Vue Desktop App</h1><p>No Vue frontend found</p><p>Run: npm run dev</p>"

// Location is the resolved frontend.
type Location struct {
	Source Source
	URL    string
	Dir    string               // directory served, empty for packaged/devserver/fallback
	Server *staticserver.Server // non-nil when a static server was started
}

// Close shuts down the static server owned by the location, if any.
func (l *Location) Close(ctx context.Context) error {
	if l == nil || l.Server == nil {
		return nil
	}
	return l.Server.Shutdown(ctx)
}

// Locator resolves the frontend in priority order.
type Locator struct {
	cfg       config.FrontendConfig
	serverCfg staticserver.Config
	packaged  fs.FS
	logger    zerolog.Logger

	// Hooks replaced in tests.
	isDevBuild  func() bool
	isListening func(ctx context.Context, host string, port int) bool
	baseDirs    func() []string
}

// NewLocator creates a locator. packaged may be nil when the binary carries
// no bundled frontend.
func NewLocator(cfg config.FrontendConfig, serverCfg config.ServerConfig, packaged fs.FS, isDevBuild func() bool, logger zerolog.Logger) *Locator {
	checker := probe.NewChecker(cfg.ProbeTimeout)
	l := &Locator{
		cfg:        cfg,
		packaged:   packaged,
		logger:     logger.With().Str("component", "frontend").Logger(),
		isDevBuild: isDevBuild,
		baseDirs:   defaultBaseDirs,
	}
	l.serverCfg = staticserver.Config{
		Host:         serverCfg.Host,
		Port:         serverCfg.Port,
		ReadyTimeout: serverCfg.ReadyTimeout,
	}
	l.isListening = func(ctx context.Context, host string, port int) bool {
		return checker.Check(ctx, host, port).IsListening
	}
	if l.isDevBuild == nil {
		l.isDevBuild = func() bool { return false }
	}
	return l
}

// Resolve walks the candidates and returns the first usable location. A
// candidate whose static server fails to start is skipped; the fallback
// always succeeds.
func (l *Locator) Resolve(ctx context.Context) (*Location, error) {
	if loc, ok := l.tryPackaged(ctx); ok {
		return loc, nil
	}
	if loc, ok := l.tryDebug(ctx); ok {
		return loc, nil
	}
	if loc, ok := l.tryDevServer(ctx); ok {
		return loc, nil
	}
	if loc, ok := l.tryDist(ctx); ok {
		return loc, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.logger.Warn().Msg("no frontend found, showing fallback page")
	return &Location{Source: SourceFallback, URL: FallbackURL()}, nil
}

func (l *Locator) tryPackaged(ctx context.Context) (*Location, bool) {
	if !l.cfg.Packaged || !staticserver.HasIndex(l.packaged) {
		return nil, false
	}
	if l.isDevBuild() {
		l.logger.Debug().Msg("dev build, skipping packaged frontend")
		return nil, false
	}

	srv := staticserver.New(l.serverCfg, l.packaged, l.logger)
	return l.serve(ctx, SourcePackaged, "", srv)
}

func (l *Locator) tryDebug(ctx context.Context) (*Location, bool) {
	if !l.cfg.Debug {
		return nil, false
	}
	dir, ok := l.findDir(l.cfg.DummyDir)
	if !ok {
		l.logger.Warn().Str("dir", l.cfg.DummyDir).Msg("debug mode enabled but dummy frontend not found")
		return nil, false
	}
	return l.serveDir(ctx, SourceDebug, dir)
}

func (l *Locator) tryDevServer(ctx context.Context) (*Location, bool) {
	if l.cfg.DevServerPort <= 0 {
		return nil, false
	}
	if !l.isListening(ctx, l.cfg.DevServerHost, l.cfg.DevServerPort) {
		l.logger.Debug().Str("url", l.cfg.DevServerURL()).Msg("dev server not running")
		return nil, false
	}
	l.logger.Info().Str("url", l.cfg.DevServerURL()).Msg("using dev server")
	return &Location{Source: SourceDevServer, URL: l.cfg.DevServerURL()}, true
}

func (l *Locator) tryDist(ctx context.Context) (*Location, bool) {
	dir, ok := l.findDir(l.cfg.DistDir)
	if !ok {
		return nil, false
	}
	return l.serveDir(ctx, SourceDist, dir)
}

func (l *Locator) serveDir(ctx context.Context, source Source, dir string) (*Location, bool) {
	srv, err := staticserver.NewDir(l.serverCfg, dir, l.logger)
	if err != nil {
		l.logger.Warn().Err(err).Str("source", string(source)).Str("dir", dir).Msg("cannot serve frontend directory")
		return nil, false
	}
	return l.serve(ctx, source, dir, srv)
}

func (l *Locator) serve(ctx context.Context, source Source, dir string, srv *staticserver.Server) (*Location, bool) {
	err := srv.Start(ctx)
	switch {
	case err == nil:
	case errors.Is(err, staticserver.ErrNotReady) && srv.URL() != "":
		// The listener is bound; the window may still load once serving catches up.
		l.logger.Warn().Err(err).Str("source", string(source)).Msg("static server readiness not confirmed, continuing")
	default:
		l.logger.Warn().Err(err).Str("source", string(source)).Msg("failed to start static server")
		_ = srv.Shutdown(context.Background())
		return nil, false
	}

	l.logger.Info().
		Str("source", string(source)).
		Str("dir", dir).
		Str("url", srv.URL()).
		Msg("serving frontend")
	return &Location{Source: source, URL: srv.URL(), Dir: dir, Server: srv}, true
}

// findDir resolves a possibly relative directory against each base dir and
// returns the first that exists.
func (l *Locator) findDir(dir string) (string, bool) {
	if dir == "" {
		return "", false
	}
	if filepath.IsAbs(dir) {
		return dir, isDir(dir)
	}
	for _, base := range l.baseDirs() {
		candidate := filepath.Join(base, dir)
		if isDir(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// defaultBaseDirs returns the working directory and the executable's
// directory, in that order.
func defaultBaseDirs() []string {
	var dirs []string
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		exeDir := filepath.Dir(exe)
		if len(dirs) == 0 || dirs[0] != exeDir {
			dirs = append(dirs, exeDir)
		}
	}
	return dirs
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// FallbackURL returns the data URL shown when no frontend is available.
func FallbackURL() string {
	return "data:text/html," + url.PathEscape(fallbackHTML)
}

// NavigationURL appends the backend type the frontend should bind to as a
// URL fragment.
func NavigationURL(base, backendType string) string {
	if backendType == "" {
		return base
	}
	if i := strings.IndexByte(base, '#'); i >= 0 {
		base = base[:i]
	}
	return fmt.Sprintf("%s#backend_type=%s", base, url.QueryEscape(backendType))
}
