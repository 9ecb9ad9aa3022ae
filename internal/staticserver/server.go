// Package staticserver serves a single frontend bundle over HTTP on a local
// port for the embedded window to load.
package staticserver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/deskshell/deskshell/internal/probe"
	"github.com/deskshell/deskshell/internal/startup"
)

const (
	defaultReadyTimeout = 5 * time.Second

	// Number of ports tried after a busy preferred port before asking the OS.
	portScanAttempts = 10
)

var (
	// ErrNoContent is returned when the directory to serve does not exist.
	ErrNoContent = errors.New("nothing to serve")

	// ErrNotReady is returned when the server did not signal readiness in time.
	ErrNotReady = errors.New("server not ready")

	// ErrAlreadyStarted is returned by a second call to Start.
	ErrAlreadyStarted = errors.New("server already started")
)

// Config holds static server configuration.
type Config struct {
	Host         string
	Port         int // 0 picks an ephemeral port
	ReadyTimeout time.Duration
}

// Server serves one fs.FS on a local address.
type Server struct {
	echo   *echo.Echo
	http   *http.Server
	files  fs.FS
	cfg    Config
	logger zerolog.Logger

	mu      sync.Mutex
	addr    *net.TCPAddr
	started bool
	done    chan error
}

// New creates a server for files.
func New(cfg Config, files fs.FS, logger zerolog.Logger) *Server {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = defaultReadyTimeout
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:   e,
		files:  files,
		cfg:    cfg,
		logger: logger.With().Str("component", "staticserver").Logger(),
	}
	s.http = &http.Server{
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.setupMiddleware()
	registerFrontendHandler(e, files)

	return s
}

// NewDir creates a server for a directory on disk.
func NewDir(cfg Config, dir string, logger zerolog.Logger) (*Server, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoContent, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNoContent, dir)
	}
	return New(cfg, os.DirFS(dir), logger), nil
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())

	s.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogMethod:    true,
		LogError:     true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Warn().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Str("requestId", v.RequestID).
					Dur("latency", v.Latency).
					Err(v.Error).
					Msg("request error")
			} else {
				s.logger.Debug().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Str("requestId", v.RequestID).
					Dur("latency", v.Latency).
					Msg("request")
			}
			return nil
		},
	}))

	s.echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
	}))
}

// Start binds the listener, serves in the background and blocks until the
// serve goroutine signals readiness. It returns ErrNotReady (wrapped) when
// the ready timeout elapses first; the server keeps running in that case.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	s.mu.Unlock()

	ln, err := s.listen()
	if err != nil {
		return err
	}

	addr := ln.Addr().(*net.TCPAddr)
	s.mu.Lock()
	s.addr = addr
	s.done = make(chan error, 1)
	done := s.done
	s.mu.Unlock()

	ready := make(chan struct{})
	go func() {
		close(ready)
		err := s.http.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		done <- err
		close(done)
	}()

	// One deadline covers both the ready signal and the dial confirmation.
	readyCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadyTimeout)
	defer cancel()

	select {
	case <-ready:
	case <-readyCtx.Done():
		return s.notReady(ctx, readyCtx.Err())
	}

	dialHost := addr.IP.String()
	if addr.IP.IsUnspecified() {
		dialHost = "127.0.0.1"
	}

	// ready only means Serve is about to run; the dial proves the listener
	// accepts connections.
	err = startup.WithRetry(readyCtx, "static server readiness", startup.ReadinessRetryConfig(),
		func(ctx context.Context) error {
			return probe.Dial(ctx, dialHost, addr.Port, time.Second)
		}, &s.logger)
	if err != nil {
		select {
		case serveErr := <-done:
			if serveErr != nil {
				return fmt.Errorf("serve: %w", serveErr)
			}
		default:
		}
		return s.notReady(ctx, err)
	}

	s.logger.Info().Str("url", s.URL()).Msg("static server listening")
	return nil
}

// notReady closes the server when ctx was cancelled and otherwise reports
// ErrNotReady, leaving the server running.
func (s *Server) notReady(ctx context.Context, cause error) error {
	if err := ctx.Err(); err != nil {
		_ = s.http.Close()
		return err
	}
	s.logger.Warn().Err(cause).Dur("timeout", s.cfg.ReadyTimeout).Msg("static server readiness not confirmed")
	return fmt.Errorf("%w after %s: %w", ErrNotReady, s.cfg.ReadyTimeout, cause)
}

func (s *Server) listen() (net.Listener, error) {
	port, err := probe.FindAvailablePort(s.cfg.Host, s.cfg.Port, portScanAttempts)
	if err != nil {
		s.logger.Warn().Err(err).Int("configuredPort", s.cfg.Port).Msg("configured port range busy, using ephemeral port")
		port = 0
	} else if port != s.cfg.Port {
		s.logger.Warn().
			Int("configuredPort", s.cfg.Port).
			Int("actualPort", port).
			Msg("configured port in use, using alternative port")
	}

	ln, err := net.Listen("tcp", net.JoinHostPort(s.cfg.Host, strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}
	return ln, nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() *net.TCPAddr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Port returns the bound port, or 0 before Start.
func (s *Server) Port() int {
	if addr := s.Addr(); addr != nil {
		return addr.Port
	}
	return 0
}

// URL returns the address the window should load, or "" before Start.
func (s *Server) URL() string {
	port := s.Port()
	if port == 0 {
		return ""
	}
	host := s.cfg.Host
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port))
}

// Done returns a channel receiving the serve loop's terminal error, nil on
// graceful shutdown. It is nil before Start.
func (s *Server) Done() <-chan error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Shutdown gracefully stops the server. It is a no-op before Start.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return nil
	}

	s.logger.Debug().Msg("shutting down static server")
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
