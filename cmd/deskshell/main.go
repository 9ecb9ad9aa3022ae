package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/deskshell/deskshell/internal/bridge"
	"github.com/deskshell/deskshell/internal/config"
	"github.com/deskshell/deskshell/internal/frontend"
	"github.com/deskshell/deskshell/internal/logger"
	"github.com/deskshell/deskshell/internal/platform"
	"github.com/deskshell/deskshell/internal/window"
	"github.com/deskshell/deskshell/web"
)

const appName = "deskshell"

// bootstrapLog writes early diagnostic messages to a file before the main
// logger is initialized. GUI builds on Windows have no console output.
var bootstrapLog = func(msg string) {
	logDir := platform.LogDir(appName)
	_ = os.MkdirAll(logDir, 0o755)

	f, err := os.OpenFile(filepath.Join(logDir, "bootstrap.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return
	}
	defer f.Close()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(f, "[%s] %s\n", timestamp, msg)
}

type options struct {
	configPath  string
	backend     string
	printConfig bool
	version     bool
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "Path to config file")
	fs.StringVar(&opts.backend, "backend", "", "Window backend (webview, lorca, webkitgtk, browser)")
	fs.BoolVar(&opts.printConfig, "print-config", false, "Print the effective configuration as YAML and exit")
	fs.BoolVar(&opts.version, "version", false, "Print the version and exit")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s [flags] [backend]\n\nBackends: %v\n\nFlags:\n", appName, window.Backends())
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	switch fs.NArg() {
	case 0:
	case 1:
		opts.backend = fs.Arg(0)
	default:
		return opts, fmt.Errorf("expected at most one backend argument, got %d", fs.NArg())
	}

	return opts, nil
}

func main() {
	// macOS requires UI elements to be created on the main thread.
	runtime.LockOSThread()

	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	bootstrapLog(fmt.Sprintf("=== %s starting (OS: %s, Arch: %s) ===", appName, runtime.GOOS, runtime.GOARCH))

	opts, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	if opts.version {
		fmt.Fprintf(stdout, "%s %s\n", appName, config.Version)
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		bootstrapLog(fmt.Sprintf("FATAL: failed to load config: %v", err))
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return 1
	}
	if opts.backend != "" {
		cfg.Window.Backend = opts.backend
	}

	if opts.printConfig {
		if err := config.Dump(stdout, cfg); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		return 0
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Path:       cfg.Logging.Path,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
		Out:        stdout,
	})
	defer log.Close()
	bootstrapLog("Logger initialized")

	log.Info().
		Str("version", config.Version).
		Str("backend", cfg.Window.Backend).
		Msg("starting " + appName)

	win, err := window.New(cfg.Window.Backend, window.Options{
		Title:  cfg.Window.Title,
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		Debug:  cfg.Window.Debug,
		NoTray: cfg.Window.NoTray,
		Logger: log.WithComponent("window"),
	})
	if err != nil {
		bootstrapLog(fmt.Sprintf("FATAL: failed to create window: %v", err))
		log.Error().Err(err).Str("backend", cfg.Window.Backend).Msg("failed to create window")
		return 1
	}
	win.SetTitle(cfg.Window.Title)

	distFS, err := web.DistFS()
	if err != nil {
		log.Debug().Err(err).Msg("no embedded frontend")
		distFS = nil
	}

	locator := frontend.NewLocator(cfg.Frontend, cfg.Server, distFS, logger.IsDevBuild, log.Logger)
	loc, err := locator.Resolve(context.Background())
	if err != nil {
		log.Error().Err(err).Msg("failed to resolve frontend")
		return 1
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := loc.Close(ctx); err != nil {
			log.Error().Err(err).Msg("static server shutdown error")
		}
	}()

	if loc.Server != nil {
		go func() {
			if err := <-loc.Server.Done(); err != nil {
				log.Error().Err(err).Msg("static server stopped unexpectedly")
			}
		}()
	}

	bridgeLog := log.WithComponent("bridge")
	if _, err := bridge.Install(win, bridge.NewGreeter(cfg.Window.Backend), bridgeLog); err != nil {
		log.Warn().Err(err).Msg("failed to install frontend bridge")
	}

	target := frontend.NavigationURL(loc.URL, cfg.Frontend.BackendType)
	log.Info().
		Str("source", string(loc.Source)).
		Str("url", target).
		Msg("navigating")
	if err := win.Navigate(target); err != nil {
		log.Error().Err(err).Msg("failed to navigate")
		return 1
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		if _, ok := <-sigChan; !ok {
			return
		}
		log.Info().Msg("received shutdown signal")
		if stopper, ok := win.(window.Stopper); ok {
			stopper.Stop()
			return
		}
		log.Warn().Str("backend", cfg.Window.Backend).Msg("backend cannot be stopped, exiting")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = loc.Close(ctx)
		log.Close()
		os.Exit(130)
	}()

	bootstrapLog("Entering window main loop")
	if err := win.Run(); err != nil {
		log.Error().Err(err).Msg("window error")
		return 1
	}

	log.Info().Msg("window closed, shutting down")
	return 0
}
