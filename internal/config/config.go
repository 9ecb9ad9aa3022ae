package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Window   WindowConfig   `mapstructure:"window" yaml:"window"`
	Frontend FrontendConfig `mapstructure:"frontend" yaml:"frontend"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// WindowConfig selects and sizes the native window.
type WindowConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"`
	Title   string `mapstructure:"title" yaml:"title"`
	Width   int    `mapstructure:"width" yaml:"width"`
	Height  int    `mapstructure:"height" yaml:"height"`
	Debug   bool   `mapstructure:"debug" yaml:"debug"`
	NoTray  bool   `mapstructure:"no_tray" yaml:"no_tray"` // browser backend: no tray icon or status item
}

// FrontendConfig controls where the frontend is looked up.
type FrontendConfig struct {
	Packaged      bool          `mapstructure:"packaged" yaml:"packaged"`
	Debug         bool          `mapstructure:"debug" yaml:"debug"`
	DummyDir      string        `mapstructure:"dummy_dir" yaml:"dummy_dir"`
	DistDir       string        `mapstructure:"dist_dir" yaml:"dist_dir"`
	DevServerHost string        `mapstructure:"dev_server_host" yaml:"dev_server_host"`
	DevServerPort int           `mapstructure:"dev_server_port" yaml:"dev_server_port"`
	BackendType   string        `mapstructure:"backend_type" yaml:"backend_type"`
	ProbeTimeout  time.Duration `mapstructure:"probe_timeout" yaml:"probe_timeout"`
}

// DevServerURL returns the URL of the development server.
func (c *FrontendConfig) DevServerURL() string {
	return fmt.Sprintf("http://%s:%d", c.DevServerHost, c.DevServerPort)
}

// ServerConfig holds static file server configuration.
type ServerConfig struct {
	Host         string        `mapstructure:"host" yaml:"host"`
	Port         int           `mapstructure:"port" yaml:"port"`
	ReadyTimeout time.Duration `mapstructure:"ready_timeout" yaml:"ready_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Format     string `mapstructure:"format" yaml:"format"`
	Path       string `mapstructure:"path" yaml:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Backend: "webview",
			Title:   "Vue Desktop App",
			Width:   1200,
			Height:  800,
		},
		Frontend: FrontendConfig{
			Packaged:      true,
			DummyDir:      "frontend-dummy",
			DistDir:       "frontend/dist",
			DevServerHost: "localhost",
			DevServerPort: 5173,
			BackendType:   "mock",
			ProbeTimeout:  500 * time.Millisecond,
		},
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         0,
			ReadyTimeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
	}
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > .env file > config file > defaults
func Load(configPath string) (*Config, error) {
	// Variables already present in the environment are never overridden.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.deskshell")
	}

	v.SetEnvPrefix("DESKSHELL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Environment names understood by existing frontends and scripts.
	if err := v.BindEnv("frontend.debug", "DESKSHELL_FRONTEND_DEBUG", "PDV_FE_BE_CONCEPT_DEBUG"); err != nil {
		return nil, fmt.Errorf("failed to bind env: %w", err)
	}
	if err := v.BindEnv("frontend.backend_type", "DESKSHELL_FRONTEND_BACKEND_TYPE", "PDV_FE_DATA_BACKEND_TYPE"); err != nil {
		return nil, fmt.Errorf("failed to bind env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Dump writes the configuration as YAML.
func Dump(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("window.backend", d.Window.Backend)
	v.SetDefault("window.title", d.Window.Title)
	v.SetDefault("window.width", d.Window.Width)
	v.SetDefault("window.height", d.Window.Height)
	v.SetDefault("window.debug", d.Window.Debug)
	v.SetDefault("window.no_tray", d.Window.NoTray)

	v.SetDefault("frontend.packaged", d.Frontend.Packaged)
	v.SetDefault("frontend.debug", d.Frontend.Debug)
	v.SetDefault("frontend.dummy_dir", d.Frontend.DummyDir)
	v.SetDefault("frontend.dist_dir", d.Frontend.DistDir)
	v.SetDefault("frontend.dev_server_host", d.Frontend.DevServerHost)
	v.SetDefault("frontend.dev_server_port", d.Frontend.DevServerPort)
	v.SetDefault("frontend.backend_type", d.Frontend.BackendType)
	v.SetDefault("frontend.probe_timeout", d.Frontend.ProbeTimeout)

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.ready_timeout", d.Server.ReadyTimeout)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.path", d.Logging.Path)
	v.SetDefault("logging.max_size_mb", d.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	v.SetDefault("logging.max_age_days", d.Logging.MaxAgeDays)
	v.SetDefault("logging.compress", d.Logging.Compress)
}
