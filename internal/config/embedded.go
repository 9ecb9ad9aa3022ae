package config

// Build metadata injected at build time via ldflags.
//
// Build with:
//
//	go build -ldflags "-X 'github.com/deskshell/deskshell/internal/config.Version=1.2.3'"
var (
	Version = "dev"
)
