// Package probe checks whether local TCP ports are in use.
package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

// DefaultTimeout bounds a single dial attempt.
const DefaultTimeout = 2 * time.Second

// ErrNoPortAvailable is returned when no port in the scanned range can be bound.
var ErrNoPortAvailable = errors.New("no available port")

// Status represents the listening status of a port.
type Status struct {
	Host        string `json:"host"`
	Port        int    `json:"port"`
	IsListening bool   `json:"isListening"`
	Message     string `json:"message,omitempty"`
	CheckedAt   string `json:"checkedAt"`
}

// Checker probes ports with a fixed dial timeout.
type Checker struct {
	Timeout time.Duration
}

// NewChecker creates a new port checker.
func NewChecker(timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Checker{Timeout: timeout}
}

// Check reports whether something accepts TCP connections on host:port.
func (c *Checker) Check(ctx context.Context, host string, port int) Status {
	status := Status{
		Host:      host,
		Port:      port,
		CheckedAt: time.Now().Format(time.RFC3339),
	}

	status.IsListening = IsListening(ctx, host, port, c.Timeout)
	if status.IsListening {
		status.Message = fmt.Sprintf("Port %d is listening on %s", port, host)
	} else {
		status.Message = fmt.Sprintf("Port %d is not listening on %s", port, host)
	}

	return status
}

// IsListening dials host:port and reports whether the connection succeeded
// within timeout.
func IsListening(ctx context.Context, host string, port int, timeout time.Duration) bool {
	return Dial(ctx, host, port, timeout) == nil
}

// Dial opens and immediately closes a TCP connection to host:port.
func Dial(ctx context.Context, host string, port int, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return err
	}
	return conn.Close()
}

// FindAvailablePort returns the first port in [start, start+maxAttempts)
// that can be bound on host. A start of 0 returns 0, leaving the choice to
// the OS.
func FindAvailablePort(host string, start, maxAttempts int) (int, error) {
	if start == 0 {
		return 0, nil
	}
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	for port := start; port < start+maxAttempts && port <= 65535; port++ {
		ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
		if err != nil {
			continue
		}
		ln.Close()
		return port, nil
	}

	return 0, fmt.Errorf("%w in range %d-%d", ErrNoPortAvailable, start, start+maxAttempts-1)
}
