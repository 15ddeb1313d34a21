package http

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
)

// ListenConfig says where to bind: the preferred host:port, and whether an
// arbitrary free port is acceptable when the preferred one is busy.
type ListenConfig struct {
	Host     string
	Port     int
	Fallback bool
}

// Listen binds the preferred address, falling back to port 0 (any free
// port) when allowed.
func Listen(cfg ListenConfig) (net.Listener, error) {
	preferred := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	lis, err := net.Listen("tcp", preferred)
	if err == nil {
		return lis, nil
	}
	if !cfg.Fallback {
		return nil, fmt.Errorf("listen on %s: %w", preferred, err)
	}

	slog.Warn("preferred port unavailable, picking a free port", "addr", preferred, "err", err)

	lis, ferr := net.Listen("tcp", net.JoinHostPort(cfg.Host, "0"))
	if ferr != nil {
		return nil, fmt.Errorf("listen on %s: %w (fallback: %v)", preferred, err, ferr)
	}
	return lis, nil
}
