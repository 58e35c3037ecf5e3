package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
)

const (
	defaultHost = "0.0.0.0"
	defaultPort = 3000

	minPort = 1024
	maxPort = 65535
)

var (
	errPortNotNumber = errors.New("port must be a number")
	errPortRange     = errors.New("port must be between 1024 and 65535")
)

// Config is built once in main and never changed after Run starts.
type Config struct {
	Host  string
	Port  int
	Root  string
	Theme string
}

func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// parsePort validates a port override from the command line. Non-numeric
// and out-of-range input fail with distinct errors.
func parsePort(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errPortNotNumber, s)
	}
	if n < minPort || n > maxPort {
		return 0, fmt.Errorf("%w: got %d", errPortRange, n)
	}
	return n, nil
}

// resolveRoot makes the serving root absolute and checks it is a directory.
func resolveRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("cannot resolve directory %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("cannot serve %q: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("cannot serve %q: not a directory", dir)
	}
	return abs, nil
}
