package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"
	"github.com/xplshn/tracerr2"
)

func newApp(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:      "pserve",
		Usage:     "A static file server with CORS for local web development",
		ArgsUsage: "[port]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: defaultHost, Usage: "Address to bind"},
			&cli.StringFlag{Name: "dir", Value: ".", Usage: "Directory to serve"},
			&cli.StringFlag{Name: "theme", Value: "gruvbox-dark", Usage: "Color theme for directory listings"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := buildConfig(cmd)
			if err != nil {
				return err
			}

			access := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
			srv, err := NewServer(cfg, logger, access)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv.OnReady = func() { printBanner(os.Stdout, cfg) }
			return srv.Run(ctx)
		},
	}
}

// buildConfig turns the CLI surface into the server config. The single
// optional argument is a port override.
func buildConfig(cmd *cli.Command) (Config, error) {
	cfg := Config{
		Host:  cmd.String("host"),
		Port:  defaultPort,
		Theme: cmd.String("theme"),
	}

	args := cmd.Args()
	switch {
	case args.Len() > 1:
		return Config{}, fmt.Errorf("expected at most one argument, got %d", args.Len())
	case args.Len() == 1:
		port, err := parsePort(args.First())
		if err != nil {
			return Config{}, err
		}
		cfg.Port = port
	}

	root, err := resolveRoot(cmd.String("dir"))
	if err != nil {
		return Config{}, err
	}
	cfg.Root = root

	return cfg, nil
}

func printBanner(w io.Writer, cfg Config) {
	sep := strings.Repeat("=", 50)
	fmt.Fprintln(w, sep)
	fmt.Fprintln(w, color.GreenString("pserve ready"))
	fmt.Fprintf(w, "  Local:   http://localhost:%d\n", cfg.Port)
	if cfg.Host == defaultHost {
		if ip := localIP(); ip != "" {
			fmt.Fprintf(w, "  Network: http://%s:%d\n", ip, cfg.Port)
		}
	} else {
		fmt.Fprintf(w, "  Network: http://%s\n", cfg.Addr())
	}
	fmt.Fprintf(w, "  Serving: %s\n", cfg.Root)
	fmt.Fprintln(w, sep)
	fmt.Fprintln(w, "Press Ctrl+C to stop")
}

// localIP finds a non-loopback IPv4 for the banner's network URL.
func localIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			return ip4.String()
		}
	}
	return ""
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := newApp(logger).Run(context.Background(), os.Args); err != nil {
		if e, ok := err.(*tracerr.Error); ok {
			e.Print()
		} else {
			logger.Error("pserve failed", "error", err)
		}
		os.Exit(1)
	}
}
