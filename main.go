package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"

	"github.com/briangreenhill/mapty/internal/cli"
	"github.com/briangreenhill/mapty/internal/config"
	"github.com/briangreenhill/mapty/internal/store"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command. Command output goes to stdout and logs to
// stderr. It returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{}))

	fs := flag.NewFlagSet("mapty", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", os.Getenv("MAPTY_CONFIG"), "path to a YAML config file")
	if err := fs.Parse(args); err != nil {
		logger.Error("Error parsing flags", slog.Any("error", err))
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("Error loading config", slog.Any("error", err))
		return 1
	}

	ctx := context.Background()
	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Error opening store", slog.String("driver", cfg.Store.Driver), slog.Any("error", err))
		return 1
	}
	defer st.Close()

	if err := cli.NewCLI(stdout, st, cfg, logger).Run(ctx, fs.Args()); err != nil {
		logger.Error("Error running mapty", slog.Any("error", err))
		return 1
	}
	return 0
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (store.Store, error) {
	switch cfg.Store.Driver {
	case "redis":
		r := store.NewRedis(cfg.Store.RedisAddr, cfg.Store.RedisPassword)
		if err := r.Ping(ctx); err != nil {
			r.Close()
			return nil, err
		}
		return r, nil
	case "memory":
		return store.NewMemory(), nil
	default:
		return store.OpenSQLite(ctx, cfg.Store.Path, logger)
	}
}
