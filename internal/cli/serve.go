package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/evgd/stackd/internal/config"
	"github.com/evgd/stackd/internal/journal"
	"github.com/evgd/stackd/internal/server"
	"github.com/evgd/stackd/internal/stack"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	ConfigPath string
	Journal    string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the stackd daemon",
		Long: `Run the stackd daemon.

The daemon binds a Unix domain socket and serves the shared stack until
interrupted. Capacities, socket path, and log level come from the YAML
config file; --socket and --journal override it when given. With a
journal path, every operation is appended to a SQLite log readable with
the trace and verify commands.

Example:
  stackd serve
  stackd serve --config /etc/stackd.yaml
  stackd serve --socket /tmp/stackd.sock --journal /var/lib/stackd/journal.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite operation journal")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load config", err)
	}
	if f := cmd.Flag("socket"); f != nil && f.Changed {
		cfg.Socket = opts.Socket
	}
	if opts.Journal != "" {
		cfg.Journal = opts.Journal
	}

	level := parseLogLevel(cfg.LogLevel)
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	store := stack.NewWithLimits(cfg.DefaultCapacity, cfg.MaxCapacity)
	serverOpts := []server.Option{server.WithLogger(logger)}

	var (
		rec     *journal.Recorder
		recDone chan error
	)
	if cfg.Journal != "" {
		jnl, err := journal.Open(cfg.Journal)
		if err != nil {
			return WrapExitError(ExitCommandError, "open journal", err)
		}
		defer func() {
			if closeErr := jnl.Close(); closeErr != nil {
				logger.Error("close journal", "error", closeErr)
			}
		}()

		rec, err = journal.NewRecorder(context.Background(), jnl)
		if err != nil {
			return WrapExitError(ExitCommandError, "start journal recorder", err)
		}
		recDone = make(chan error, 1)
		// The recorder outlives cancellation: sessions still journal
		// their teardown while the server drains, so the writer is shut
		// down explicitly after Serve returns.
		go func() { recDone <- rec.Run(context.Background()) }()
		serverOpts = append(serverOpts, server.WithRecorder(rec))
		logger.Info("journaling enabled", "path", cfg.Journal)
	}

	srv := server.New(cfg.Socket, store, serverOpts...)
	if err := srv.Listen(); err != nil {
		return WrapExitError(ExitCommandError, "bind socket", err)
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "stackd listening on %s\n", cfg.Socket)
	serveErr := srv.Serve(ctx)

	if rec != nil {
		rec.Close()
		if err := <-recDone; err != nil {
			logger.Error("journal writer failed", "error", err)
		}
	}

	if serveErr != nil {
		return WrapExitError(ExitFailure, "server error", serveErr)
	}
	logger.Info("daemon stopped")
	return nil
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
