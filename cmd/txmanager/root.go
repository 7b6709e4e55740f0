package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/damon-houk/transaction-manager/internal/application/dialogue"
	"github.com/damon-houk/transaction-manager/internal/application/service"
	"github.com/damon-houk/transaction-manager/internal/infrastructure/cache"
	"github.com/damon-houk/transaction-manager/internal/infrastructure/codec"
	"github.com/damon-houk/transaction-manager/internal/infrastructure/config"
	"github.com/damon-houk/transaction-manager/internal/infrastructure/console"
	"github.com/damon-houk/transaction-manager/internal/infrastructure/db"
	"github.com/damon-houk/transaction-manager/internal/infrastructure/logger"
	"github.com/damon-houk/transaction-manager/internal/infrastructure/middleware"
	"github.com/spf13/cobra"
)

type options struct {
	configFile string
	envFile    string
	store      string
	logLevel   string
	verbose    bool
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "txmanager",
		Short: "Register and look up transactions from the console",
		Long: `txmanager reads commands from standard input, one per line.

Commands:
  add   register a transaction (prompts for id, date dd.mm.yyyy, amount #.##)
  get   print a registered transaction by id
  exit  end the session

Transactions are kept in memory for the lifetime of the process.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configFile, "config", "", "path to a YAML configuration file")
	cmd.Flags().StringVar(&opts.envFile, "env-file", "", "path to a .env file (default is .env if present)")
	cmd.Flags().StringVar(&opts.store, "store", "", "store backend: memory, badger or sqlite")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "shorthand for --log-level=debug")

	return cmd
}

func run(cmd *cobra.Command, opts *options) error {
	cfg, err := config.Load(opts.configFile, opts.envFile)
	if err != nil {
		return err
	}

	// Flags win over file and environment
	if opts.store != "" {
		cfg.Store.Backend = opts.store
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, closeLog, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()
	logger.SetDefaultLogger(log)

	repo, closeRepo, err := db.OpenTransactionRepository(cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if err := closeRepo(); err != nil {
			log.Error("Error closing store", map[string]interface{}{"error": err.Error()})
		}
	}()

	if cfg.Store.CacheTTL > 0 {
		repo = cache.NewCachedTransactionRepository(repo, cfg.Store.CacheTTL)
	}

	sessionID := middleware.NewSessionID()
	sessionLog := log.WithFields(map[string]interface{}{
		"session_id": sessionID,
		"store":      cfg.Store.Backend,
	})

	processor := dialogue.NewProcessor(
		service.NewTransactionService(repo, sessionLog),
		codec.NewJSONSerializer(),
		dialogue.WithLogger(sessionLog),
	)

	handler := middleware.Chain(
		middleware.LineHandlerFunc(processor.Bind(&dialogue.State{})),
		middleware.SessionIDMiddleware(sessionID),
		middleware.LoggingMiddleware(log),
		middleware.RecoveryMiddleware(log),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return console.NewShell(cmd.InOrStdin(), cmd.OutOrStdout(), handler, sessionLog).Run(ctx)
}

func newLogger(cfg config.LogConfig) (logger.Logger, func() error, error) {
	level, err := logger.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	var (
		out     io.Writer
		closeFn = func() error { return nil }
	)

	switch cfg.Output {
	case "stderr":
		out = os.Stderr
	case "stdout":
		out = os.Stdout
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
		closeFn = f.Close
	}

	return logger.NewJSONLogger(out, level), closeFn, nil
}
