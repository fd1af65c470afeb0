package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"

	"github.com/example/payments-engine/internal/config"
	"github.com/example/payments-engine/internal/csvio"
	"github.com/example/payments-engine/internal/engine"
	"github.com/example/payments-engine/internal/export"
	"github.com/example/payments-engine/internal/model"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.Default()

	cmd := &cobra.Command{
		Use:           "payments-engine <transactions.csv>",
		Short:         "Reconcile a transaction stream into final client balances",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.InputPath = args[0]
			return run(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&cfg.Workers, "workers", cfg.Workers, "number of worker goroutines")
	cmd.Flags().StringVar(&cfg.SnapshotPath, "snapshot", "", "also write final balances to this SQLite file")
	cmd.Flags().BoolVar(&cfg.Verbose, "verbose", false, "log engine progress to stderr")

	return cmd
}

// run executes one reconciliation pass. The result CSV reaches stdout only
// after the whole run has succeeded; every fatal path returns before any
// output is written.
func run(ctx context.Context, cfg config.Config, stdout io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	input, err := os.Open(cfg.InputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer input.Close()

	pool, err := engine.NewPool(cfg.Workers, logger)
	if err != nil {
		return err
	}

	runID := uuid.New().String()
	logger.Info("run starting", "run_id", runID, "input", cfg.InputPath, "workers", cfg.Workers)

	ledgers, err := pool.Run(csvio.NewReader(input))
	if err != nil {
		return err
	}

	accounts := make([]model.Account, 0, len(ledgers))
	for _, ledger := range ledgers {
		accounts = append(accounts, ledger.Account())
	}

	if cfg.SnapshotPath != "" {
		if err := writeSnapshot(ctx, cfg.SnapshotPath, runID, cfg.InputPath, accounts); err != nil {
			return err
		}
	}

	if err := csvio.WriteAccounts(stdout, accounts); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	logger.Info("run complete", "run_id", runID, "clients", len(accounts))
	return nil
}

func writeSnapshot(ctx context.Context, path, runID, inputPath string, accounts []model.Account) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("open snapshot database: %w", err)
	}
	defer db.Close()

	store := export.NewSnapshotStore(db)
	if err := store.InitSchema(ctx); err != nil {
		return err
	}

	return store.WriteRun(ctx, runID, inputPath, accounts)
}
