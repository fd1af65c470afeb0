package export

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/payments-engine/internal/model"
)

// SnapshotStore writes a run's final account balances into a SQLite
// database. The snapshot is an alternative output target: it is written once
// at the end of a successful run and never read back by the engine.
type SnapshotStore struct {
	db *sql.DB
}

// NewSnapshotStore wraps an open database handle.
func NewSnapshotStore(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// InitSchema creates the snapshot tables if they do not exist.
func (s *SnapshotStore) InitSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		input_path TEXT NOT NULL,
		clients INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	CREATE TABLE IF NOT EXISTS accounts (
		run_id TEXT NOT NULL REFERENCES runs(id),
		client INTEGER NOT NULL,
		available REAL NOT NULL,
		held REAL NOT NULL,
		total REAL NOT NULL,
		locked BOOLEAN NOT NULL,
		PRIMARY KEY (run_id, client)
	);`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create snapshot schema: %w", err)
	}
	return nil
}

// WriteRun stores the run row and every account atomically.
func (s *SnapshotStore) WriteRun(ctx context.Context, runID, inputPath string, accounts []model.Account) error {
	if runID == "" {
		return fmt.Errorf("run ID is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, input_path, clients, created_at) VALUES (?, ?, ?, ?)`,
		runID, inputPath, len(accounts), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO accounts (run_id, client, available, held, total, locked) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare account insert: %w", err)
	}
	defer stmt.Close()

	for _, account := range accounts {
		_, err = stmt.ExecContext(ctx,
			runID, account.Client, account.Available, account.Held, account.Total, account.Locked)
		if err != nil {
			return fmt.Errorf("failed to insert account %d: %w", account.Client, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	return nil
}
