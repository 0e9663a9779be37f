package persist

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
)

// pgOpTimeout bounds each snapshot query. Snapshot traffic happens at
// startup and shutdown, never inside the frame loop.
const pgOpTimeout = 5 * time.Second

// PGStore keeps snapshots in Postgres, one row per scene path. Suits
// deployments where the engine host has no durable disk. Every write
// also appends a scene_history row in the same transaction, so the
// save audit trail can never disagree with the stored snapshot.
type PGStore struct {
	db *DB
}

func NewPGStore(db *DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Read(path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), pgOpTimeout)
	defer cancel()

	var data []byte
	err := s.db.Pool.QueryRow(ctx,
		`SELECT data FROM scenes WHERE path = $1`, path,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("scene %s: %w", path, os.ErrNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("select scene %s: %w", path, err)
	}
	return data, nil
}

func (s *PGStore) Write(path string, data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), pgOpTimeout)
	defer cancel()

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin scene write: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO scenes (path, data, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (path)
		 DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		path, data,
	); err != nil {
		return fmt.Errorf("upsert scene %s: %w", path, err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO scene_history (path, size) VALUES ($1, $2)`,
		path, len(data),
	); err != nil {
		return fmt.Errorf("record scene history %s: %w", path, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit scene write %s: %w", path, err)
	}
	return nil
}
