package persist

import (
	"context"
	"time"
)

// HistoryEntry is one recorded scene save.
type HistoryEntry struct {
	ID      int64
	Path    string
	Size    int
	SavedAt time.Time
}

// HistoryRepo reads the save audit trail kept by the postgres backend.
type HistoryRepo struct {
	db *DB
}

func NewHistoryRepo(db *DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

// Recent returns the latest saves for a scene path, newest first.
func (r *HistoryRepo) Recent(ctx context.Context, path string, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, path, size, saved_at
		 FROM scene_history
		 WHERE path = $1
		 ORDER BY saved_at DESC, id DESC
		 LIMIT $2`, path, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.Path, &e.Size, &e.SavedAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
