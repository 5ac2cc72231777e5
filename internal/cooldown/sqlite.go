package cooldown

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SQLiteStore keeps a log of sent notifications in the notification_log table
type SQLiteStore struct {
	db     *sql.DB
	period time.Duration
}

// NewSQLiteStore creates a store on a database prepared by database.Open
func NewSQLiteStore(db *sql.DB, period time.Duration) *SQLiteStore {
	return &SQLiteStore{db: db, period: period}
}

// Allow implements Store
func (s *SQLiteStore) Allow(ctx context.Context, key string, now time.Time) (bool, error) {
	var last sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT MAX(sent_at) FROM notification_log WHERE key = ?", key,
	).Scan(&last)
	if err != nil {
		return false, fmt.Errorf("querying notification log: %w", err)
	}
	if !last.Valid {
		return true, nil
	}
	return elapsed(time.UnixMilli(last.Int64), now, s.period), nil
}

// MarkSent implements Store
func (s *SQLiteStore) MarkSent(ctx context.Context, key string, now time.Time) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO notification_log (id, key, sent_at) VALUES (?, ?, ?)",
		uuid.NewString(), key, now.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("recording notification: %w", err)
	}
	return nil
}

// Prune deletes log entries older than before and returns how many went
func (s *SQLiteStore) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM notification_log WHERE sent_at < ?", before.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("pruning notification log: %w", err)
	}
	return res.RowsAffected()
}
