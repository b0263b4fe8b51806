// Package sqlite provides a SQLite-backed draw journal implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/entropy.space/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/entropy.space/internal/services/sampling/storage"
	"github.com/louisbranch/entropy.space/internal/services/sampling/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

const defaultListLimit = 50

// Store persists draw records in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite journal and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// AppendDraw inserts one draw record.
func (s *Store) AppendDraw(ctx context.Context, record storage.DrawRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id := strings.TrimSpace(record.ID)
	if id == "" {
		return fmt.Errorf("draw id is required")
	}
	if record.Kind == "" {
		return fmt.Errorf("draw kind is required")
	}
	createdAt := record.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO draws (id, kind, seed, seed_source, payload, created_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		id,
		string(record.Kind),
		// Seeds are stored as decimal strings: SQLite integers are
		// signed and would mangle the upper half of the uint64 range.
		strconv.FormatUint(record.Seed, 10),
		string(record.SeedSource),
		record.Payload,
		createdAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert draw: %w", err)
	}
	return nil
}

// GetDraw fetches one draw record by id.
func (s *Store) GetDraw(ctx context.Context, id string) (storage.DrawRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.DrawRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.DrawRecord{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.DrawRecord{}, fmt.Errorf("draw id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, kind, seed, seed_source, payload, created_at
FROM draws WHERE id = ?`, id)
	record, err := scanDraw(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.DrawRecord{}, storage.ErrNotFound
		}
		return storage.DrawRecord{}, fmt.Errorf("get draw: %w", err)
	}
	return record, nil
}

// ListDraws returns draw records, newest first.
func (s *Store) ListDraws(ctx context.Context, filter storage.ListFilter) ([]storage.DrawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `
SELECT id, kind, seed, seed_source, payload, created_at
FROM draws`
	args := []any{}
	if filter.Kind != "" {
		query += " WHERE kind = ?"
		args = append(args, string(filter.Kind))
	}
	query += " ORDER BY created_at DESC, id LIMIT ?"
	args = append(args, limit)

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list draws: %w", err)
	}
	defer rows.Close()

	var records []storage.DrawRecord
	for rows.Next() {
		record, err := scanDraw(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan draw: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate draws: %w", err)
	}
	return records, nil
}

func scanDraw(scan func(dest ...any) error) (storage.DrawRecord, error) {
	var (
		record    storage.DrawRecord
		kind      string
		seed      string
		source    string
		createdAt int64
	)
	if err := scan(&record.ID, &kind, &seed, &source, &record.Payload, &createdAt); err != nil {
		return storage.DrawRecord{}, err
	}
	parsedSeed, err := strconv.ParseUint(seed, 10, 64)
	if err != nil {
		return storage.DrawRecord{}, fmt.Errorf("parse stored seed %q: %w", seed, err)
	}
	record.Kind = storage.DrawKind(kind)
	record.Seed = parsedSeed
	record.SeedSource = storage.SeedSource(source)
	record.CreatedAt = time.UnixMilli(createdAt).UTC()
	return record, nil
}
