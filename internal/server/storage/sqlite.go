package storage

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	_ "modernc.org/sqlite"

	"github.com/OCharnyshevich/mc-attributes/internal/server/storage/migrations"
)

// encMode produces deterministic CBOR for entity payloads.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}
}

// SQLiteStore keeps entity snapshots in a SQLite database, one row per
// entity with the snapshot CBOR-encoded in the payload column.
type SQLiteStore struct {
	db  *sql.DB
	log *slog.Logger
}

// OpenSQLite opens (or creates) the database at path and applies migrations.
func OpenSQLite(path string, log *slog.Logger) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLiteStore{db: db, log: log.With("store", "sqlite")}, nil
}

// SaveEntities replaces all rows with entities in one transaction.
func (s *SQLiteStore) SaveEntities(ctx context.Context, entities []*EntityData) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entities`); err != nil {
		return fmt.Errorf("clear entities: %w", err)
	}

	now := time.Now().UTC().UnixMilli()
	for _, ed := range entities {
		payload, err := encMode.Marshal(ed)
		if err != nil {
			return fmt.Errorf("encode entity %s: %w", ed.UUID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO entities (uuid, entity_id, kind, payload, saved_at) VALUES (?, ?, ?, ?, ?)`,
			ed.UUID, ed.EntityID, ed.Kind, payload, now,
		); err != nil {
			return fmt.Errorf("insert entity %s: %w", ed.UUID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit entities: %w", err)
	}
	s.log.Debug("saved entities", "count", len(entities))
	return nil
}

// LoadEntities decodes every stored entity ordered by entity ID.
func (s *SQLiteStore) LoadEntities(ctx context.Context) ([]*EntityData, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT uuid, payload FROM entities ORDER BY entity_id`)
	if err != nil {
		return nil, fmt.Errorf("query entities: %w", err)
	}
	defer rows.Close()

	var out []*EntityData
	for rows.Next() {
		var (
			id      string
			payload []byte
		)
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("scan entity: %w", err)
		}
		var ed EntityData
		if err := cbor.Unmarshal(payload, &ed); err != nil {
			return nil, fmt.Errorf("decode entity %s: %w", id, err)
		}
		out = append(out, &ed)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entities: %w", err)
	}
	return out, nil
}

// Close closes the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// applyMigrations executes each embedded .sql file once, in name order.
func applyMigrations(db *sql.DB, migrationFS fs.FS) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
)`); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	entries, err := fs.ReadDir(migrationFS, ".")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		var applied int
		if err := db.QueryRow(`SELECT COUNT(1) FROM schema_migrations WHERE name = ?`, name).Scan(&applied); err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if applied > 0 {
			continue
		}

		content, err := fs.ReadFile(migrationFS, name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (name, applied_at) VALUES (?, ?)`, name, time.Now().UTC().UnixMilli()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", name, err)
		}
	}
	return nil
}
