package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/OCharnyshevich/mc-attributes/internal/server/config"
)

// Store persists entity snapshots.
type Store interface {
	// SaveEntities replaces the stored entity set with entities.
	SaveEntities(ctx context.Context, entities []*EntityData) error
	// LoadEntities returns every stored entity ordered by entity ID.
	LoadEntities(ctx context.Context) ([]*EntityData, error)
	Close() error
}

// Open returns the Store selected by cfg.Storage.
func Open(cfg *config.Config, log *slog.Logger) (Store, error) {
	switch cfg.Storage {
	case config.StorageSQLite:
		return OpenSQLite(filepath.Join(cfg.DataDir, "entities.db"), log)
	case config.StorageFile, "":
		return NewFileStore(cfg.DataDir, log)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
}

// FileStore keeps one JSON file per entity under <dir>/entities.
type FileStore struct {
	dir string
	log *slog.Logger
}

// NewFileStore creates a FileStore rooted at dir, creating subdirectories as needed.
func NewFileStore(dir string, log *slog.Logger) (*FileStore, error) {
	dirs := []string{
		dir,
		filepath.Join(dir, "entities"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", d, err)
		}
	}
	return &FileStore{dir: dir, log: log.With("store", "file")}, nil
}

func (s *FileStore) entitiesDir() string { return filepath.Join(s.dir, "entities") }

// SaveEntities writes entities/<uuid>.json for every entity and removes
// files of entities that are no longer present.
func (s *FileStore) SaveEntities(ctx context.Context, entities []*EntityData) error {
	keep := make(map[string]struct{}, len(entities))
	for _, ed := range entities {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := ed.UUID + ".json"
		keep[name] = struct{}{}
		if err := s.atomicWriteJSON(filepath.Join(s.entitiesDir(), name), ed); err != nil {
			return fmt.Errorf("save entity %s: %w", ed.UUID, err)
		}
	}

	files, err := os.ReadDir(s.entitiesDir())
	if err != nil {
		return fmt.Errorf("list entities: %w", err)
	}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		if _, ok := keep[f.Name()]; ok {
			continue
		}
		if err := os.Remove(filepath.Join(s.entitiesDir(), f.Name())); err != nil {
			return fmt.Errorf("remove stale entity %s: %w", f.Name(), err)
		}
	}

	s.log.Debug("saved entities", "count", len(entities))
	return nil
}

// LoadEntities reads every entities/*.json file.
func (s *FileStore) LoadEntities(ctx context.Context) ([]*EntityData, error) {
	files, err := os.ReadDir(s.entitiesDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list entities: %w", err)
	}

	var out []*EntityData
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		path := filepath.Join(s.entitiesDir(), f.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read entity %s: %w", f.Name(), err)
		}
		var ed EntityData
		if err := json.Unmarshal(data, &ed); err != nil {
			return nil, fmt.Errorf("parse entity %s: %w", f.Name(), err)
		}
		out = append(out, &ed)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].EntityID < out[j].EntityID })
	return out, nil
}

// Close is a no-op for file storage.
func (s *FileStore) Close() error { return nil }

// atomicWriteJSON marshals v to JSON and writes it atomically using a temp file + rename.
func (s *FileStore) atomicWriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
