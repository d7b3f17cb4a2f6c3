package screenings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"screening-backend/internal/shared/util"
)

// FileRepo stores one JSON document per session under Dir. It backs the CLI, where
// the two phases run as separate processes.
type FileRepo struct {
	Dir string
	mu  sync.Mutex
}

// NewFileRepo constructs a FileRepo rooted at dir.
func NewFileRepo(dir string) *FileRepo {
	return &FileRepo{Dir: dir}
}

func (r *FileRepo) path(sessionID string) string {
	return filepath.Join(r.Dir, util.HashKey(sessionID)+".json")
}

// Replace writes the snapshot, replacing any previous file atomically.
func (r *FileRepo) Replace(ctx context.Context, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if snap.SessionID == "" {
		return ErrInvalidInput
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp, err := os.CreateTemp(r.Dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path(snap.SessionID)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store snapshot: %w", err)
	}
	return nil
}

// Get reads the snapshot for a session.
func (r *FileRepo) Get(ctx context.Context, sessionID string) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	r.mu.Lock()
	data, err := os.ReadFile(r.path(sessionID))
	r.mu.Unlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Snapshot{}, ErrNotFound
		}
		return Snapshot{}, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

// Discard removes the session file.
func (r *FileRepo) Discard(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := os.Remove(r.path(sessionID)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

var _ Repo = (*FileRepo)(nil)
