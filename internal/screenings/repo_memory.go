package screenings

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Snapshot // sessionId -> snapshot
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]Snapshot),
	}
}

// Replace stores/overwrites the snapshot for a session.
func (r *MemoryRepo) Replace(ctx context.Context, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if snap.SessionID == "" {
		return ErrInvalidInput
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[snap.SessionID] = snap.clone()
	return nil
}

// Get returns the snapshot for a session.
func (r *MemoryRepo) Get(ctx context.Context, sessionID string) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap, ok := r.data[sessionID]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	return snap.clone(), nil
}

// Discard removes the snapshot for a session.
func (r *MemoryRepo) Discard(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, sessionID)
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
