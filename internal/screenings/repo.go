package screenings

import "context"

// Repo stores at most one Snapshot per session.
type Repo interface {
	// Replace stores snap as the session's only snapshot, discarding any previous one.
	Replace(ctx context.Context, snap Snapshot) error
	// Get returns the session's snapshot or ErrNotFound when the session is empty.
	Get(ctx context.Context, sessionID string) (Snapshot, error)
	// Discard returns the session to the empty phase.
	Discard(ctx context.Context, sessionID string) error
}
