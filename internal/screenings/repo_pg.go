package screenings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"screening-backend/internal/identity"
	"screening-backend/internal/ranking"
)

// PGRepo implements Repo using Postgres. Each session owns a single row.
type PGRepo struct {
	DB *sql.DB
}

// Replace upserts the session row so that only the latest snapshot remains.
func (r *PGRepo) Replace(ctx context.Context, snap Snapshot) error {
	if snap.SessionID == "" {
		return ErrInvalidInput
	}
	const query = `
INSERT INTO screening_sessions (session_id, job_description, ranked_entries, identities, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5)
ON CONFLICT (session_id) DO UPDATE SET
	job_description = EXCLUDED.job_description,
	ranked_entries = EXCLUDED.ranked_entries,
	identities = EXCLUDED.identities,
	created_at = EXCLUDED.created_at,
	updated_at = EXCLUDED.updated_at`

	entries, err := marshalJSONB(snap.Entries, "[]")
	if err != nil {
		return fmt.Errorf("marshal ranked entries: %w", err)
	}
	identities, err := marshalJSONB(snap.Identities, "{}")
	if err != nil {
		return fmt.Errorf("marshal identities: %w", err)
	}

	_, err = r.DB.ExecContext(ctx, query,
		snap.SessionID,
		snap.JobDescription,
		entries,
		identities,
		snap.CreatedAt,
	)
	return err
}

// Get loads the snapshot for a session.
func (r *PGRepo) Get(ctx context.Context, sessionID string) (Snapshot, error) {
	const query = `
SELECT session_id, job_description, ranked_entries, identities, created_at
FROM screening_sessions
WHERE session_id = $1`

	var snap Snapshot
	var entries sql.NullString
	var identities sql.NullString
	err := r.DB.QueryRowContext(ctx, query, sessionID).Scan(
		&snap.SessionID,
		&snap.JobDescription,
		&entries,
		&identities,
		&snap.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{}, ErrNotFound
		}
		return Snapshot{}, err
	}

	snap.Entries = []ranking.Entry{}
	if entries.Valid && entries.String != "" {
		if err := json.Unmarshal([]byte(entries.String), &snap.Entries); err != nil {
			return Snapshot{}, fmt.Errorf("decode ranked entries: %w", err)
		}
	}
	snap.Identities = map[string]identity.Identity{}
	if identities.Valid && identities.String != "" {
		if err := json.Unmarshal([]byte(identities.String), &snap.Identities); err != nil {
			return Snapshot{}, fmt.Errorf("decode identities: %w", err)
		}
	}
	return snap, nil
}

// Discard deletes the session row.
func (r *PGRepo) Discard(ctx context.Context, sessionID string) error {
	const query = `DELETE FROM screening_sessions WHERE session_id = $1`
	_, err := r.DB.ExecContext(ctx, query, sessionID)
	return err
}

func marshalJSONB(value any, empty string) ([]byte, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return []byte(empty), nil
	}
	return b, nil
}

var _ Repo = (*PGRepo)(nil)
