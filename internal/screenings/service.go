package screenings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"screening-backend/internal/extract"
	"screening-backend/internal/identity"
	"screening-backend/internal/ranking"
	"screening-backend/internal/scheduling"
	"screening-backend/internal/shared/metrics"
	"screening-backend/internal/shared/telemetry"
)

// ErrRankingFailed wraps failures that abort an analyze, such as the job description
// failing to embed.
var ErrRankingFailed = errors.New("ranking failed")

// DocumentParser turns an uploaded document into plain text.
type DocumentParser interface {
	Parse(ctx context.Context, data []byte, fileName string) (string, error)
}

// Scheduler books interviews for selected candidates.
type Scheduler interface {
	ScheduleAll(ctx context.Context, selected []string, identities map[string]identity.Identity) ([]scheduling.Result, error)
}

// Service runs the two screening phases against per-session state.
type Service struct {
	Repo      Repo
	Parser    DocumentParser
	Ranker    *ranking.Ranker
	Scheduler Scheduler
	Now       func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Analyze extracts, identifies and ranks the uploaded documents against jobDescription and
// stores the result as the session's only snapshot. A failed analyze leaves the previous
// snapshot in place.
func (s *Service) Analyze(ctx context.Context, sessionID, jobDescription string, uploads []Upload) (Snapshot, error) {
	if strings.TrimSpace(sessionID) == "" {
		return Snapshot{}, fmt.Errorf("%w: session id required", ErrInvalidInput)
	}
	if strings.TrimSpace(jobDescription) == "" {
		return Snapshot{}, fmt.Errorf("%w: job description is required", ErrInvalidInput)
	}
	seen := make(map[string]struct{}, len(uploads))
	for _, u := range uploads {
		if strings.TrimSpace(u.FileName) == "" {
			return Snapshot{}, fmt.Errorf("%w: file name is required", ErrInvalidInput)
		}
		if _, dup := seen[u.FileName]; dup {
			return Snapshot{}, fmt.Errorf("%w: duplicate file name %q", ErrInvalidInput, u.FileName)
		}
		seen[u.FileName] = struct{}{}
	}

	start := time.Now()
	docs := make([]ranking.Document, 0, len(uploads))
	identities := make(map[string]identity.Identity, len(uploads))
	for _, u := range uploads {
		text := s.extractText(ctx, sessionID, u)
		docs = append(docs, ranking.Document{FileName: u.FileName, Text: text})
		identities[u.FileName] = identity.FromText(u.FileName, text)
	}

	entries, err := s.Ranker.Rank(ctx, jobDescription, docs)
	if err != nil {
		metrics.IncScreeningFailed()
		telemetry.Error("screening.analyze_failed", map[string]any{
			"session_id": sessionID,
			"documents":  len(uploads),
			"error":      err,
		})
		return Snapshot{}, fmt.Errorf("%w: %w", ErrRankingFailed, err)
	}

	snap := Snapshot{
		SessionID:      sessionID,
		JobDescription: jobDescription,
		Entries:        entries,
		Identities:     identities,
		CreatedAt:      s.now(),
	}
	if err := s.Repo.Replace(ctx, snap); err != nil {
		metrics.IncScreeningFailed()
		return Snapshot{}, fmt.Errorf("store snapshot: %w", err)
	}

	durationMs := float64(time.Since(start).Microseconds()) / 1000.0
	metrics.IncScreeningAnalyzed()
	metrics.AddDocumentsRanked(len(entries))
	metrics.ObserveAnalyzeDurationMs(durationMs)
	telemetry.Info("screening.analyze", map[string]any{
		"session_id":  sessionID,
		"documents":   len(uploads),
		"duration_ms": durationMs,
	})
	return snap, nil
}

func (s *Service) extractText(ctx context.Context, sessionID string, u Upload) string {
	if s.Parser == nil {
		return ""
	}
	text, err := s.Parser.Parse(ctx, u.Data, u.FileName)
	if err == nil {
		return text
	}
	metrics.IncDocumentUnreadable()
	if errors.Is(err, extract.ErrUnsupportedFormat) {
		telemetry.Info("document.unsupported_format", map[string]any{
			"session_id": sessionID,
			"file_name":  u.FileName,
		})
		return ""
	}
	telemetry.Error("document.extract_failed", map[string]any{
		"session_id": sessionID,
		"file_name":  u.FileName,
		"size_bytes": len(u.Data),
		"error":      err,
	})
	return ""
}

// ConfirmAndSchedule books interviews for the selected file names using the session's
// latest snapshot. An empty session yields no results and no error.
func (s *Service) ConfirmAndSchedule(ctx context.Context, sessionID string, selected []string) ([]scheduling.Result, error) {
	snap, err := s.Repo.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			telemetry.Info("screening.confirm_empty", map[string]any{"session_id": sessionID})
			return []scheduling.Result{}, nil
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	names := make([]string, 0, len(selected))
	for _, name := range selected {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return []scheduling.Result{}, nil
	}
	if s.Scheduler == nil {
		return nil, scheduling.ErrCalendarUnavailable
	}

	results, err := s.Scheduler.ScheduleAll(ctx, names, snap.Identities)
	if err != nil {
		return nil, err
	}

	scheduled := 0
	for _, r := range results {
		if r.Succeeded() {
			scheduled++
		}
	}
	telemetry.Info("screening.confirm", map[string]any{
		"session_id": sessionID,
		"selected":   len(names),
		"scheduled":  scheduled,
		"failed":     len(results) - scheduled,
	})
	return results, nil
}

// Current returns the session's snapshot, or ErrNotFound when the session is empty.
func (s *Service) Current(ctx context.Context, sessionID string) (Snapshot, error) {
	if strings.TrimSpace(sessionID) == "" {
		return Snapshot{}, fmt.Errorf("%w: session id required", ErrInvalidInput)
	}
	return s.Repo.Get(ctx, sessionID)
}

// Reset returns the session to the empty phase.
func (s *Service) Reset(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("%w: session id required", ErrInvalidInput)
	}
	return s.Repo.Discard(ctx, sessionID)
}
