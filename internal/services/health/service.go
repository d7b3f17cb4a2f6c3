package health

import (
	"context"
	"database/sql"
	"time"

	"screening-backend/internal/shared/storage/db"
)

// Status is the payload served by the health endpoint.
type Status struct {
	OK                 bool   `json:"ok"`
	SessionStore       string `json:"sessionStore"`
	Database           string `json:"database,omitempty"`
	EmbeddingProvider  string `json:"embeddingProvider"`
	CalendarConfigured bool   `json:"calendarConfigured"`
}

// Service encapsulates health-related checks.
type Service struct {
	DB                 *sql.DB
	SessionStore       string
	EmbeddingProvider  string
	CalendarConfigured bool
	PingTimeout        time.Duration
}

// NewService constructs a new health service.
func NewService(database *sql.DB, sessionStore, embeddingProvider string, calendarConfigured bool) *Service {
	return &Service{
		DB:                 database,
		SessionStore:       sessionStore,
		EmbeddingProvider:  embeddingProvider,
		CalendarConfigured: calendarConfigured,
		PingTimeout:        2 * time.Second,
	}
}

// Status reports the configured collaborators. OK is false only when a configured
// database cannot be reached.
func (s *Service) Status(ctx context.Context) Status {
	st := Status{
		OK:                 true,
		SessionStore:       s.SessionStore,
		EmbeddingProvider:  s.EmbeddingProvider,
		CalendarConfigured: s.CalendarConfigured,
	}
	if s.DB != nil {
		if err := db.Ping(ctx, s.DB, s.PingTimeout); err != nil {
			st.OK = false
			st.Database = "unreachable"
		} else {
			st.Database = "ok"
		}
	}
	return st
}
