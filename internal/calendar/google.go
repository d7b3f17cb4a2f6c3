package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"screening-backend/internal/shared/telemetry"
)

const (
	DefaultCalendarID = "primary"
	summaryPrefix     = "Interview with "
)

// ErrNotConfigured is returned when the credentials or token file is missing.
var ErrNotConfigured = errors.New("google calendar not configured")

// Options controls where and how events are created.
type Options struct {
	CalendarID string
	// Location is the time zone events are expressed in. Nil keeps the zone of the given times.
	Location *time.Location
}

// Client creates interview events in a Google Calendar.
type Client struct {
	events     *gcal.EventsService
	calendarID string
	location   *time.Location
}

// New builds a Client from an authorized HTTP client. Extra options are passed to the
// Calendar service constructor.
func New(ctx context.Context, httpClient *http.Client, opts Options, extra ...option.ClientOption) (*Client, error) {
	if httpClient == nil {
		return nil, errors.New("calendar: http client is required")
	}
	clientOpts := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, extra...)
	srv, err := gcal.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Calendar client: %w", err)
	}
	calendarID := strings.TrimSpace(opts.CalendarID)
	if calendarID == "" {
		calendarID = DefaultCalendarID
	}
	return &Client{events: srv.Events, calendarID: calendarID, location: opts.Location}, nil
}

// NewFromFiles builds a Client from an OAuth client secrets file and a cached token file.
// Refreshed tokens are written back to tokenFile.
func NewFromFiles(ctx context.Context, credentialsFile, tokenFile string, opts Options) (*Client, error) {
	if strings.TrimSpace(credentialsFile) == "" || strings.TrimSpace(tokenFile) == "" {
		return nil, ErrNotConfigured
	}
	cfg, err := OAuthConfig(credentialsFile)
	if err != nil {
		return nil, err
	}
	tok, err := LoadToken(tokenFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: token file %s not found, run calendar-auth", ErrNotConfigured, tokenFile)
		}
		return nil, err
	}

	src := &savingTokenSource{
		base: cfg.TokenSource(ctx, tok),
		path: tokenFile,
		last: tok.AccessToken,
	}
	return New(ctx, oauth2.NewClient(ctx, oauth2.ReuseTokenSource(tok, src)), opts)
}

// OAuthConfig reads an installed-app client secrets file scoped to calendar events.
func OAuthConfig(credentialsFile string) (*oauth2.Config, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: credentials file %s not found", ErrNotConfigured, credentialsFile)
		}
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}
	cfg, err := google.ConfigFromJSON(b, gcal.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}
	return cfg, nil
}

// AuthCodeURL returns the consent page URL for the installed-app flow.
func AuthCodeURL(cfg *oauth2.Config) string {
	return cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
}

// ExchangeAndSave trades an authorization code for a token and caches it at tokenFile.
func ExchangeAndSave(ctx context.Context, cfg *oauth2.Config, code, tokenFile string) error {
	tok, err := cfg.Exchange(ctx, strings.TrimSpace(code))
	if err != nil {
		return fmt.Errorf("unable to retrieve token from web: %w", err)
	}
	return SaveToken(tokenFile, tok)
}

// LoadToken reads a cached token.
func LoadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("decode token file %s: %w", path, err)
	}
	return tok, nil
}

// SaveToken writes a token to path with owner-only permissions.
func SaveToken(path string, tok *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache oauth token: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(tok)
}

type savingTokenSource struct {
	mu   sync.Mutex
	base oauth2.TokenSource
	path string
	last string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := SaveToken(s.path, tok); err != nil {
			telemetry.Warn("calendar.token_save_failed", map[string]any{"path": s.path, "error": err})
		}
	}
	return tok, nil
}

// ScheduleEvent creates a single-attendee event and returns its HTML link.
// The attendee is notified by the calendar provider.
func (c *Client) ScheduleEvent(ctx context.Context, email, name string, start, end time.Time) (string, error) {
	tz := ""
	if c.location != nil {
		start, end = start.In(c.location), end.In(c.location)
		if zone := c.location.String(); zone != "Local" {
			tz = zone
		}
	}

	event := &gcal.Event{
		Summary:     summaryPrefix + name,
		Description: "Interview scheduled for " + name + ".",
		Start:       &gcal.EventDateTime{DateTime: start.Format(time.RFC3339), TimeZone: tz},
		End:         &gcal.EventDateTime{DateTime: end.Format(time.RFC3339), TimeZone: tz},
		Attendees:   []*gcal.EventAttendee{{Email: email, DisplayName: name}},
		Reminders:   &gcal.EventReminders{UseDefault: true},
	}

	created, err := c.events.Insert(c.calendarID, event).SendUpdates("all").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("insert calendar event: %w", err)
	}
	return created.HtmlLink, nil
}
