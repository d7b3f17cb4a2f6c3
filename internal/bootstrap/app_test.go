package bootstrap_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"screening-backend/internal/bootstrap"
	"screening-backend/internal/shared/config"
	"screening-backend/internal/shared/server/middleware"
)

func devConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.Config{
		Port:                    "0",
		CORSAllowOrigin:         []string{"http://localhost:5173"},
		Env:                     "dev",
		SessionStore:            "memory",
		EmbeddingProvider:       "hashing",
		CalendarCredentialsFile: filepath.Join(dir, "credentials.json"),
		CalendarTokenFile:       filepath.Join(dir, "token.json"),
		InterviewTimezone:       "UTC",
	}
}

func TestBuildDevDefaults(t *testing.T) {
	gin.SetMode(gin.TestMode)
	app, err := bootstrap.Build(devConfig(t))
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	if app.DB != nil || app.Calendar != nil {
		t.Fatalf("expected no database and no calendar in dev defaults")
	}
	if app.ScreeningService.Scheduler != nil {
		t.Fatalf("expected no scheduler without calendar")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var st struct {
		OK                 bool   `json:"ok"`
		SessionStore       string `json:"sessionStore"`
		EmbeddingProvider  string `json:"embeddingProvider"`
		CalendarConfigured bool   `json:"calendarConfigured"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if !st.OK || st.SessionStore != "memory" || !strings.HasPrefix(st.EmbeddingProvider, "hashing") || st.CalendarConfigured {
		t.Fatalf("unexpected health %+v", st)
	}
}

func TestBuildRejectsBadConfig(t *testing.T) {
	cfg := devConfig(t)
	cfg.InterviewTimezone = "Mars/Olympus"
	if _, err := bootstrap.Build(cfg); err == nil {
		t.Fatalf("expected invalid time zone error")
	}

	cfg = devConfig(t)
	cfg.EmbeddingProvider = "word2vec"
	if _, err := bootstrap.Build(cfg); err == nil {
		t.Fatalf("expected unknown provider error")
	}

	cfg = devConfig(t)
	cfg.Env = "production"
	cfg.SessionSecret = ""
	if _, err := bootstrap.Build(cfg); err == nil {
		t.Fatalf("expected missing secret error in production")
	}
}

func TestScreeningFlowOverHTTP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	app, err := bootstrap.Build(devConfig(t))
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	router := app.Router

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("job_description", "Go engineer"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	part, err := writer.CreateFormFile("resumes", "notes.txt")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("plain text is not a supported format")); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/screenings", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	token := resp.Header().Get(middleware.SessionHeader)
	if token == "" {
		t.Fatalf("expected session token on first request")
	}

	var analyzed struct {
		Phase            string `json:"phase"`
		RankedCandidates []struct {
			FileName string  `json:"filename"`
			Score    float64 `json:"score"`
			Summary  string  `json:"summary"`
		} `json:"rankedCandidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&analyzed); err != nil {
		t.Fatalf("decode analyze: %v", err)
	}
	if analyzed.Phase != "ranked" || len(analyzed.RankedCandidates) != 1 {
		t.Fatalf("unexpected analyze response %+v", analyzed)
	}
	if c := analyzed.RankedCandidates[0]; c.FileName != "notes.txt" || c.Score != 0 || c.Summary != "No content extracted" {
		t.Fatalf("unexpected candidate %+v", c)
	}

	// Same session sees the ranking; a new session does not.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/screenings/current", nil)
	req.Header.Set(middleware.SessionHeader, token)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if !strings.Contains(resp.Body.String(), `"phase":"ranked"`) {
		t.Fatalf("expected ranked phase for same session, got %s", resp.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/screenings/current", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if !strings.Contains(resp.Body.String(), `"phase":"empty"`) {
		t.Fatalf("expected empty phase for new session, got %s", resp.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/screenings/current/confirm", strings.NewReader(`{"selectedCandidates":["notes.txt"]}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.SessionHeader, token)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without calendar, got %d", resp.Code)
	}
}

func TestNewSchedulerUsesInterviewZone(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	sched := bootstrap.NewScheduler(nil, loc)
	if got := sched.Now().Location(); got != loc {
		t.Fatalf("expected scheduler clock in %s, got %s", loc, got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	app, err := bootstrap.Build(devConfig(t))
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "screenings_analyzed_total") {
		t.Fatalf("unexpected metrics response %d: %s", resp.Code, resp.Body.String())
	}
}
