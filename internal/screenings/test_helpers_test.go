package screenings

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"screening-backend/internal/embedding"
	"screening-backend/internal/extract"
	"screening-backend/internal/ranking"
	"screening-backend/internal/scheduling"
)

const testJobDescription = "Senior Go engineer for distributed systems"

var testNow = time.Date(2026, time.March, 10, 15, 30, 0, 0, time.UTC)

// fakeParser returns canned text per file name. Unknown names are unsupported.
type fakeParser struct {
	texts map[string]string
	errs  map[string]error
}

func (p fakeParser) Parse(ctx context.Context, data []byte, fileName string) (string, error) {
	if err, ok := p.errs[fileName]; ok {
		return "", err
	}
	if text, ok := p.texts[fileName]; ok {
		return text, nil
	}
	return "", extract.ErrUnsupportedFormat
}

// failingJobProvider fails only when asked to embed failText.
type failingJobProvider struct {
	embedding.Provider
	failText string
}

func (p failingJobProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == p.failText {
		return nil, errors.New("provider down")
	}
	return p.Provider.Embed(ctx, text)
}

type calendarCall struct {
	Email string
	Name  string
	Start time.Time
	End   time.Time
}

// fakeCalendar records calls and fails for emails listed in fail.
type fakeCalendar struct {
	mu    sync.Mutex
	calls []calendarCall
	fail  map[string]bool
}

func (f *fakeCalendar) ScheduleEvent(ctx context.Context, email, name string, start, end time.Time) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, calendarCall{Email: email, Name: name, Start: start, End: end})
	if f.fail[email] {
		return "", errors.New("calendar rejected event")
	}
	return "https://calendar.example.com/event/" + email, nil
}

func testTexts() map[string]string {
	return map[string]string{
		"alice.pdf": "Alice Smith\nalice@example.com\nGo engineer building distributed systems in Go",
		"bob.docx":  "Bob Jones\nbob@example.com\nPastry chef baking sourdough bread",
		"carol.pdf": "Carol\nGo distributed systems engineer without contact details",
	}
}

func newTestService(t *testing.T, repo Repo, cal scheduling.Calendar) *Service {
	t.Helper()
	svc := &Service{
		Repo:   repo,
		Parser: fakeParser{texts: testTexts()},
		Ranker: ranking.NewRanker(embedding.NewHashingProvider(256), ranking.DefaultLimits),
		Now:    func() time.Time { return testNow },
	}
	if cal != nil {
		svc.Scheduler = &scheduling.Orchestrator{Calendar: cal, Now: func() time.Time { return testNow }}
	}
	return svc
}

func testUploads(names ...string) []Upload {
	out := make([]Upload, 0, len(names))
	for _, n := range names {
		out = append(out, Upload{FileName: n, Data: []byte("raw " + n)})
	}
	return out
}
