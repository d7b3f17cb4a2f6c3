package screenings

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"screening-backend/internal/extract"
	"screening-backend/internal/ranking"
	"screening-backend/internal/scheduling"
)

func TestAnalyzeRanksAndStoresSnapshot(t *testing.T) {
	repo := NewMemoryRepo()
	svc := newTestService(t, repo, nil)

	snap, err := svc.Analyze(context.Background(), "s1", testJobDescription, testUploads("bob.docx", "alice.pdf", "notes.txt"))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(snap.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(snap.Entries))
	}
	if snap.Entries[0].FileName != "alice.pdf" {
		t.Fatalf("expected alice.pdf first, got %s", snap.Entries[0].FileName)
	}
	for i := 1; i < len(snap.Entries); i++ {
		if snap.Entries[i-1].Score < snap.Entries[i].Score {
			t.Fatalf("entries not sorted: %+v", snap.Entries)
		}
	}

	var unreadable ranking.Entry
	for _, e := range snap.Entries {
		if e.FileName == "notes.txt" {
			unreadable = e
		}
	}
	if unreadable.Score != 0 || unreadable.Summary != ranking.NoContentSummary {
		t.Fatalf("unexpected entry for unsupported file: %+v", unreadable)
	}

	alice, ok := snap.Identity("alice.pdf")
	if !ok || alice.Email != "alice@example.com" || alice.Name != "Alice Smith" {
		t.Fatalf("unexpected alice identity: %+v", alice)
	}
	notes, ok := snap.Identity("notes.txt")
	if !ok || notes.HasEmail() || notes.Name != "" {
		t.Fatalf("unexpected identity for unsupported file: %+v", notes)
	}
	if len(snap.Identities) != len(snap.Entries) {
		t.Fatalf("expected one identity per entry")
	}
	if !snap.CreatedAt.Equal(testNow) {
		t.Fatalf("unexpected created at %s", snap.CreatedAt)
	}

	stored, err := repo.Get(context.Background(), "s1")
	if err != nil {
		t.Fatalf("get stored: %v", err)
	}
	if stored.JobDescription != testJobDescription || len(stored.Entries) != 3 {
		t.Fatalf("unexpected stored snapshot: %+v", stored)
	}
}

func TestAnalyzeReplacesPreviousState(t *testing.T) {
	repo := NewMemoryRepo()
	cal := &fakeCalendar{}
	svc := newTestService(t, repo, cal)
	ctx := context.Background()

	if _, err := svc.Analyze(ctx, "s1", testJobDescription, testUploads("alice.pdf", "bob.docx")); err != nil {
		t.Fatalf("first analyze: %v", err)
	}
	if _, err := svc.Analyze(ctx, "s1", "Pastry chef", testUploads("carol.pdf")); err != nil {
		t.Fatalf("second analyze: %v", err)
	}

	snap, err := svc.Current(ctx, "s1")
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if snap.JobDescription != "Pastry chef" {
		t.Fatalf("expected replaced job description, got %q", snap.JobDescription)
	}
	if len(snap.Entries) != 1 || snap.Entries[0].FileName != "carol.pdf" {
		t.Fatalf("expected only carol.pdf, got %+v", snap.Entries)
	}
	if _, ok := snap.Identity("alice.pdf"); ok {
		t.Fatalf("expected alice.pdf identity to be gone")
	}

	results, err := svc.ConfirmAndSchedule(ctx, "s1", []string{"alice.pdf"})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if len(results) != 1 || results[0].Status != scheduling.StatusFailed || results[0].Reason != scheduling.ReasonNoEmail {
		t.Fatalf("expected no_email failure for stale candidate, got %+v", results)
	}
	if len(cal.calls) != 0 {
		t.Fatalf("expected no calendar calls, got %d", len(cal.calls))
	}
}

func TestAnalyzeKeepsStateWhenJobDescriptionFailsToEmbed(t *testing.T) {
	repo := NewMemoryRepo()
	svc := newTestService(t, repo, nil)
	ctx := context.Background()

	if _, err := svc.Analyze(ctx, "s1", testJobDescription, testUploads("alice.pdf")); err != nil {
		t.Fatalf("first analyze: %v", err)
	}

	svc.Ranker = ranking.NewRanker(failingJobProvider{Provider: svc.Ranker.Embedder, failText: "broken job"}, ranking.DefaultLimits)
	_, err := svc.Analyze(ctx, "s1", "broken job", testUploads("bob.docx"))
	if !errors.Is(err, ErrRankingFailed) {
		t.Fatalf("expected ErrRankingFailed, got %v", err)
	}

	snap, err := svc.Current(ctx, "s1")
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if snap.JobDescription != testJobDescription || snap.Entries[0].FileName != "alice.pdf" {
		t.Fatalf("expected previous snapshot to survive, got %+v", snap)
	}
}

func TestAnalyzeExtractionFailureIsNotFatal(t *testing.T) {
	svc := newTestService(t, NewMemoryRepo(), nil)
	svc.Parser = fakeParser{
		texts: testTexts(),
		errs:  map[string]error{"broken.pdf": errors.New("corrupt xref table")},
	}

	snap, err := svc.Analyze(context.Background(), "s1", testJobDescription, testUploads("broken.pdf", "alice.pdf"))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if snap.Entries[1].FileName != "broken.pdf" || snap.Entries[1].Summary != ranking.NoContentSummary {
		t.Fatalf("expected broken.pdf last with no content, got %+v", snap.Entries)
	}
}

func TestAnalyzeMalformedDOCXHasNoContent(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(`<w:document><w:body><w:p><w:t>Jane Doe</w:t></w:x></w:body></w:document>`)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	svc := newTestService(t, NewMemoryRepo(), nil)
	svc.Parser = extract.Parser{}
	snap, err := svc.Analyze(context.Background(), "s1", testJobDescription, []Upload{{FileName: "jane.docx", Data: buf.Bytes()}})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	entry := snap.Entries[0]
	if entry.Score != 0 || entry.Summary != ranking.NoContentSummary {
		t.Fatalf("expected zero score and no content, got %+v", entry)
	}
	id, ok := snap.Identity("jane.docx")
	if !ok || id.Name != "" || id.Email != "" {
		t.Fatalf("expected empty identity, got %+v (found=%v)", id, ok)
	}
}

func TestAnalyzeWithNoDocuments(t *testing.T) {
	svc := newTestService(t, NewMemoryRepo(), nil)

	snap, err := svc.Analyze(context.Background(), "s1", testJobDescription, nil)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(snap.Entries) != 0 || len(snap.Identities) != 0 {
		t.Fatalf("expected empty ranking, got %+v", snap)
	}
	if _, err := svc.Current(context.Background(), "s1"); err != nil {
		t.Fatalf("expected ranked state to be stored: %v", err)
	}
}

func TestAnalyzeRejectsInvalidInput(t *testing.T) {
	svc := newTestService(t, NewMemoryRepo(), nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		session string
		jd      string
		uploads []Upload
	}{
		{name: "missing session", session: "", jd: testJobDescription},
		{name: "blank job description", session: "s1", jd: "   "},
		{name: "duplicate file names", session: "s1", jd: testJobDescription, uploads: testUploads("alice.pdf", "alice.pdf")},
		{name: "blank file name", session: "s1", jd: testJobDescription, uploads: testUploads(" ")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Analyze(ctx, tc.session, tc.jd, tc.uploads); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestConfirmOnEmptySessionReturnsNoResults(t *testing.T) {
	cal := &fakeCalendar{}
	svc := newTestService(t, NewMemoryRepo(), cal)

	results, err := svc.ConfirmAndSchedule(context.Background(), "s1", []string{"alice.pdf"})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %+v", results)
	}
	if len(cal.calls) != 0 {
		t.Fatalf("expected no calendar calls")
	}
}

func TestConfirmSchedulesSelectedCandidatesInOrder(t *testing.T) {
	cal := &fakeCalendar{fail: map[string]bool{"bob@example.com": true}}
	svc := newTestService(t, NewMemoryRepo(), cal)
	ctx := context.Background()

	if _, err := svc.Analyze(ctx, "s1", testJobDescription, testUploads("alice.pdf", "bob.docx", "carol.pdf")); err != nil {
		t.Fatalf("analyze: %v", err)
	}

	selected := []string{"carol.pdf", "bob.docx", "ghost.pdf", "alice.pdf", " "}
	results, err := svc.ConfirmAndSchedule(ctx, "s1", selected)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}

	want := []struct {
		file   string
		status scheduling.Status
		reason scheduling.Reason
	}{
		{"carol.pdf", scheduling.StatusFailed, scheduling.ReasonNoEmail},
		{"bob.docx", scheduling.StatusFailed, scheduling.ReasonProviderError},
		{"ghost.pdf", scheduling.StatusFailed, scheduling.ReasonNoEmail},
		{"alice.pdf", scheduling.StatusScheduled, ""},
	}
	if len(results) != len(want) {
		t.Fatalf("expected %d results, got %+v", len(want), results)
	}
	for i, w := range want {
		r := results[i]
		if r.FileName != w.file || r.Status != w.status || r.Reason != w.reason {
			t.Fatalf("result %d: expected %s/%s/%s, got %+v", i, w.file, w.status, w.reason, r)
		}
	}
	if results[3].Link == "" || results[3].Candidate != "Alice Smith" {
		t.Fatalf("unexpected alice result: %+v", results[3])
	}
	if results[0].Candidate != "carol.pdf" || results[2].Candidate != "ghost.pdf" {
		t.Fatalf("expected file name labels for no-email candidates, got %q and %q", results[0].Candidate, results[2].Candidate)
	}
	if results[1].Candidate != "Bob Jones" {
		t.Fatalf("expected name label for provider failure, got %q", results[1].Candidate)
	}

	if len(cal.calls) != 2 {
		t.Fatalf("expected calendar calls only for candidates with email, got %d", len(cal.calls))
	}
	wantStart := time.Date(2026, time.March, 11, 9, 0, 0, 0, time.UTC)
	for _, call := range cal.calls {
		if !call.Start.Equal(wantStart) || call.End.Sub(call.Start) != 30*time.Minute {
			t.Fatalf("unexpected slot %s-%s", call.Start, call.End)
		}
	}
}

func TestConfirmDoesNotMutateState(t *testing.T) {
	svc := newTestService(t, NewMemoryRepo(), &fakeCalendar{})
	ctx := context.Background()

	before, err := svc.Analyze(ctx, "s1", testJobDescription, testUploads("alice.pdf", "bob.docx"))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if _, err := svc.ConfirmAndSchedule(ctx, "s1", []string{"alice.pdf"}); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	after, err := svc.Current(ctx, "s1")
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if len(after.Entries) != len(before.Entries) || after.Entries[0] != before.Entries[0] {
		t.Fatalf("expected snapshot unchanged, got %+v", after.Entries)
	}
}

func TestConfirmWithoutCalendar(t *testing.T) {
	svc := newTestService(t, NewMemoryRepo(), nil)
	ctx := context.Background()
	if _, err := svc.Analyze(ctx, "s1", testJobDescription, testUploads("alice.pdf")); err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if _, err := svc.ConfirmAndSchedule(ctx, "s1", []string{"alice.pdf"}); !errors.Is(err, scheduling.ErrCalendarUnavailable) {
		t.Fatalf("expected ErrCalendarUnavailable, got %v", err)
	}
	results, err := svc.ConfirmAndSchedule(ctx, "s1", nil)
	if err != nil || len(results) != 0 {
		t.Fatalf("expected empty selection to succeed, got %v %v", results, err)
	}
}

func TestResetReturnsSessionToEmpty(t *testing.T) {
	svc := newTestService(t, NewMemoryRepo(), nil)
	ctx := context.Background()
	if _, err := svc.Analyze(ctx, "s1", testJobDescription, testUploads("alice.pdf")); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if err := svc.Reset(ctx, "s1"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := svc.Current(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	svc := newTestService(t, NewMemoryRepo(), nil)
	ctx := context.Background()
	if _, err := svc.Analyze(ctx, "s1", testJobDescription, testUploads("alice.pdf")); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if _, err := svc.Current(ctx, "s2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected other session to be empty, got %v", err)
	}
}
