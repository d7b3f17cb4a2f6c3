package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"screening-backend/internal/identity"
	"screening-backend/internal/ranking"
	"screening-backend/internal/scheduling"
	"screening-backend/internal/screenings"
)

func TestReadJobDescription(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "job.txt")
	require.NoError(t, os.WriteFile(path, []byte("Go engineer from file"), 0o600))

	got, err := readJobDescription(path)
	require.NoError(t, err)
	require.Equal(t, "Go engineer from file", got)

	got, err = readJobDescription("Inline Go engineer")
	require.NoError(t, err)
	require.Equal(t, "Inline Go engineer", got)

	_, err = readJobDescription("  ")
	require.Error(t, err)
}

func TestLoadUploadsUsesBaseNames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "alice.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0o600))

	uploads, err := loadUploads([]string{path})
	require.NoError(t, err)
	require.Len(t, uploads, 1)
	require.Equal(t, "alice.pdf", uploads[0].FileName)

	_, err = loadUploads([]string{filepath.Join(dir, "missing.pdf")})
	require.Error(t, err)

	padded := filepath.Join(dir, " bob.pdf ")
	require.NoError(t, os.WriteFile(padded, []byte("%PDF"), 0o600))
	uploads, err = loadUploads([]string{padded})
	require.NoError(t, err)
	require.Equal(t, "bob.pdf", uploads[0].FileName)
}

func TestPrintRankingAndResults(t *testing.T) {
	snap := screenings.Snapshot{
		Entries: []ranking.Entry{
			{FileName: "alice.pdf", Score: 0.91234},
			{FileName: "notes.txt", Score: 0, Summary: ranking.NoContentSummary},
		},
		Identities: map[string]identity.Identity{
			"alice.pdf": {FileName: "alice.pdf", Email: "alice@example.com", Name: "Alice Smith"},
			"notes.txt": {FileName: "notes.txt"},
		},
		CreatedAt: time.Now(),
	}
	var buf bytes.Buffer
	require.NoError(t, printRanking(&buf, snap))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[1], "alice.pdf")
	require.Contains(t, lines[1], "0.9123")
	require.Contains(t, lines[2], "notes.txt")

	buf.Reset()
	require.NoError(t, printResults(&buf, []scheduling.Result{
		{Candidate: "Alice Smith", FileName: "alice.pdf", Status: scheduling.StatusScheduled, Link: "https://cal/1"},
		{Candidate: "notes.txt", FileName: "notes.txt", Status: scheduling.StatusFailed, Reason: scheduling.ReasonNoEmail},
	}))
	require.Contains(t, buf.String(), "https://cal/1")
	require.Contains(t, buf.String(), "No email found")
}
