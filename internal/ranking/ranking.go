package ranking

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"screening-backend/internal/embedding"
	"screening-backend/internal/shared/telemetry"
)

// NoContentSummary is the summary given to documents without extracted text.
const NoContentSummary = "No content extracted"

// Limits bounds how much document text is embedded and excerpted, in characters.
type Limits struct {
	ScoringChars int
	SummaryChars int
}

// DefaultLimits are the limits used when none are configured.
var DefaultLimits = Limits{ScoringChars: 4000, SummaryChars: 700}

// Document is a candidate document. Empty Text means no text could be extracted.
type Document struct {
	FileName string
	Text     string
}

// Entry is one ranked candidate.
type Entry struct {
	FileName string  `json:"fileName"`
	Score    float64 `json:"score"`
	Summary  string  `json:"summary"`
}

// Ranker scores documents against a job description.
type Ranker struct {
	Embedder embedding.Provider
	Limits   Limits
}

// NewRanker builds a Ranker. Zero limits fall back to DefaultLimits.
func NewRanker(embedder embedding.Provider, limits Limits) *Ranker {
	if limits.ScoringChars <= 0 {
		limits.ScoringChars = DefaultLimits.ScoringChars
	}
	if limits.SummaryChars <= 0 {
		limits.SummaryChars = DefaultLimits.SummaryChars
	}
	return &Ranker{Embedder: embedder, Limits: limits}
}

// Rank returns one entry per document ordered by score, highest first. Documents with equal
// scores keep their input order. Failing to embed the job description fails the whole call;
// failing to embed a single document only zeroes that document's score.
func (r *Ranker) Rank(ctx context.Context, jobDescription string, docs []Document) ([]Entry, error) {
	if r == nil || r.Embedder == nil {
		return nil, fmt.Errorf("ranker: embedding provider not configured")
	}
	start := time.Now()

	jobVector, err := r.Embedder.Embed(ctx, jobDescription)
	if err != nil {
		return nil, fmt.Errorf("embed job description: %w", err)
	}

	entries := make([]Entry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, r.score(ctx, jobVector, doc))
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})

	telemetry.Debug("ranking.complete", map[string]any{
		"documents":   len(docs),
		"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
	})
	return entries, nil
}

func (r *Ranker) score(ctx context.Context, jobVector []float32, doc Document) Entry {
	if doc.Text == "" {
		return Entry{FileName: doc.FileName, Score: 0, Summary: NoContentSummary}
	}
	entry := Entry{FileName: doc.FileName, Summary: Prefix(doc.Text, r.limits().SummaryChars)}

	vec, err := r.Embedder.Embed(ctx, Prefix(doc.Text, r.limits().ScoringChars))
	if err != nil {
		telemetry.Error("ranking.embed_failed", map[string]any{
			"file_name": doc.FileName,
			"error":     err,
		})
		return entry
	}
	if len(vec) != len(jobVector) {
		telemetry.Error("ranking.dimension_mismatch", map[string]any{
			"file_name": doc.FileName,
			"job_dim":   len(jobVector),
			"doc_dim":   len(vec),
		})
		return entry
	}
	entry.Score = CosineSimilarity(jobVector, vec)
	return entry
}

func (r *Ranker) limits() Limits {
	l := r.Limits
	if l.ScoringChars <= 0 {
		l.ScoringChars = DefaultLimits.ScoringChars
	}
	if l.SummaryChars <= 0 {
		l.SummaryChars = DefaultLimits.SummaryChars
	}
	return l
}

// CosineSimilarity returns dot(a,b)/(|a||b|). It is 0 when either vector has zero norm
// or the vectors differ in length. The result is not clamped.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Prefix returns the first n characters of s.
func Prefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
