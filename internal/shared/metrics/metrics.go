package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	screeningsAnalyzedTotal  atomic.Uint64
	screeningsFailedTotal    atomic.Uint64
	documentsRankedTotal     atomic.Uint64
	documentsUnreadableTotal atomic.Uint64
	interviewsScheduledTotal atomic.Uint64
	interviewsFailedTotal    atomic.Uint64

	analyzeDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncScreeningAnalyzed increments the completed analyze counter.
func IncScreeningAnalyzed() {
	screeningsAnalyzedTotal.Add(1)
}

// IncScreeningFailed increments the failed analyze counter.
func IncScreeningFailed() {
	screeningsFailedTotal.Add(1)
}

// AddDocumentsRanked adds n to the ranked documents counter.
func AddDocumentsRanked(n int) {
	if n > 0 {
		documentsRankedTotal.Add(uint64(n))
	}
}

// IncDocumentUnreadable counts documents whose text could not be extracted.
func IncDocumentUnreadable() {
	documentsUnreadableTotal.Add(1)
}

// IncInterviewScheduled counts created interview events.
func IncInterviewScheduled() {
	interviewsScheduledTotal.Add(1)
}

// IncInterviewFailed counts candidates whose interview could not be scheduled.
func IncInterviewFailed() {
	interviewsFailedTotal.Add(1)
}

// ObserveAnalyzeDurationMs records an analyze duration in milliseconds.
func ObserveAnalyzeDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	analyzeDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "screenings_analyzed_total", "Total screenings analyzed", screeningsAnalyzedTotal.Load())
	writeCounter(&buf, "screenings_failed_total", "Total screenings that failed to analyze", screeningsFailedTotal.Load())
	writeCounter(&buf, "documents_ranked_total", "Total candidate documents ranked", documentsRankedTotal.Load())
	writeCounter(&buf, "documents_unreadable_total", "Total candidate documents without extractable text", documentsUnreadableTotal.Load())
	writeCounter(&buf, "interviews_scheduled_total", "Total interviews scheduled", interviewsScheduledTotal.Load())
	writeCounter(&buf, "interviews_failed_total", "Total interviews that could not be scheduled", interviewsFailedTotal.Load())
	writeHistogram(&buf, "screening_analyze_duration_ms", "Analyze duration in milliseconds", analyzeDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
