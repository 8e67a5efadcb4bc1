package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	applicationsCreatedTotal atomic.Uint64
	applicationsDeletedTotal atomic.Uint64
	jobViewsTotal            atomic.Uint64
	screeningCompletedTotal  atomic.Uint64
	screeningFailedTotal     atomic.Uint64
	screeningStaleTotal      atomic.Uint64
	screeningJobsReceived    atomic.Uint64
	screeningJobsDropped     atomic.Uint64
	eventsPublishFailed      atomic.Uint64

	statusTransitions = newLabeledCounter()
	cascades          = newLabeledCounter()
	rateLimited       = newLabeledCounter()

	requestDuration = newHistogram([]float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000})
)

// IncApplicationCreated increments the created-applications counter.
func IncApplicationCreated() {
	applicationsCreatedTotal.Add(1)
}

// IncApplicationDeleted increments the deleted-applications counter.
func IncApplicationDeleted() {
	applicationsDeletedTotal.Add(1)
}

// IncJobView increments the job view counter.
func IncJobView() {
	jobViewsTotal.Add(1)
}

func IncScreeningCompleted() {
	screeningCompletedTotal.Add(1)
}

func IncScreeningFailed() {
	screeningFailedTotal.Add(1)
}

// IncScreeningStale counts results dropped because the resume was replaced.
func IncScreeningStale() {
	screeningStaleTotal.Add(1)
}

func IncScreeningJobsReceived() {
	screeningJobsReceived.Add(1)
}

// IncScreeningJobsDropped counts queue messages deleted without processing.
func IncScreeningJobsDropped() {
	screeningJobsDropped.Add(1)
}

func IncEventPublishFailed() {
	eventsPublishFailed.Add(1)
}

// IncStatusTransition counts a status set on an entity ("job", "application", "interview").
func IncStatusTransition(entity, to string) {
	statusTransitions.Inc(entity + "|" + to)
}

// IncCascade counts an interview-driven application status change.
func IncCascade(from, to string) {
	cascades.Inc(from + "|" + to)
}

// RecordRateLimited counts a request rejected by the rate limiter.
func RecordRateLimited(group string) {
	rateLimited.Inc(group)
}

// ObserveRequestDurationMs records an HTTP request duration in milliseconds.
func ObserveRequestDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	requestDuration.Observe(value)
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
	writeCounter(&buf, "applications_created_total", "Total applications created", applicationsCreatedTotal.Load())
	writeCounter(&buf, "applications_deleted_total", "Total applications deleted", applicationsDeletedTotal.Load())
	writeCounter(&buf, "job_views_total", "Total counted job views", jobViewsTotal.Load())
	writeCounter(&buf, "screening_completed_total", "Total resume screenings completed", screeningCompletedTotal.Load())
	writeCounter(&buf, "screening_failed_total", "Total resume screenings failed", screeningFailedTotal.Load())
	writeCounter(&buf, "screening_stale_total", "Total screening results dropped for a replaced resume", screeningStaleTotal.Load())
	writeCounter(&buf, "screening_jobs_received_total", "Total screening queue messages received", screeningJobsReceived.Load())
	writeCounter(&buf, "screening_jobs_dropped_total", "Total screening queue messages dropped as unrecoverable", screeningJobsDropped.Load())
	writeCounter(&buf, "events_publish_failed_total", "Total domain events that failed to publish", eventsPublishFailed.Load())
	writeLabeled(&buf, "status_transitions_total", "Status sets by entity and target status", []string{"entity", "status"}, statusTransitions.Snapshot())
	writeLabeled(&buf, "interview_cascades_total", "Application status changes driven by interviews", []string{"interview_status", "application_status"}, cascades.Snapshot())
	writeLabeled(&buf, "rate_limited_total", "Requests rejected by the rate limiter", []string{"group"}, rateLimited.Snapshot())
	writeHistogram(&buf, "http_request_duration_ms", "HTTP request duration in milliseconds", requestDuration.Snapshot())
	return buf.String()
}

type labeledCounter struct {
	mu     sync.Mutex
	values map[string]uint64
}

func newLabeledCounter() *labeledCounter {
	return &labeledCounter{values: make(map[string]uint64)}
}

func (l *labeledCounter) Inc(key string) {
	l.mu.Lock()
	l.values[key]++
	l.mu.Unlock()
}

func (l *labeledCounter) Snapshot() map[string]uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]uint64, len(l.values))
	for k, v := range l.values {
		out[k] = v
	}
	return out
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

// Observe records value in the first bucket whose bound holds it; Render accumulates.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeLabeled(buf *bytes.Buffer, name, help string, labels []string, values map[string]uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		parts := splitKey(key, len(labels))
		var lb bytes.Buffer
		for i, label := range labels {
			if i > 0 {
				lb.WriteByte(',')
			}
			fmt.Fprintf(&lb, "%s=%q", label, parts[i])
		}
		fmt.Fprintf(buf, "%s{%s} %d\n", name, lb.String(), values[key])
	}
}

func splitKey(key string, n int) []string {
	out := make([]string, n)
	idx := 0
	start := 0
	for i := 0; i < len(key) && idx < n-1; i++ {
		if key[i] == '|' {
			out[idx] = key[start:i]
			idx++
			start = i + 1
		}
	}
	out[idx] = key[start:]
	return out
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

// SinceMillis returns the elapsed time since start in milliseconds.
func SinceMillis(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
