package metrics

import (
	"strings"
	"testing"
)

func TestHistogramBucketsAreCumulative(t *testing.T) {
	h := newHistogram([]float64{10, 100})
	h.Observe(5)
	h.Observe(50)
	h.Observe(500)

	snap := h.Snapshot()
	var cumulative uint64
	got := make([]uint64, 0, len(snap.buckets))
	for i := range snap.buckets {
		cumulative += snap.counts[i]
		got = append(got, cumulative)
	}
	if got[0] != 1 || got[1] != 2 {
		t.Fatalf("unexpected cumulative buckets: %v", got)
	}
	if snap.count != 3 {
		t.Fatalf("expected count 3, got %d", snap.count)
	}
}

func TestRenderIncludesLabeledCounters(t *testing.T) {
	IncStatusTransition("application", "shortlisted")
	IncCascade("completed", "interviewed")

	out := Render()
	if !strings.Contains(out, `status_transitions_total{entity="application",status="shortlisted"}`) {
		t.Fatalf("missing status transition series:\n%s", out)
	}
	if !strings.Contains(out, `interview_cascades_total{interview_status="completed",application_status="interviewed"}`) {
		t.Fatalf("missing cascade series:\n%s", out)
	}
}
