package metrics

import (
	"strings"
	"testing"
	"time"
)

func TestRenderCounters(t *testing.T) {
	Reset()
	IncApplicationSubmitted()
	IncApplicationSubmitted()
	IncStatusChange()

	out := Render()
	if !strings.Contains(out, "nextstep_applications_submitted_total 2") {
		t.Fatalf("missing submitted counter:\n%s", out)
	}
	if !strings.Contains(out, "nextstep_status_changes_total 1") {
		t.Fatalf("missing status change counter:\n%s", out)
	}
	if !strings.Contains(out, "# TYPE nextstep_applications_submitted_total counter") {
		t.Fatalf("missing TYPE line:\n%s", out)
	}
}

func TestRenderHistogram(t *testing.T) {
	Reset()
	ObserveSubmitDuration(300 * time.Millisecond)
	ObserveSubmitDuration(4 * time.Second)

	out := Render()
	if !strings.Contains(out, `nextstep_submit_duration_seconds_bucket{le="0.5"} 1`) {
		t.Fatalf("0.5 bucket wrong:\n%s", out)
	}
	if !strings.Contains(out, `nextstep_submit_duration_seconds_bucket{le="5"} 2`) {
		t.Fatalf("5 bucket wrong:\n%s", out)
	}
	if !strings.Contains(out, "nextstep_submit_duration_seconds_count 2") {
		t.Fatalf("count wrong:\n%s", out)
	}
}
