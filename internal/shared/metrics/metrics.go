// Package metrics collects application counters and exposes them in
// Prometheus text format.
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var (
	applicationsSubmitted atomic.Int64
	applicationsFailed    atomic.Int64
	statusChanges         atomic.Int64
	notificationsCreated  atomic.Int64
	emailsSent            atomic.Int64
	emailsFailed          atomic.Int64
	matcherCalls          atomic.Int64
	matcherFailures       atomic.Int64

	histMu      sync.Mutex
	submitHist  = map[string]int64{}
	submitSum   float64
	submitCount int64
)

var submitBuckets = []float64{0.1, 0.5, 1, 2.5, 5, 10, 30}

// IncApplicationSubmitted counts a successfully recorded application.
func IncApplicationSubmitted() { applicationsSubmitted.Add(1) }

// IncApplicationFailed counts a submission that failed at any pipeline stage.
func IncApplicationFailed() { applicationsFailed.Add(1) }

// IncStatusChange counts an application status transition.
func IncStatusChange() { statusChanges.Add(1) }

// IncNotificationCreated counts a stored notification.
func IncNotificationCreated() { notificationsCreated.Add(1) }

// IncEmailSent counts a delivered email.
func IncEmailSent() { emailsSent.Add(1) }

// IncEmailFailed counts an email delivery failure.
func IncEmailFailed() { emailsFailed.Add(1) }

// IncMatcherCall counts a call to the matching service.
func IncMatcherCall() { matcherCalls.Add(1) }

// IncMatcherFailure counts a failed matching service call.
func IncMatcherFailure() { matcherFailures.Add(1) }

// ObserveSubmitDuration records the end-to-end duration of an intake.
func ObserveSubmitDuration(d time.Duration) {
	secs := d.Seconds()
	histMu.Lock()
	defer histMu.Unlock()
	submitSum += secs
	submitCount++
	for _, b := range submitBuckets {
		if secs <= b {
			submitHist[fmt.Sprintf("%g", b)]++
		}
	}
	submitHist["+Inf"]++
}

// Render produces the metrics in Prometheus text exposition format.
func Render() string {
	var sb strings.Builder

	counter := func(name, help string, v int64) {
		fmt.Fprintf(&sb, "# HELP %s %s\n# TYPE %s counter\n%s %d\n", name, help, name, name, v)
	}

	counter("nextstep_applications_submitted_total", "Applications recorded successfully.", applicationsSubmitted.Load())
	counter("nextstep_applications_failed_total", "Application submissions that failed.", applicationsFailed.Load())
	counter("nextstep_status_changes_total", "Application status transitions applied.", statusChanges.Load())
	counter("nextstep_notifications_created_total", "Notifications stored.", notificationsCreated.Load())
	counter("nextstep_emails_sent_total", "Emails delivered.", emailsSent.Load())
	counter("nextstep_emails_failed_total", "Email delivery failures.", emailsFailed.Load())
	counter("nextstep_matcher_calls_total", "Calls made to the matching service.", matcherCalls.Load())
	counter("nextstep_matcher_failures_total", "Failed matching service calls.", matcherFailures.Load())

	histMu.Lock()
	defer histMu.Unlock()

	sb.WriteString("# HELP nextstep_submit_duration_seconds Duration of application intake.\n")
	sb.WriteString("# TYPE nextstep_submit_duration_seconds histogram\n")
	keys := make([]float64, len(submitBuckets))
	copy(keys, submitBuckets)
	sort.Float64s(keys)
	for _, b := range keys {
		label := fmt.Sprintf("%g", b)
		fmt.Fprintf(&sb, "nextstep_submit_duration_seconds_bucket{le=\"%s\"} %d\n", label, submitHist[label])
	}
	fmt.Fprintf(&sb, "nextstep_submit_duration_seconds_bucket{le=\"+Inf\"} %d\n", submitHist["+Inf"])
	fmt.Fprintf(&sb, "nextstep_submit_duration_seconds_sum %f\n", submitSum)
	fmt.Fprintf(&sb, "nextstep_submit_duration_seconds_count %d\n", submitCount)

	return sb.String()
}

// Reset zeroes all metrics. Intended for tests.
func Reset() {
	applicationsSubmitted.Store(0)
	applicationsFailed.Store(0)
	statusChanges.Store(0)
	notificationsCreated.Store(0)
	emailsSent.Store(0)
	emailsFailed.Store(0)
	matcherCalls.Store(0)
	matcherFailures.Store(0)

	histMu.Lock()
	defer histMu.Unlock()
	submitHist = map[string]int64{}
	submitSum = 0
	submitCount = 0
}
