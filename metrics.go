package transcript

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Operational counters across the client, process-wide.
var metrics struct {
	TranscribeRequests atomic.Int64
	ASRRequests        atomic.Int64
	JobFetches         atomic.Int64
	JobWaits           atomic.Int64
	BatchRequests      atomic.Int64
	HistoryRequests    atomic.Int64
	StatsRequests      atomic.Int64
	DeleteRequests     atomic.Int64
	Retries            atomic.Int64
}

func incrTranscribeRequests() { metrics.TranscribeRequests.Add(1) }
func incrASRRequests()        { metrics.ASRRequests.Add(1) }
func incrJobFetches()         { metrics.JobFetches.Add(1) }
func incrJobWaits()           { metrics.JobWaits.Add(1) }
func incrBatchRequests()      { metrics.BatchRequests.Add(1) }
func incrHistoryRequests()    { metrics.HistoryRequests.Add(1) }
func incrStatsRequests()      { metrics.StatsRequests.Add(1) }
func incrDeleteRequests()     { metrics.DeleteRequests.Add(1) }
func incrRetries()            { metrics.Retries.Add(1) }

// Metrics returns a snapshot of all counters.
func Metrics() map[string]int64 {
	return map[string]int64{
		"transcribe_requests": metrics.TranscribeRequests.Load(),
		"asr_requests":        metrics.ASRRequests.Load(),
		"job_fetches":         metrics.JobFetches.Load(),
		"job_waits":           metrics.JobWaits.Load(),
		"batch_requests":      metrics.BatchRequests.Load(),
		"history_requests":    metrics.HistoryRequests.Load(),
		"stats_requests":      metrics.StatsRequests.Load(),
		"delete_requests":     metrics.DeleteRequests.Load(),
		"retries":             metrics.Retries.Load(),
	}
}

// FormatMetrics renders the counters as simple "name value" lines.
func FormatMetrics() string {
	m := Metrics()
	keys := []string{
		"transcribe_requests", "asr_requests",
		"job_fetches", "job_waits",
		"batch_requests", "history_requests",
		"stats_requests", "delete_requests",
		"retries",
	}
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}
