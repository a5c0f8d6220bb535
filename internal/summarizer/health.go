package summarizer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/localrivet/clustersummary/internal/telemetry"
	"github.com/localrivet/clustersummary/internal/vector"
)

// HealthStatus represents the health status of the pipeline
type HealthStatus string

const (
	// StatusHealthy indicates every document was summarized
	StatusHealthy HealthStatus = "healthy"

	// StatusDegraded indicates some documents failed or vector lines were skipped
	StatusDegraded HealthStatus = "degraded"

	// StatusUnhealthy indicates no document could be summarized
	StatusUnhealthy HealthStatus = "unhealthy"
)

// degradedSuccessRate is the success rate, in percent, below which a run is degraded.
const degradedSuccessRate = 90.0

// HealthReport summarizes the state of the summarization pipeline
type HealthReport struct {
	Status        HealthStatus       `json:"status"`
	Timestamp     time.Time          `json:"timestamp"`
	Documents     map[string]int64   `json:"documents"`
	Sentences     map[string]int64   `json:"sentences"`
	Vectors       map[string]int64   `json:"vectors"`
	ResponseTimes map[string]float64 `json:"response_times_ms"`
	SuccessRate   float64            `json:"success_rate"`
	LastK         float64            `json:"last_k"`
}

// CreateHealthReport generates a health report from the pipeline metrics.
// The table may be nil when no vectors are loaded yet.
func CreateHealthReport(m *telemetry.MetricsCollector, table *vector.Table) (*HealthReport, error) {
	if m == nil {
		return nil, fmt.Errorf("metrics collector is nil")
	}

	succeeded := m.GetCounter(telemetry.MetricDocumentsSummarized)
	failed := m.GetCounter(telemetry.MetricDocumentsFailed)
	total := succeeded + failed

	var successRate float64
	if total > 0 {
		successRate = float64(succeeded) / float64(total) * 100.0
	}

	vectors := map[string]int64{
		"lines_read":      m.GetCounter(telemetry.MetricVectorLinesRead),
		"lines_malformed": m.GetCounter(telemetry.MetricVectorLinesMalformed),
	}
	if table != nil {
		vectors["words"] = int64(table.Len())
		vectors["dimension"] = int64(table.Dimension())
	}

	status := StatusHealthy
	switch {
	case table == nil || table.Len() == 0:
		status = StatusUnhealthy
	case total > 0 && succeeded == 0:
		status = StatusUnhealthy
	case total > 0 && successRate < degradedSuccessRate:
		status = StatusDegraded
	case vectors["lines_malformed"] > 0:
		status = StatusDegraded
	}

	return &HealthReport{
		Status:    status,
		Timestamp: time.Now(),
		Documents: map[string]int64{
			"summarized": succeeded,
			"failed":     failed,
			"total":      total,
		},
		Sentences: map[string]int64{
			"seen":    m.GetCounter(telemetry.MetricSentencesSeen),
			"dropped": m.GetCounter(telemetry.MetricSentencesDropped),
			"oov":     m.GetCounter(telemetry.MetricOOVSentences),
		},
		Vectors: vectors,
		ResponseTimes: map[string]float64{
			"summarize_avg": float64(m.GetTimerAverage(telemetry.MetricSummarizeTime)) / float64(time.Millisecond),
			"summarize_p95": float64(m.GetTimerP95(telemetry.MetricSummarizeTime)) / float64(time.Millisecond),
			"score_avg":     float64(m.GetTimerAverage(telemetry.MetricScoreTime)) / float64(time.Millisecond),
			"vector_load":   float64(m.GetTimerAverage(telemetry.MetricVectorLoadTime)) / float64(time.Millisecond),
		},
		SuccessRate: successRate,
		LastK:       m.GetGauge(telemetry.MetricClusterCount),
	}, nil
}

// CreateHealthReportJSON generates a JSON health report
func CreateHealthReportJSON(m *telemetry.MetricsCollector, table *vector.Table) (string, error) {
	report, err := CreateHealthReport(m, table)
	if err != nil {
		return "", err
	}

	reportJSON, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal health report: %w", err)
	}

	return string(reportJSON), nil
}

// ResetMetrics resets all pipeline metrics
func ResetMetrics(m *telemetry.MetricsCollector) error {
	if m == nil {
		return fmt.Errorf("metrics collector is nil")
	}

	m.Reset()
	return nil
}
