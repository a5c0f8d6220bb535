package telemetry

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestMetricsCollector(t *testing.T) {
	m := NewMetricsCollector()

	m.IncrementCounter(MetricDocumentsSummarized, 3)
	m.IncrementCounter(MetricDocumentsSummarized, 2)
	if got := m.GetCounter(MetricDocumentsSummarized); got != 5 {
		t.Errorf("GetCounter() = %d, want 5", got)
	}

	m.SetGauge(MetricClusterCount, 4)
	if got := m.GetGauge(MetricClusterCount); got != 4 {
		t.Errorf("GetGauge() = %v, want 4", got)
	}

	for i := 1; i <= 20; i++ {
		m.RecordTimer(MetricSummarizeTime, time.Duration(i)*time.Millisecond)
	}
	if got := m.GetTimerAverage(MetricSummarizeTime); got != 10500*time.Microsecond {
		t.Errorf("GetTimerAverage() = %v, want 10.5ms", got)
	}
	if got := m.GetTimerP95(MetricSummarizeTime); got != 20*time.Millisecond {
		t.Errorf("GetTimerP95() = %v, want 20ms", got)
	}
	if m.GetTimerAverage("missing") != 0 || m.GetTimerP95("missing") != 0 {
		t.Errorf("missing timers should report zero")
	}

	m.RecordTimestamp(MetricBatchLastRun)
	if m.GetTimeSince(MetricBatchLastRun) <= 0 {
		t.Errorf("GetTimeSince() should be positive after RecordTimestamp")
	}

	report := m.GetReport()
	for _, want := range []string{MetricDocumentsSummarized + ": 5", MetricClusterCount, MetricSummarizeTime, MetricBatchLastRun} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}

	m.Reset()
	if m.GetCounter(MetricDocumentsSummarized) != 0 {
		t.Errorf("Reset() did not clear counters")
	}
}

func TestTimerSamplesAreBounded(t *testing.T) {
	m := NewMetricsCollector()
	for i := 0; i < maxTimerSamples+50; i++ {
		m.RecordTimer(MetricScoreTime, time.Millisecond)
	}
	m.mu.RLock()
	n := len(m.timers[MetricScoreTime])
	m.mu.RUnlock()
	if n != maxTimerSamples {
		t.Errorf("stored %d samples, want %d", n, maxTimerSamples)
	}
}

func TestConcurrentCounters(t *testing.T) {
	m := NewMetricsCollector()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.IncrementCounter(MetricOOVSentences, 1)
			}
		}()
	}
	wg.Wait()
	if got := m.GetCounter(MetricOOVSentences); got != 800 {
		t.Errorf("GetCounter() = %d, want 800", got)
	}
}
