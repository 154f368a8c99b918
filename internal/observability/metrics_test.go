package observability

import (
	"testing"
	"time"
)

func TestMetricsRecordRequest(t *testing.T) {
	m := NewMetrics()

	m.RecordRequest("/api/reports", "POST", 200, 5*time.Millisecond)
	m.RecordRequest("/api/reports", "POST", 200, 7*time.Millisecond)
	m.RecordRequest("/api/reports", "POST", 401, time.Millisecond)

	if got := m.RequestTotal("/api/reports", "POST", 200); got != 2 {
		t.Fatalf("got %d, want 2", got)
	}
	if got := m.RequestTotal("/api/reports", "POST", 401); got != 1 {
		t.Fatalf("got %d, want 1", got)
	}
}

func TestMetricsNilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/x", "GET", 200, 0)
	m.RecordError("/x", "GET", "INTERNAL_ERROR")
	if got := m.RequestTotal("/x", "GET", 200); got != 0 {
		t.Fatalf("got %d, want 0", got)
	}
}
