package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// findFamily は指定名のメトリクスファミリーを返す。
func findFamily(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("%s metric not found", name)
	return nil
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestRecordOperation_CountsByCode はオペレーションが結果コード別に数えられることを検証する。
func TestRecordOperation_CountsByCode(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordOperation("getBook", CodeOK, 10*time.Millisecond)
	c.RecordOperation("getBook", CodeOK, 20*time.Millisecond)
	c.RecordOperation("getBook", "NOT_FOUND", 5*time.Millisecond)

	mf := findFamily(t, reg, "bookreview_graphql_operations_total")
	if len(mf.GetMetric()) != 2 {
		t.Fatalf("expected 2 label sets, got %d", len(mf.GetMetric()))
	}
	for _, m := range mf.GetMetric() {
		want := 2.0
		if labelValue(m, "code") == "NOT_FOUND" {
			want = 1
		}
		if got := m.GetCounter().GetValue(); got != want {
			t.Errorf("code=%s: got %v, want %v", labelValue(m, "code"), got, want)
		}
	}

	latency := findFamily(t, reg, "bookreview_graphql_operation_duration_seconds")
	h := latency.GetMetric()[0].GetHistogram()
	if h.GetSampleCount() != 3 {
		t.Errorf("sample count = %d, want 3", h.GetSampleCount())
	}
}

// TestRecordTokenIssued_CountsByKind はトークン発行数が種別ごとに数えられることを検証する。
func TestRecordTokenIssued_CountsByKind(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordTokenIssued("access")
	c.RecordTokenIssued("access")
	c.RecordTokenIssued("refresh")

	mf := findFamily(t, reg, "bookreview_tokens_issued_total")
	for _, m := range mf.GetMetric() {
		want := 2.0
		if labelValue(m, "kind") == "refresh" {
			want = 1
		}
		if got := m.GetCounter().GetValue(); got != want {
			t.Errorf("kind=%s: got %v, want %v", labelValue(m, "kind"), got, want)
		}
	}
}

// TestRecordHTTPStatus_RecordsStatusCode はHTTPステータスコードが記録されることを検証する。
func TestRecordHTTPStatus_RecordsStatusCode(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(429)

	mf := findFamily(t, reg, "bookreview_http_requests_total")
	if len(mf.GetMetric()) != 2 {
		t.Fatalf("expected 2 status codes, got %d", len(mf.GetMetric()))
	}
	for _, m := range mf.GetMetric() {
		if labelValue(m, "status_code") == "429" && m.GetCounter().GetValue() != 1 {
			t.Errorf("429 count = %v, want 1", m.GetCounter().GetValue())
		}
	}
}

// TestNop はNopが何も記録しないことを検証する。
func TestNop(t *testing.T) {
	var c MetricsCollector = Nop{}
	c.RecordOperation("x", CodeOK, time.Second)
	c.RecordTokenIssued("access")
	c.RecordHTTPStatus(500)
}
