// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CodeOK は成功したオペレーションのcodeラベル値。
const CodeOK = "OK"

// MetricsCollector はメトリクス収集のインターフェース。
// GraphQLのリゾルバー、トークンサービス、HTTPミドルウェアから利用する。
type MetricsCollector interface {
	RecordOperation(operation, code string, duration time.Duration)
	RecordTokenIssued(kind string)
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	operations   *prometheus.CounterVec
	opLatency    *prometheus.HistogramVec
	tokensIssued *prometheus.CounterVec
	httpStatus   *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bookreview_graphql_operations_total",
			Help: "GraphQLオペレーションの結果コード別の実行数",
		}, []string{"operation", "code"}),
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bookreview_graphql_operation_duration_seconds",
			Help:    "GraphQLオペレーションの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		tokensIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bookreview_tokens_issued_total",
			Help: "種別ごとのトークン発行数",
		}, []string{"kind"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bookreview_http_requests_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.operations,
		c.opLatency,
		c.tokensIssued,
		c.httpStatus,
	)

	return c
}

// RecordOperation はオペレーションの結果コードと処理時間を記録する。
func (c *Collector) RecordOperation(operation, code string, duration time.Duration) {
	c.operations.WithLabelValues(operation, code).Inc()
	c.opLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordTokenIssued はトークン発行を記録する。
func (c *Collector) RecordTokenIssued(kind string) {
	c.tokensIssued.WithLabelValues(kind).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop は何も記録しないMetricsCollector。テストやメトリクス無効時に使う。
type Nop struct{}

func (Nop) RecordOperation(string, string, time.Duration) {}
func (Nop) RecordTokenIssued(string)                      {}
func (Nop) RecordHTTPStatus(int)                          {}

var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = Nop{}
)
