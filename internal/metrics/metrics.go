// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とHTTPミドルウェアから利用する。
type MetricsCollector interface {
	RecordOtpSessionStarted()
	RecordOtpVerification(result string)
	RecordRegistration(status string)
	RecordHTTPStatus(statusCode int)
	RecordRequestDuration(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	otpSessionsStarted prometheus.Counter
	otpVerifications   *prometheus.CounterVec
	registrations      *prometheus.CounterVec
	httpStatus         *prometheus.CounterVec
	requestDuration    prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		otpSessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "idman_otp_sessions_started_total",
			Help: "開始されたOTPセッションの合計数",
		}),
		otpVerifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "idman_otp_verifications_total",
			Help: "結果別のOTP検証試行数",
		}, []string{"result"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "idman_registrations_total",
			Help: "ステータス別の本人情報登録数",
		}, []string{"status"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "idman_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "idman_request_duration_seconds",
			Help:    "HTTPリクエスト処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.otpSessionsStarted,
		c.otpVerifications,
		c.registrations,
		c.httpStatus,
		c.requestDuration,
	)

	return c
}

// RecordOtpSessionStarted はOTPセッションの開始を記録する。
func (c *Collector) RecordOtpSessionStarted() {
	c.otpSessionsStarted.Inc()
}

// RecordOtpVerification はOTP検証の試行を結果ラベル付きで記録する。
func (c *Collector) RecordOtpVerification(result string) {
	c.otpVerifications.WithLabelValues(result).Inc()
}

// RecordRegistration は本人情報登録をステータスラベル付きで記録する。
func (c *Collector) RecordRegistration(status string) {
	c.registrations.WithLabelValues(status).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestDuration はリクエスト処理時間を記録する。
func (c *Collector) RecordRequestDuration(duration time.Duration) {
	c.requestDuration.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
