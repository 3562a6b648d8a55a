package core

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/askbase-ai/askbase-ai/pkg/metrics"
)

type Metrics struct {
	apiResponseTime   *prometheus.HistogramVec
	apiErrorCounter   *prometheus.CounterVec
	modelRequestTime  *prometheus.HistogramVec
	modelError        *prometheus.CounterVec
	indexItemCounter  *prometheus.CounterVec
	retrieveTime      *prometheus.HistogramVec
	qaTokensHistogram *prometheus.HistogramVec
}

func NewMetrics(ns, system string) *Metrics {
	// setup metric
	metrics.SetupMetricsManager(ns, system, prometheus.DefaultRegisterer.(*prometheus.Registry))

	m := &Metrics{
		apiResponseTime:   metrics.NewHistogramVec("api_response_time", []string{"api"}),
		apiErrorCounter:   metrics.NewCounterVec("api_error", []string{"method", "api", "status"}),
		modelRequestTime:  metrics.NewHistogramVec("model_request_time", []string{"target"}),
		modelError:        metrics.NewCounterVec("model_error", []string{"type"}),
		indexItemCounter:  metrics.NewCounterVec("index_item_total", []string{"status"}),
		retrieveTime:      metrics.NewHistogramVec("retrieve_time", []string{"type"}),
		qaTokensHistogram: metrics.NewHistogramVec("qa_tokens", []string{"direction"}),
	}

	return m
}

func (m *Metrics) ApiErrorInc(method, api string, status int) {
	m.apiErrorCounter.WithLabelValues(method, api, strconv.Itoa(status)).Inc()
}

func (m *Metrics) ApiResponseTimer(api string) *prometheus.Timer {
	return prometheus.NewTimer(m.apiResponseTime.WithLabelValues(api))
}

func (m *Metrics) ModelRequestTimer(target string) *prometheus.Timer {
	return prometheus.NewTimer(m.modelRequestTime.WithLabelValues(target))
}

func (m *Metrics) ModelErrorInc(types string) {
	m.modelError.WithLabelValues(types).Inc()
}

func (m *Metrics) IndexItemInc(status string) {
	m.indexItemCounter.WithLabelValues(status).Inc()
}

func (m *Metrics) RetrieveTimer(types string) *prometheus.Timer {
	return prometheus.NewTimer(m.retrieveTime.WithLabelValues(types))
}

func (m *Metrics) ObserveQaTokens(direction string, n int) {
	m.qaTokensHistogram.WithLabelValues(direction).Observe(float64(n))
}
