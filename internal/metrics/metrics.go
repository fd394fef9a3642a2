// Package metrics объявляет Prometheus-метрики сервиса.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPRequestsTotal считает обработанные HTTP-запросы по методу и коду ответа.
var HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "leafcare_http_requests_total",
	Help: "Total number of processed HTTP requests.",
}, []string{"method", "code"})

// AnalysesTotal считает выполненные анализы изображений по результату.
var AnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "leafcare_analyses_total",
	Help: "Total number of leaf image analyses.",
}, []string{"status"})

// QuotaRejectionsTotal считает запросы, отклонённые из-за исчерпанной квоты.
var QuotaRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "leafcare_quota_rejections_total",
	Help: "Total number of requests rejected due to exhausted quota.",
})

// RateLimitRejectionsTotal считает запросы, отклонённые лимитером частоты.
var RateLimitRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "leafcare_rate_limit_rejections_total",
	Help: "Total number of requests rejected by the rate limiter.",
})
