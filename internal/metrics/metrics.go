// Package metrics содержит Prometheus-метрики платформы.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// LoginCounter считает успешные входы в систему.
var LoginCounter = promauto.NewCounter(prometheus.CounterOpts{
	Name: "training_platform_logins_total",
	Help: "Total number of successful logins",
})

// AuthzDenials считает отказы политики доступа по причинам.
var AuthzDenials = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "training_platform_authz_denials_total",
	Help: "Total number of authorization denials by reason",
}, []string{"reason"})

// NotificationsPublished считает опубликованные события уведомлений.
var NotificationsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "training_platform_notifications_published_total",
	Help: "Total number of published notification events by routing key",
}, []string{"routing_key"})

// RecordDenial фиксирует отказ политики с указанной причиной.
func RecordDenial(reason string) {
	AuthzDenials.WithLabelValues(reason).Inc()
}
