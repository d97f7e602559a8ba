package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/clublaunch/payments-service/pkg/logger"
)

// PaymentMetrics интерфейс для метрик реконсиляции платежей
type PaymentMetrics interface {
	IncWebhookEvent(source, eventType, outcome string)
	IncPaymentRecorded(currency, paymentType string)
	IncDuplicateSkipped()
	ObservePaymentAmount(amount float64, currency string)
}

type paymentMetrics struct {
	log              *logger.Logger
	webhookEvents    *prometheus.CounterVec
	paymentsRecorded *prometheus.CounterVec
	duplicatesTotal  prometheus.Counter
	paymentsAmount   *prometheus.HistogramVec
}

// NewPaymentMetrics создает новые метрики платежей
func NewPaymentMetrics(registry *prometheus.Registry, log *logger.Logger) PaymentMetrics {
	webhookEvents := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "The total number of processed webhook events",
		},
		[]string{"source", "type", "outcome"},
	)

	paymentsRecorded := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_recorded_total",
			Help: "The total number of payments recorded by the reconciler",
		},
		[]string{"currency", "payment_type"},
	)

	duplicatesTotal := promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "payments_duplicates_skipped_total",
			Help: "The total number of duplicate webhook deliveries skipped",
		},
	)

	paymentsAmount := promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payments_amount",
			Help:    "Payment amounts distribution",
			Buckets: prometheus.ExponentialBuckets(10, 10, 5), // 10, 100, 1000, 10000, 100000
		},
		[]string{"currency"},
	)

	return &paymentMetrics{
		log:              log,
		webhookEvents:    webhookEvents,
		paymentsRecorded: paymentsRecorded,
		duplicatesTotal:  duplicatesTotal,
		paymentsAmount:   paymentsAmount,
	}
}

// IncWebhookEvent увеличивает счетчик событий вебхуков.
// source — platform или connect, outcome — processed, ignored, duplicate или error.
func (m *paymentMetrics) IncWebhookEvent(source, eventType, outcome string) {
	m.webhookEvents.WithLabelValues(source, eventType, outcome).Inc()
}

// IncPaymentRecorded увеличивает счетчик зафиксированных платежей
func (m *paymentMetrics) IncPaymentRecorded(currency, paymentType string) {
	m.paymentsRecorded.WithLabelValues(currency, paymentType).Inc()
}

// IncDuplicateSkipped увеличивает счетчик пропущенных повторных доставок
func (m *paymentMetrics) IncDuplicateSkipped() {
	m.duplicatesTotal.Inc()
}

// ObservePaymentAmount записывает сумму платежа
func (m *paymentMetrics) ObservePaymentAmount(amount float64, currency string) {
	m.paymentsAmount.WithLabelValues(currency).Observe(amount)
}
