package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "centavo_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "centavo_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	TransactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "centavo_transactions_total",
			Help: "Total number of transactions recorded",
		},
		[]string{"type"},
	)

	TransactionsDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "centavo_transactions_deleted_total",
			Help: "Total number of transactions deleted",
		},
	)

	TeamExpensesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "centavo_team_expenses_total",
			Help: "Total number of team expenses recorded",
		},
		[]string{"split_type"},
	)

	SettlementsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "centavo_settlements_total",
			Help: "Total number of debt settlements recorded",
		},
	)

	BudgetAlertsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "centavo_budget_alerts_total",
			Help: "Total number of budget threshold alerts fired",
		},
	)

	NotificationsQueuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "centavo_notifications_queued_total",
			Help: "Total number of notifications queued",
		},
		[]string{"type", "status"},
	)

	NotificationQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "centavo_notification_queue_length",
			Help: "Current length of the notification queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordTransaction(txType string) {
	TransactionsTotal.WithLabelValues(txType).Inc()
}

func RecordTransactionDeleted() {
	TransactionsDeletedTotal.Inc()
}

func RecordTeamExpense(splitType string) {
	TeamExpensesTotal.WithLabelValues(splitType).Inc()
}

func RecordSettlement() {
	SettlementsTotal.Inc()
}

func RecordBudgetAlert() {
	BudgetAlertsTotal.Inc()
}

func RecordNotification(notifType, status string) {
	NotificationsQueuedTotal.WithLabelValues(notifType, status).Inc()
}
