package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CallbacksReceived counts provider webhook deliveries by service type.
	CallbacksReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gidx_callbacks_received_total",
		Help: "Provider callbacks received",
	}, []string{"service_type"})

	// CallbacksFailed counts callbacks whose processing was aborted.
	CallbacksFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gidx_callbacks_failed_total",
		Help: "Provider callbacks that failed processing",
	}, []string{"reason"})

	// StatusTransitions counts payment request status transitions.
	StatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gidx_payment_status_transitions_total",
		Help: "Payment request status transitions",
	}, []string{"type", "new_status"})

	// LedgerTransactions counts ledger transactions created through the engine.
	LedgerTransactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gidx_ledger_transactions_total",
		Help: "Ledger transactions created",
	}, []string{"type"})
)
