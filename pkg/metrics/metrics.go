package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts handled HTTP requests by method, path and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_http_requests_total",
		Help: "Handled HTTP requests",
	}, []string{"method", "path", "status"})

	// TransactionEvents counts emitted transaction lifecycle events by kind.
	TransactionEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_transaction_events_total",
		Help: "Transaction lifecycle events emitted by the worker",
	}, []string{"event"})

	// TransactionOutcomes counts terminal transaction outcomes.
	TransactionOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_transaction_outcomes_total",
		Help: "Terminal transaction outcomes",
	}, []string{"outcome"})

	// ConfirmationPolls counts receipt lookups during confirmation.
	ConfirmationPolls = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wallet_confirmation_polls_total",
		Help: "Receipt polls performed while waiting for confirmation",
	})
)
