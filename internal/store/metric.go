package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	opRefresh = "refresh"
	opAdd     = "add"
	opUpdate  = "update"
	opRemove  = "remove"

	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "autoparts",
		Subsystem: "store",
		Name:      "operations_total",
		Help:      "Resource store operations by collection, operation and outcome.",
	}, []string{"collection", "operation", "outcome"})

	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "autoparts",
		Subsystem: "store",
		Name:      "operation_duration_seconds",
		Help:      "Duration of resource store operations including the API round trip.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"collection", "operation"})
)
