package config

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sale-path counters, exposed on /metrics via promhttp.
var (
	SalesRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cafepos_sales_recorded_total",
		Help: "Number of sales committed successfully.",
	})

	SalesRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cafepos_sales_rejected_total",
		Help: "Number of sales rejected before commit, by reason.",
	}, []string{"reason"})

	LowStockEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cafepos_low_stock_events_total",
		Help: "Number of low-stock notifications enqueued.",
	})

	TableSyncFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cafepos_table_sync_failures_total",
		Help: "Number of table occupancy sync attempts that failed and were swallowed.",
	})
)
