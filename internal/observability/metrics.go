package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ecomtrade_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// TradePostsCreated counts trade posts created.
	TradePostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ecomtrade_trade_posts_created_total",
		Help: "Total number of trade posts created",
	})

	// TradePostsDeleted counts trade posts deleted by their owners.
	TradePostsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ecomtrade_trade_posts_deleted_total",
		Help: "Total number of trade posts deleted",
	})

	// TradeRequestsCreated counts trade requests created.
	TradeRequestsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ecomtrade_trade_requests_created_total",
		Help: "Total number of trade requests created",
	})

	// TradeRequestTransitions counts pending requests moved to a terminal status.
	TradeRequestTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ecomtrade_trade_requests_transitions_total",
		Help: "Total number of trade request status transitions",
	}, []string{"status"})

	// TradeRequestsRejected counts create attempts refused by a business rule.
	TradeRequestsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ecomtrade_trade_requests_refused_total",
		Help: "Total number of trade request creations refused",
	}, []string{"reason"})

	// TradeRequestsPending is the number of pending trade requests, refreshed periodically.
	TradeRequestsPending = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ecomtrade_trade_requests_pending",
		Help: "Number of trade requests awaiting a decision",
	})

	// TradeEventsDropped counts realtime events dropped for slow clients.
	TradeEventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ecomtrade_trade_events_dropped_total",
		Help: "Total number of trade events dropped due to backpressure",
	}, []string{"reason"})
)

const queryStartKey = "observability:query_start"

// RegisterQueryMetrics hooks gorm callbacks so every statement is observed
// in DatabaseQueryLatency.
func RegisterQueryMetrics(db *gorm.DB) error {
	before := func(tx *gorm.DB) {
		tx.InstanceSet(queryStartKey, time.Now())
	}
	after := func(operation string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			v, ok := tx.InstanceGet(queryStartKey)
			if !ok {
				return
			}
			start, ok := v.(time.Time)
			if !ok {
				return
			}
			table := tx.Statement.Table
			if table == "" {
				table = "unknown"
			}
			DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
		}
	}

	cb := db.Callback()
	steps := []struct {
		op  string
		reg func(name string, before, after func(*gorm.DB)) error
	}{
		{"create", func(n string, b, a func(*gorm.DB)) error {
			if err := cb.Create().Before("gorm:create").Register(n+":before", b); err != nil {
				return err
			}
			return cb.Create().After("gorm:create").Register(n+":after", a)
		}},
		{"query", func(n string, b, a func(*gorm.DB)) error {
			if err := cb.Query().Before("gorm:query").Register(n+":before", b); err != nil {
				return err
			}
			return cb.Query().After("gorm:query").Register(n+":after", a)
		}},
		{"update", func(n string, b, a func(*gorm.DB)) error {
			if err := cb.Update().Before("gorm:update").Register(n+":before", b); err != nil {
				return err
			}
			return cb.Update().After("gorm:update").Register(n+":after", a)
		}},
		{"delete", func(n string, b, a func(*gorm.DB)) error {
			if err := cb.Delete().Before("gorm:delete").Register(n+":before", b); err != nil {
				return err
			}
			return cb.Delete().After("gorm:delete").Register(n+":after", a)
		}},
		{"row", func(n string, b, a func(*gorm.DB)) error {
			if err := cb.Row().Before("gorm:row").Register(n+":before", b); err != nil {
				return err
			}
			return cb.Row().After("gorm:row").Register(n+":after", a)
		}},
		{"raw", func(n string, b, a func(*gorm.DB)) error {
			if err := cb.Raw().Before("gorm:raw").Register(n+":before", b); err != nil {
				return err
			}
			return cb.Raw().After("gorm:raw").Register(n+":after", a)
		}},
	}
	for _, s := range steps {
		if err := s.reg("metrics:"+s.op, before, after(s.op)); err != nil {
			return err
		}
	}
	return nil
}
