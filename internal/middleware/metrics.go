package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts failed Redis commands by operation.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ecomtrade_redis_errors_total",
		Help: "Total number of Redis command errors",
	}, []string{"operation"})

	// ActiveWebSockets is the number of open trade event streams.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ecomtrade_active_websockets",
		Help: "Number of open websocket connections",
	})
)

var (
	promMu        sync.Mutex
	promByService = map[string]*fiberprometheus.FiberPrometheus{}
)

// InitMetrics returns the HTTP metrics collector for serviceName. Collectors
// register with the default registry once per name and are shared afterwards.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promMu.Lock()
	defer promMu.Unlock()

	if prom, ok := promByService[serviceName]; ok {
		return prom
	}
	prom := fiberprometheus.New(serviceName)
	prom.SetSkipPaths([]string{"/metrics", "/health/live", "/health/ready"})
	promByService[serviceName] = prom
	return prom
}

// MetricsMiddleware records request count and latency for every route.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
