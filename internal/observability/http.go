package observability

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler exposes the Prometheus scrape endpoint. A collector that
// fails to gather is reported in the body without failing the scrape.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	handler := promhttp.InstrumentMetricHandler(
		prometheus.DefaultRegisterer,
		promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
			ErrorHandling:       promhttp.ContinueOnError,
			MaxRequestsInFlight: 4,
		}),
	)
	return adaptor.HTTPHandler(handler)
}

// Surface classifies a request path into the API area it belongs to.
func Surface(path string) string {
	switch {
	case hasPrefix(path, "/api/admin/reviews"):
		return "review"
	case hasPrefix(path, "/api/admin"):
		return "admin"
	case hasPrefix(path, "/api/v1/notifications"):
		return "notification"
	case hasPrefix(path, "/api/v1/company-requests"),
		hasPrefix(path, "/api/v1/mentor-applications"),
		hasPrefix(path, "/api/v1/programs"):
		return "intake"
	case hasPrefix(path, "/api/seed"):
		return "seed"
	case hasPrefix(path, "/api"):
		return "public"
	default:
		return ""
	}
}

func hasPrefix(path, prefix string) bool {
	if len(path) < len(prefix) || path[:len(prefix)] != prefix {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}
