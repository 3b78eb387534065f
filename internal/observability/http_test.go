package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestSurfaceClassifiesRoutes(t *testing.T) {
	cases := map[string]string{
		"/api/admin/reviews/program":   "review",
		"/api/admin/reviews":           "review",
		"/api/admin/activities":        "admin",
		"/api/admin/reviewsx":          "admin",
		"/api/v1/notifications/3/read": "notification",
		"/api/v1/company-requests":     "intake",
		"/api/v1/mentor-applications":  "intake",
		"/api/v1/programs":             "intake",
		"/api/v1/health":               "public",
		"/api/seed/reviews":            "seed",
		"/metrics":                     "",
		"/":                            "",
	}
	for path, want := range cases {
		require.Equal(t, want, Surface(path), path)
	}
}

func TestMetricsHandlerExposesReviewCollectors(t *testing.T) {
	ReviewDecisions().WithLabelValues("program", "approved").Inc()

	app := fiber.New()
	app.Get("/metrics", MetricsHandler())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "review_decisions_total")
}
