package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRequestMetrics(t *testing.T) {
	m := NewTestManager()
	e := echo.New()
	e.Use(RequestMetrics(m))
	e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	e.GET("/missing", func(c echo.Context) error { return echo.NewHTTPError(http.StatusNotFound, "nope") })

	for _, path := range []string{"/ok", "/ok", "/missing"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(m.CounterRequests.WithLabelValues(http.MethodGet, "204")); got != 2 {
		t.Errorf("GET 204 count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.CounterRequests.WithLabelValues(http.MethodGet, "404")); got != 1 {
		t.Errorf("GET 404 count = %v, want 1", got)
	}
}
