package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	provider, err := NewProvider("delta")
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, provider.Shutdown(context.Background())) })

	router := gin.New()
	router.Use(HTTPMetricsMiddleware(provider.MeterProvider(), "delta"))
	v1 := router.Group("/v1")
	v1.GET("/secrets/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
	})
	v1.DELETE("/secrets/:id", func(c *gin.Context) {
		c.Status(http.StatusForbidden)
	})

	requests := []struct {
		method string
		path   string
		want   int
	}{
		{method: http.MethodGet, path: "/v1/secrets/0195f2a4-1111", want: http.StatusOK},
		{method: http.MethodGet, path: "/v1/secrets/0195f2a4-2222", want: http.StatusOK},
		{method: http.MethodDelete, path: "/v1/secrets/0195f2a4-1111", want: http.StatusForbidden},
		{method: http.MethodGet, path: "/v1/nowhere", want: http.StatusNotFound},
	}
	for _, r := range requests {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(r.method, r.path, nil))
		require.Equal(t, r.want, w.Code, r.path)
	}

	body := scrape(t, provider)
	assert.Contains(t, body, "delta_http_requests")
	assert.Contains(t, body, "delta_http_requests_in_flight")
	assert.Contains(t, body, `route="/v1/secrets/:id"`)
	assert.Contains(t, body, `route="unmatched"`)
	assert.Contains(t, body, `status_code="403"`)
	assert.NotContains(t, body, "0195f2a4-1111")
}

func TestHTTPMetricsMiddleware_NoopProvider(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(HTTPMetricsMiddleware(noop.NewMeterProvider(), "delta"))
	router.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "unmatched", routeLabel(""))
	assert.Equal(t, "/v1/identities/:id", routeLabel("/v1/identities/:id"))
}
