package http

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCORSMiddleware(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	tests := []struct {
		name    string
		enabled bool
		origins string
		wantNil bool
	}{
		{name: "disabled", enabled: false, origins: "https://example.com", wantNil: true},
		{name: "enabled without origins", enabled: true, origins: "", wantNil: true},
		{name: "enabled with only separators", enabled: true, origins: " , ,", wantNil: true},
		{name: "enabled with origins", enabled: true, origins: "https://app.example.com, https://admin.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			middleware := createCORSMiddleware(tt.enabled, tt.origins, logger)
			if tt.wantNil {
				assert.Nil(t, middleware)
			} else {
				assert.NotNil(t, middleware)
			}
		})
	}
}

func TestParseOrigins(t *testing.T) {
	assert.Equal(t,
		[]string{"https://app.example.com", "https://admin.example.com"},
		parseOrigins(" https://app.example.com ,https://admin.example.com,"),
	)
	assert.Nil(t, parseOrigins(""))
}

func newCORSRouter(t *testing.T, enabled bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	if middleware := createCORSMiddleware(enabled, "https://app.example.com", slog.New(slog.DiscardHandler)); middleware != nil {
		router.Use(middleware)
	}
	router.GET("/v1/secrets/:id", func(c *gin.Context) {
		c.Header("ETag", `"1"`)
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
	})
	router.PUT("/v1/secrets/:id/metadata", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestCORS_SimpleRequest(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/secrets/abc", nil)
		req.Header.Set("Origin", "https://app.example.com")
		newCORSRouter(t, enabled).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		if enabled {
			assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
			assert.Contains(t, strings.ToLower(w.Header().Get("Access-Control-Expose-Headers")), "etag")
		} else {
			assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
		}
	}
}

func TestCORS_PreflightAllowsSigningHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/v1/secrets/abc/metadata", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, If-Match, Cvt-Date")
	newCORSRouter(t, true).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
	allowed := strings.ToLower(w.Header().Get("Access-Control-Allow-Headers"))
	for _, header := range []string{"authorization", "if-match", "cvt-date"} {
		assert.Contains(t, allowed, header)
	}
}
