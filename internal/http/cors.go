package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/allisson/delta/internal/signer"
)

// corsAllowHeaders are the request headers a browser client needs to sign and send.
var corsAllowHeaders = []string{
	"Authorization",
	"Content-Type",
	signer.DateHeader,
	"If-Match",
	"X-Request-Id",
}

// corsExposeHeaders carry metadata versions, created resources and request ids.
var corsExposeHeaders = []string{"ETag", "Location", "X-Request-Id"}

// createCORSMiddleware returns nil unless CORS is enabled with at least one origin in
// the comma-separated allowOrigins list.
func createCORSMiddleware(enabled bool, allowOrigins string, logger *slog.Logger) gin.HandlerFunc {
	if !enabled {
		return nil
	}

	origins := parseOrigins(allowOrigins)
	if len(origins) == 0 {
		logger.Warn("CORS enabled but no origins configured, skipping")
		return nil
	}
	logger.Info("CORS enabled", slog.Any("origins", origins))

	return cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
		},
		AllowHeaders:     corsAllowHeaders,
		ExposeHeaders:    corsExposeHeaders,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// parseOrigins splits a comma-separated list, dropping blanks.
func parseOrigins(s string) []string {
	var origins []string
	for part := range strings.SplitSeq(s, ",") {
		if origin := strings.TrimSpace(part); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
