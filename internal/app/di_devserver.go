package app

import (
	"context"
	"fmt"

	"github.com/allisson/delta/internal/devserver"
	"github.com/allisson/delta/internal/http"
)

// DevStore returns the in-memory state of the development server.
func (c *Container) DevStore() *devserver.Store {
	c.devStoreInit.Do(func() {
		c.devStore = devserver.NewStore(nil)
	})
	return c.devStore
}

// HTTPServer returns the development API server. ctx bounds background work such as
// rate limiter cleanup.
func (c *Container) HTTPServer(ctx context.Context) (*http.Server, error) {
	c.httpServerInit.Do(func() {
		server, err := c.initHTTPServer(ctx)
		if err != nil {
			c.setInitError("httpServer", err)
			return
		}
		c.mu.Lock()
		c.httpServer = server
		c.mu.Unlock()
	})
	if err := c.initError("httpServer"); err != nil {
		return nil, err
	}
	return c.httpServer, nil
}

// MetricsServer returns the Prometheus metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	c.metricsServerInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.setInitError("metricsServer", fmt.Errorf("failed to get metrics provider for metrics server: %w", err))
			return
		}
		if provider == nil {
			return
		}
		server := http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider)
		c.mu.Lock()
		c.metricsServer = server
		c.mu.Unlock()
	})
	if err := c.initError("metricsServer"); err != nil {
		return nil, err
	}
	return c.metricsServer, nil
}

// initHTTPServer creates the dev server with its router fully configured.
func (c *Container) initHTTPServer(ctx context.Context) (*http.Server, error) {
	logger := c.Logger()

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	handler := devserver.NewHandler(ctx, c.DevStore(), devserver.Config{
		MaxSkew:          c.config.SignatureMaxSkew,
		RateLimitEnabled: c.config.RateLimitEnabled,
		RateLimitRPS:     c.config.RateLimitRequestsPerSec,
		RateLimitBurst:   c.config.RateLimitBurst,
	}, logger)

	routerCfg := http.RouterConfig{
		CORSEnabled:      c.config.CORSEnabled,
		CORSAllowOrigins: c.config.CORSAllowOrigins,
		MetricsNamespace: c.config.MetricsNamespace,
	}
	if provider != nil {
		routerCfg.MeterProvider = provider.MeterProvider()
	}

	server := http.NewServer(c.config.ServerHost, c.config.ServerPort, logger)
	server.SetupRouter(routerCfg, handler)
	return server, nil
}
