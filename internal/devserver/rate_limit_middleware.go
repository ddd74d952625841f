package devserver

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	apperrors "github.com/allisson/delta/internal/errors"
	"github.com/allisson/delta/internal/httputil"
)

const (
	limiterCleanupInterval = 5 * time.Minute
	limiterIdleTTL         = time.Hour
)

// rateLimiterStore holds per-identity rate limiters with automatic cleanup.
type rateLimiterStore struct {
	limiters sync.Map // map[string]*rateLimiterEntry
	rps      float64
	burst    int
}

type rateLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
	mu         sync.Mutex
}

// RateLimitMiddleware enforces per-identity rate limiting on authenticated requests.
//
// MUST be used after AuthenticationMiddleware. Stale limiters are evicted until ctx is
// cancelled.
//
// Returns 429 Too Many Requests with a Retry-After header when the limit is exceeded.
func RateLimitMiddleware(ctx context.Context, rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := &rateLimiterStore{
		rps:   rps,
		burst: burst,
	}

	go store.cleanupStale(ctx, limiterCleanupInterval)

	return func(c *gin.Context) {
		identityID, ok := GetRequestor(c.Request.Context())
		if !ok {
			logger.Error("rate limit middleware: no authenticated identity in context")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		limiter := store.getLimiter(identityID)

		if !limiter.Allow() {
			reservation := limiter.Reserve()
			retryAfter := max(1, int(math.Ceil(reservation.Delay().Seconds())))
			reservation.Cancel()

			logger.Debug("rate limited identity", slog.String("identity_id", identityID))
			httputil.HandleTooManyRequestsGin(c, retryAfter, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}

// getLimiter retrieves or creates the limiter of an identity.
func (s *rateLimiterStore) getLimiter(identityID string) *rate.Limiter {
	val, _ := s.limiters.LoadOrStore(identityID, &rateLimiterEntry{
		limiter: rate.NewLimiter(rate.Limit(s.rps), s.burst),
	})
	entry := val.(*rateLimiterEntry)
	entry.mu.Lock()
	entry.lastAccess = time.Now()
	entry.mu.Unlock()
	return entry.limiter
}

// cleanupStale periodically drops limiters idle for longer than limiterIdleTTL.
func (s *rateLimiterStore) cleanupStale(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.evictIdle(time.Now().Add(-limiterIdleTTL))
		}
	}
}

func (s *rateLimiterStore) evictIdle(threshold time.Time) {
	s.limiters.Range(func(key, value any) bool {
		entry := value.(*rateLimiterEntry)
		entry.mu.Lock()
		idle := entry.lastAccess.Before(threshold)
		entry.mu.Unlock()

		if idle {
			s.limiters.Delete(key)
		}
		return true
	})
}
