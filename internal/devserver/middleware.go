package devserver

import (
	"bytes"
	"io"
	"log/slog"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/delta/internal/errors"
	"github.com/allisson/delta/internal/httputil"
	"github.com/allisson/delta/internal/signer"
)

// maxRequestBytes bounds the body read for signature verification.
const maxRequestBytes = 1 << 20

// AuthenticationMiddleware verifies the CVT1 request signature and stores the signing
// identity in the request context.
//
// The body is read in full so its hash can be checked, then restored for the handler.
//
// Error handling:
//   - Missing, malformed or stale Authorization → 401 Unauthorized
//   - Unknown identity or bad signature → 401 Unauthorized
//   - Unreadable body → 400 Bad Request
func AuthenticationMiddleware(verifier *signer.Verifier, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxRequestBytes))
		if err != nil {
			httputil.HandleBadRequestGin(c, err, logger)
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		identityID, err := verifier.Verify(c.Request, body)
		if err != nil {
			logger.Debug("authentication failed", slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithRequestor(c.Request.Context(), identityID))

		logger.Debug("authentication successful", slog.String("identity_id", identityID))

		c.Next()
	}
}
