package devserver

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allisson/delta/internal/client/dto"
	apperrors "github.com/allisson/delta/internal/errors"
	eventsDomain "github.com/allisson/delta/internal/events/domain"
	"github.com/allisson/delta/internal/httputil"
	identityDomain "github.com/allisson/delta/internal/identity/domain"
	secretsDomain "github.com/allisson/delta/internal/secrets/domain"
	"github.com/allisson/delta/internal/signer"
)

// APIPrefix is the path under which all resources are served.
const APIPrefix = "/v1"

// Config tunes request authentication and throttling.
type Config struct {
	// MaxSkew bounds the accepted difference between Cvt-Date and the server clock.
	MaxSkew time.Duration
	// Clock overrides time.Now for signature freshness checks.
	Clock            func() time.Time
	RateLimitEnabled bool
	RateLimitRPS     float64
	RateLimitBurst   int
}

// Handler serves the Delta HTTP API from a Store.
type Handler struct {
	store     *Store
	verifier  *signer.Verifier
	rateLimit gin.HandlerFunc
	logger    *slog.Logger
}

// NewHandler creates a Handler. The rate limiter's background cleanup stops when ctx
// is cancelled.
func NewHandler(ctx context.Context, store *Store, cfg Config, logger *slog.Logger) *Handler {
	maxSkew := cfg.MaxSkew
	if maxSkew <= 0 {
		maxSkew = signer.DefaultMaxSkew
	}
	var opts []signer.Option
	if cfg.Clock != nil {
		opts = append(opts, signer.WithClock(cfg.Clock))
	}

	h := &Handler{
		store:    store,
		verifier: signer.NewVerifier(store, maxSkew, opts...),
		logger:   logger,
	}
	if cfg.RateLimitEnabled {
		h.rateLimit = RateLimitMiddleware(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst, logger)
	}
	return h
}

// RegisterRoutes mounts the API under APIPrefix. Identity registration is the only
// unsigned route.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	v1 := r.Group(APIPrefix)
	v1.POST("/identities", h.RegisterIdentityHandler)

	middleware := []gin.HandlerFunc{AuthenticationMiddleware(h.verifier, h.logger)}
	if h.rateLimit != nil {
		middleware = append(middleware, h.rateLimit)
	}
	signed := v1.Group("", middleware...)
	{
		signed.GET("/identities", h.FindIdentitiesHandler)
		signed.GET("/identities/:id", h.GetIdentityHandler)
		signed.PUT("/identities/:id", h.UpdateIdentityHandler)

		signed.POST("/secrets", h.CreateSecretHandler)
		signed.GET("/secrets", h.ListSecretsHandler)
		signed.GET("/secrets/:id", h.GetSecretHandler)
		signed.DELETE("/secrets/:id", h.DeleteSecretHandler)
		signed.GET("/secrets/:id/metadata", h.GetSecretMetadataHandler)
		signed.PUT("/secrets/:id/metadata", h.UpdateSecretMetadataHandler)
		signed.GET("/secrets/:id/content", h.GetSecretContentHandler)

		signed.GET("/events", h.ListEventsHandler)
	}
}

// RegisterIdentityHandler handles POST /v1/identities.
func (h *Handler) RegisterIdentityHandler(c *gin.Context) {
	var req dto.RegisterIdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	identityID, err := h.store.RegisterIdentity(c.Request.Context(), &identityDomain.RegisterIdentityInput{
		PublicEncryptionKey: req.CryptoPublicKey,
		PublicSigningKey:    req.SigningPublicKey,
		ExternalID:          req.ExternalID,
		Metadata:            req.Metadata,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Header("Location", resourceURL(c, "identities", identityID))
	c.JSON(http.StatusCreated, dto.RegisterIdentityResponse{IdentityID: identityID})
}

// GetIdentityHandler handles GET /v1/identities/:id.
func (h *Handler) GetIdentityHandler(c *gin.Context) {
	identity, err := h.store.GetIdentity(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Header("ETag", dto.FormatETag(identity.Version))
	c.JSON(http.StatusOK, dto.MapIdentityToResponse(identity))
}

// FindIdentitiesHandler handles GET /v1/identities?metadata.<key>=<value>.
func (h *Handler) FindIdentitiesHandler(c *gin.Context) {
	page, pageSize, err := httputil.ParsePage(c, dto.ParamPage, dto.ParamPageSize)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	identities, err := h.store.FindIdentities(c.Request.Context(), metadataQuery(c), page, pageSize)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	out := make([]dto.IdentityResponse, 0, len(identities))
	for _, identity := range identities {
		out = append(out, dto.MapIdentityToResponse(identity))
	}
	c.JSON(http.StatusOK, out)
}

// UpdateIdentityHandler handles PUT /v1/identities/:id.
func (h *Handler) UpdateIdentityHandler(c *gin.Context) {
	version, ok := h.ifMatch(c)
	if !ok {
		return
	}

	var req dto.UpdateIdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	newVersion, err := h.store.UpdateIdentityMetadata(
		c.Request.Context(), requestor(c), c.Param("id"), req.Metadata, version)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Header("ETag", dto.FormatETag(newVersion))
	c.Status(http.StatusNoContent)
}

// CreateSecretHandler handles POST /v1/secrets. A body naming baseSecret and
// rsaKeyOwner shares an existing base secret.
func (h *Handler) CreateSecretHandler(c *gin.Context) {
	var req dto.CreateSecretRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	secret, err := h.store.CreateSecret(
		c.Request.Context(),
		origin(c),
		requestor(c),
		req.Content,
		req.EncryptionDetails,
		req.BaseSecret,
		req.RSAKeyOwner,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	secret.Href = resourceURL(c, "secrets", secret.ID)
	c.Header("Location", secret.Href)
	c.JSON(http.StatusCreated, dto.MapSecretToResponse(secret))
}

// GetSecretHandler handles GET /v1/secrets/:id. Content is served separately.
func (h *Handler) GetSecretHandler(c *gin.Context) {
	secret, err := h.store.GetSecret(c.Request.Context(), requestor(c), c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	secret.Href = resourceURL(c, "secrets", secret.ID)
	c.JSON(http.StatusOK, dto.MapSecretToResponse(secret))
}

// DeleteSecretHandler handles DELETE /v1/secrets/:id.
func (h *Handler) DeleteSecretHandler(c *gin.Context) {
	if err := h.store.DeleteSecret(c.Request.Context(), origin(c), requestor(c), c.Param("id")); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetSecretMetadataHandler handles GET /v1/secrets/:id/metadata.
func (h *Handler) GetSecretMetadataHandler(c *gin.Context) {
	metadata, err := h.store.GetSecretMetadata(c.Request.Context(), requestor(c), c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Header("ETag", dto.FormatETag(metadata.Version))
	c.JSON(http.StatusOK, metadata.Entries)
}

// UpdateSecretMetadataHandler handles PUT /v1/secrets/:id/metadata.
func (h *Handler) UpdateSecretMetadataHandler(c *gin.Context) {
	version, ok := h.ifMatch(c)
	if !ok {
		return
	}

	var metadata map[string]string
	if err := c.ShouldBindJSON(&metadata); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	newVersion, err := h.store.UpdateSecretMetadata(
		c.Request.Context(), requestor(c), c.Param("id"), metadata, version)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Header("ETag", dto.FormatETag(newVersion))
	c.Status(http.StatusNoContent)
}

// GetSecretContentHandler handles GET /v1/secrets/:id/content.
func (h *Handler) GetSecretContentHandler(c *gin.Context) {
	content, err := h.store.GetSecretContent(c.Request.Context(), origin(c), requestor(c), c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusOK, dto.ContentTypeText+"; charset=utf-8", []byte(content))
}

// ListSecretsHandler handles GET /v1/secrets.
func (h *Handler) ListSecretsHandler(c *gin.Context) {
	page, pageSize, err := httputil.ParsePage(c, dto.ParamPage, dto.ParamPageSize)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	filter := SecretFilter{
		CreatedBy:     c.Query(dto.ParamCreatedBy),
		RSAKeyOwnerID: c.Query(dto.ParamRSAKeyOwner),
		Metadata:      metadataQuery(c),
		Page:          page,
		PageSize:      pageSize,
	}
	// baseSecret=true asks for derived secrets (those that have a base), false for
	// base secrets; any other value names the base secret.
	switch base := c.Query(dto.ParamBaseSecret); base {
	case "":
	case strconv.FormatBool(true):
		filter.Lookup = secretsDomain.LookupDerived
	case strconv.FormatBool(false):
		filter.Lookup = secretsDomain.LookupBase
	default:
		filter.BaseSecretID = base
	}

	secrets, err := h.store.ListSecrets(c.Request.Context(), requestor(c), filter)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	out := make([]dto.SecretResponse, 0, len(secrets))
	for _, secret := range secrets {
		secret.Href = resourceURL(c, "secrets", secret.ID)
		out = append(out, dto.MapSecretToResponse(secret))
	}
	c.JSON(http.StatusOK, out)
}

// ListEventsHandler handles GET /v1/events.
func (h *Handler) ListEventsHandler(c *gin.Context) {
	if purpose, ok := c.GetQuery(dto.ParamPurpose); ok && purpose != eventsDomain.AuditPurpose {
		httputil.HandleErrorGin(c,
			apperrors.Wrapf(apperrors.ErrInvalidInput, "unsupported event purpose %q", purpose), h.logger)
		return
	}

	events, err := h.store.ListEvents(c.Request.Context(), requestor(c), EventFilter{
		SecretID:      c.Query(dto.ParamSecretID),
		RSAKeyOwnerID: c.Query(dto.ParamRSAKeyOwner),
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	out := make([]dto.EventResponse, 0, len(events))
	for _, event := range events {
		out = append(out, dto.MapEventToResponse(event))
	}
	c.JSON(http.StatusOK, out)
}

// ifMatch reads the If-Match version, writing the error response when it is absent or
// malformed.
func (h *Handler) ifMatch(c *gin.Context) (int, bool) {
	raw := c.GetHeader("If-Match")
	if raw == "" {
		httputil.HandlePreconditionRequiredGin(c, h.logger)
		return 0, false
	}
	version, err := dto.ParseIfMatch(raw)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return 0, false
	}
	return version, true
}

func requestor(c *gin.Context) string {
	identityID, _ := GetRequestor(c.Request.Context())
	return identityID
}

func origin(c *gin.Context) Origin {
	return Origin{Host: c.Request.Host, SourceIP: c.ClientIP()}
}

func metadataQuery(c *gin.Context) map[string]string {
	metadata := map[string]string{}
	for key, values := range c.Request.URL.Query() {
		if name, ok := strings.CutPrefix(key, dto.MetadataParamPrefix); ok && len(values) > 0 {
			metadata[name] = values[0]
		}
	}
	return metadata
}

func resourceURL(c *gin.Context, resource, id string) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host + APIPrefix + "/" + resource + "/" + id
}
