// Package client implements the Delta ApiClient: one method per remote operation.
// Every operation checks its arguments first, builds the request, signs it on behalf
// of the requestor, sends it and maps the response to a domain record or a typed
// error from internal/errors.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/allisson/delta/internal/client/dto"
	apperrors "github.com/allisson/delta/internal/errors"
	"github.com/allisson/delta/internal/signer"
)

const (
	// DefaultBaseURL is the public Delta endpoint.
	DefaultBaseURL = "https://delta.covata.io/v1"

	// RequestIDHeader carries a per-request id that the server echoes in its logs.
	RequestIDHeader = "X-Request-Id"

	maxResponseBytes   = 10 << 20
	maxErrorBodyLength = 1024
)

// Client talks to a Delta service. It keeps no server state and is safe for concurrent
// use when its http.Client and signer are.
type Client struct {
	baseURL    string
	httpClient *http.Client
	signer     signer.RequestSigner
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRateLimiter throttles outgoing requests.
func WithRateLimiter(limiter *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// WithLogger sets the logger used for request level debug logs.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client for the service rooted at baseURL.
func New(baseURL string, s signer.RequestSigner, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "invalid base url %q", baseURL)
	}
	if s == nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "request signer is required")
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		signer:     s,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// request describes one round trip.
type request struct {
	method string
	// segments are joined to the base URL and escaped individually.
	segments []string
	query    url.Values
	body     any
	// requestorID signs the request; empty means unsigned.
	requestorID string
	// ifMatch adds a version precondition when set.
	ifMatch *int
	accept  string
}

// response is a successful (2xx) round trip.
type response struct {
	header http.Header
	body   []byte
}

func (c *Client) endpoint(segments []string, query url.Values) string {
	escaped := make([]string, len(segments))
	for i, segment := range segments {
		escaped[i] = url.PathEscape(segment)
	}
	endpoint := c.baseURL + "/" + strings.Join(escaped, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	return endpoint
}

func (c *Client) do(ctx context.Context, r *request) (*response, error) {
	endpoint := c.endpoint(r.segments, r.query)

	var payload []byte
	header := make(http.Header)
	if r.body != nil {
		var err error
		if payload, err = json.Marshal(r.body); err != nil {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "failed to encode request body: %v", err)
		}
		header.Set("Content-Type", dto.ContentTypeJSON)
	}
	accept := r.accept
	if accept == "" {
		accept = dto.ContentTypeJSON
	}
	header.Set("Accept", accept)
	requestID := uuid.Must(uuid.NewV7()).String()
	header.Set(RequestIDHeader, requestID)
	if r.ifMatch != nil {
		header.Set("If-Match", strconv.Itoa(*r.ifMatch))
	}

	if r.requestorID != "" {
		signed, err := c.signer.Sign(ctx, r.requestorID, r.method, endpoint, header, payload)
		if err != nil {
			return nil, err
		}
		header = signed
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header = header

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", r.method, endpoint, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%s %s: failed to read response: %w", r.method, endpoint, err)
	}

	c.logger.DebugContext(ctx, "delta request",
		slog.String("method", r.method),
		slog.String("path", req.URL.Path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
		slog.String("request_id", requestID),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &apperrors.RemoteError{
			Method:      r.method,
			URL:         endpoint,
			StatusCode:  resp.StatusCode,
			Body:        truncate(strings.TrimSpace(string(body)), maxErrorBodyLength),
			Conditional: r.ifMatch != nil,
		}
	}
	return &response{header: resp.Header, body: body}, nil
}

// decode unmarshals a successful JSON response.
func decode(resp *response, v any) error {
	if err := json.Unmarshal(resp.body, v); err != nil {
		return apperrors.Wrapf(apperrors.ErrMalformedResponse, "failed to decode response: %v", err)
	}
	return nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func checkVersion(version int) error {
	if version < 1 {
		return apperrors.Wrapf(apperrors.ErrInvalidInput, "version: must be a positive integer, got %d", version)
	}
	return nil
}

func addMetadata(query url.Values, metadata map[string]string) {
	for key, value := range metadata {
		query.Set(dto.MetadataParamPrefix+key, value)
	}
}

func addPage(query url.Values, page, pageSize *int) {
	if page != nil {
		query.Set(dto.ParamPage, strconv.Itoa(*page))
	}
	if pageSize != nil {
		query.Set(dto.ParamPageSize, strconv.Itoa(*pageSize))
	}
}
