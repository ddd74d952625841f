package metrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	apperrors "github.com/allisson/delta/internal/errors"
)

// Outcome labels recorded for client operations.
const (
	OutcomeSuccess           = "success"
	OutcomeInvalidInput      = "invalid_input"
	OutcomeSigningError      = "signing_error"
	OutcomeVersionConflict   = "version_conflict"
	OutcomeNotFound          = "not_found"
	OutcomeUnauthorized      = "unauthorized"
	OutcomeForbidden         = "forbidden"
	OutcomeConflict          = "conflict"
	OutcomeRemoteError       = "remote_error"
	OutcomeMalformedResponse = "malformed_response"
	OutcomeCanceled          = "canceled"
	OutcomeTimeout           = "timeout"
	OutcomeError             = "error"
)

// operationBuckets spans local validation failures up to slow signed round trips.
var operationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// ClientMetrics records the result of Delta API client operations.
type ClientMetrics interface {
	// Observe records one finished operation. domain is "identities", "secrets" or
	// "events"; the outcome label is derived from err.
	Observe(ctx context.Context, domain, operation string, duration time.Duration, err error)
}

// Outcome maps an operation error to its metric label. More specific categories win:
// a 412 answer is a version conflict before it is a remote error.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, context.Canceled):
		return OutcomeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return OutcomeTimeout
	case errors.Is(err, apperrors.ErrInvalidInput):
		return OutcomeInvalidInput
	case errors.Is(err, apperrors.ErrSigning):
		return OutcomeSigningError
	case errors.Is(err, apperrors.ErrVersionConflict):
		return OutcomeVersionConflict
	case errors.Is(err, apperrors.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, apperrors.ErrUnauthorized):
		return OutcomeUnauthorized
	case errors.Is(err, apperrors.ErrForbidden):
		return OutcomeForbidden
	case errors.Is(err, apperrors.ErrConflict):
		return OutcomeConflict
	case errors.Is(err, apperrors.ErrRemote):
		return OutcomeRemoteError
	case errors.Is(err, apperrors.ErrMalformedResponse):
		return OutcomeMalformedResponse
	default:
		return OutcomeError
	}
}

type clientMetrics struct {
	operations metric.Int64Counter
	duration   metric.Float64Histogram
}

// NewClientMetrics creates the client instruments on meterProvider. Metric names are
// prefixed with namespace.
func NewClientMetrics(meterProvider metric.MeterProvider, namespace string) (ClientMetrics, error) {
	meter := meterProvider.Meter(namespace)

	operations, err := meter.Int64Counter(
		fmt.Sprintf("%s_client_operations_total", namespace),
		metric.WithDescription("Delta API client operations by outcome"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create client operation counter: %w", err)
	}

	duration, err := meter.Float64Histogram(
		fmt.Sprintf("%s_client_operation_duration_seconds", namespace),
		metric.WithDescription("Delta API client operation latency, including signing"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(operationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create client duration histogram: %w", err)
	}

	return &clientMetrics{operations: operations, duration: duration}, nil
}

func (m *clientMetrics) Observe(ctx context.Context, domain, operation string, duration time.Duration, err error) {
	attrs := metric.WithAttributeSet(attribute.NewSet(
		attribute.String("domain", domain),
		attribute.String("operation", operation),
		attribute.String("outcome", Outcome(err)),
	))
	m.operations.Add(ctx, 1, attrs)
	m.duration.Record(ctx, duration.Seconds(), attrs)
}

// NoOpClientMetrics discards observations. It is used when metrics are disabled.
type NoOpClientMetrics struct{}

// NewNoOpClientMetrics returns a ClientMetrics that records nothing.
func NewNoOpClientMetrics() ClientMetrics {
	return NoOpClientMetrics{}
}

// Observe implements ClientMetrics.
func (NoOpClientMetrics) Observe(context.Context, string, string, time.Duration, error) {}
