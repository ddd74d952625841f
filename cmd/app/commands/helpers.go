// Package commands contains CLI command implementations for the application.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/allisson/delta/internal/app"
	"github.com/allisson/delta/internal/errors"
)

// IOTuple holds reader and writer for commands, allowing for testing.
type IOTuple struct {
	Reader io.Reader
	Writer io.Writer
}

// DefaultIO returns an IOTuple with os.Stdin and os.Stdout.
func DefaultIO() IOTuple {
	return IOTuple{
		Reader: os.Stdin,
		Writer: os.Stdout,
	}
}

// closeContainer closes all resources in the container and logs any errors.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

// parseKeyValues converts repeated key=value flags into a map. Later keys win.
func parseKeyValues(flag string, pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "%s: expected key=value, got %q", flag, pair)
		}
		out[key] = value
	}
	return out, nil
}

// checkFormat rejects output formats other than text and json.
func checkFormat(format string) error {
	switch format {
	case "text", "json":
		return nil
	default:
		return errors.Wrapf(errors.ErrInvalidInput, "invalid format: %s (valid options: text, json)", format)
	}
}

// readContent returns value, or the whole reader when value is "-".
func readContent(value string, r io.Reader) (string, error) {
	if value != "-" {
		return value, nil
	}
	if r == nil {
		return "", errors.Wrap(errors.ErrInvalidInput, "content: no input to read from")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read content: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// optional returns nil for an empty string.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// optionalInt returns nil for zero.
func optionalInt(n int) *int {
	if n == 0 {
		return nil
	}
	return &n
}

// outputJSON writes v as indented JSON.
func outputJSON(v any, w io.Writer) {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(w, "Error: failed to marshal JSON: %v\n", err)
		return
	}
	_, _ = fmt.Fprintln(w, string(jsonBytes))
}

// writeMetadata prints metadata entries in a stable order.
func writeMetadata(w io.Writer, metadata map[string]string) {
	if len(metadata) == 0 {
		_, _ = fmt.Fprintln(w, "Metadata: (none)")
		return
	}
	_, _ = fmt.Fprintln(w, "Metadata:")
	for _, key := range slices.Sorted(maps.Keys(metadata)) {
		_, _ = fmt.Fprintf(w, "  %s=%s\n", key, metadata[key])
	}
}
