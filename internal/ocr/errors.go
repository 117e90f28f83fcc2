package ocr

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidImage is returned before dispatch when the payload is not a
// decodable raster image.
var ErrInvalidImage = errors.New("image data is not a supported raster image")

// ConfigError means required credentials are missing. It is raised before
// any network call and is not retryable.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("ocr client not configured: missing %s", strings.Join(e.Missing, ", "))
}

// TransportError wraps a failed or timed-out round trip to the provider.
// Callers may retry.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("ocr transport failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProviderError carries a non-success provider response. The body is kept
// verbatim for diagnostics and never parsed.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("ocr provider returned status %d: %s", e.StatusCode, e.Body)
}
