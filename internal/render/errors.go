package render

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidGeometry   = errors.New("invalid geometry")
	ErrInvalidFraction   = errors.New("invalid frame fraction")
	ErrAssetDecode       = errors.New("asset decode error")
	ErrUnsupportedFormat = errors.New("unsupported asset format")
	ErrUnknownFormat     = errors.New("unknown aspect format")
	ErrMissingAlpha      = errors.New("missing alpha channel")
	ErrRenderFailed      = errors.New("render failed")
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
)

// Wrap builds an error message that carries component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrRenderFailed
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind maps an error back to the short label batch reports and API responses
// use. Unclassified errors report as "error".
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidGeometry):
		return "invalid_geometry"
	case errors.Is(err, ErrInvalidFraction):
		return "invalid_fraction"
	case errors.Is(err, ErrAssetDecode):
		return "asset_decode"
	case errors.Is(err, ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.Is(err, ErrUnknownFormat):
		return "unknown_format"
	case errors.Is(err, ErrMissingAlpha):
		return "missing_alpha"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrRenderFailed):
		return "render_failed"
	default:
		return "error"
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "render failure"
	}
	return strings.Join(parts, ": ")
}
