package faults

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks malformed or inconsistent input data. Fatal for the
	// whole run; raised before any rendering starts.
	ErrValidation = errors.New("validation error")
	// ErrInsufficientFrames marks a series too short to animate. Fatal for the
	// whole run; checked before any rendering starts.
	ErrInsufficientFrames = errors.New("insufficient frames")
	// ErrComposition marks a frame that cannot be composed onto the target
	// canvas within tolerance. Fatal for that aspect ratio's variants only.
	ErrComposition = errors.New("composition error")
	// ErrEncoding marks a container-specific encode failure. Fatal for that
	// format variant only.
	ErrEncoding = errors.New("encoding error")
	// ErrConfiguration marks unusable configuration.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes pipeline context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrEncoding
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// AbortsRun reports whether the error should stop the whole pipeline run
// rather than a single output variant.
func AbortsRun(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInsufficientFrames) ||
		errors.Is(err, ErrConfiguration)
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
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
