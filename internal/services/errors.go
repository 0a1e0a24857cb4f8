package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnsupportedURL  = errors.New("unsupported url")
	ErrExternalTool    = errors.New("external tool error")
	ErrMalformedOutput = errors.New("malformed tool output")
	ErrTimeout         = errors.New("timeout")
	ErrConversion      = errors.New("conversion failed")
	ErrNotFound        = errors.New("not found")
	ErrIO              = errors.New("io error")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later category classification. The marker should
// be one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Category maps an error to the stable failure category name the HTTP
// collaborator serializes. Unknown errors report as "Internal".
func Category(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidArgument):
		return "InvalidArgument"
	case errors.Is(err, ErrUnsupportedURL):
		return "UnsupportedUrl"
	case errors.Is(err, ErrTimeout):
		return "ExtractionTimeout"
	case errors.Is(err, ErrMalformedOutput):
		return "MalformedToolOutput"
	case errors.Is(err, ErrExternalTool):
		return "ExtractionFailed"
	case errors.Is(err, ErrConversion):
		return "ConversionFailed"
	case errors.Is(err, ErrNotFound):
		return "NotFound"
	case errors.Is(err, ErrIO):
		return "IoError"
	default:
		return "Internal"
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
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
