package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrParse marks interpretation failures: the model produced
	// unparsable or schema-invalid intent output.
	ErrParse = errors.New("parse error")
	// ErrStrategy marks query-strategy generation failures.
	ErrStrategy = errors.New("strategy error")
	// ErrSource marks a single source adapter failure. Non-fatal on its
	// own; fatal only when every adapter fails.
	ErrSource = errors.New("source error")
	// ErrSourcesExhausted marks total source failure: no adapter
	// returned a single candidate across all issued variants. Fatal,
	// unlike ErrSource.
	ErrSourcesExhausted = errors.New("all sources failed")
	// ErrEvaluation marks evaluator failures: malformed, misaligned, or
	// (under the reject policy) out-of-range scoring output.
	ErrEvaluation = errors.New("evaluation error")
	// ErrTransfer marks transfer engine failures.
	ErrTransfer = errors.New("transfer error")
	// ErrConfiguration marks invalid configuration detected at load or
	// session creation.
	ErrConfiguration = errors.New("configuration error")
	// ErrTimeout marks deadline and per-call timeout failures.
	ErrTimeout = errors.New("timeout")
)

// Wrap builds an error message that includes operation context while
// tagging it with the provided marker for later classification. The
// marker should be one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrSource
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Fatal reports whether an error must terminate a session rather than
// be absorbed as a per-adapter warning.
func Fatal(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrSource):
		return false
	default:
		return true
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
