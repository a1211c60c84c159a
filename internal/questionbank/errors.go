package questionbank

import (
	"fmt"
	"strings"
)

// NotFoundError reports a source location that does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("source not found: %s", e.Path)
}

// FormatError reports a source that was readable but held no usable
// question/answer structure. Skip counters are zero when the strategy
// does not track them.
type FormatError struct {
	Source       string
	Reason       string
	BlankRows    int
	UnmarkedRows int
}

func (e *FormatError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Source, e.Reason)
	if e.BlankRows > 0 || e.UnmarkedRows > 0 {
		msg += fmt.Sprintf(" (skipped %d blank rows, %d rows without question mark)", e.BlankRows, e.UnmarkedRows)
	}
	return msg
}

// ConfigurationError reports a header row or strategy setting that cannot
// be resolved to the columns a strategy needs.
type ConfigurationError struct {
	Source string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Source == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Reason)
}

// Shortfall describes one pool that cannot supply its share of a draw.
type Shortfall struct {
	Source    string
	Requested int
	Available int
}

// ValidationError reports a sample request the banks cannot satisfy.
type ValidationError struct {
	Reason     string
	Requested  int
	Available  int
	Shortfalls []Shortfall
}

func (e *ValidationError) Error() string {
	if len(e.Shortfalls) == 0 {
		return e.Reason
	}
	parts := make([]string, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		parts = append(parts, fmt.Sprintf("%s: %d requested, %d available", s.Source, s.Requested, s.Available))
	}
	return fmt.Sprintf("%s (%s)", e.Reason, strings.Join(parts, "; "))
}
