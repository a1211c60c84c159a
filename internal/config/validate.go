package config

import (
	"fmt"
	"strings"

	"psp.com/kviz/backend/internal/parser"
)

// Issue captures a validation problem with a config field.
type Issue struct {
	Field   string
	Message string
}

// ValidationError aggregates config validation issues.
type ValidationError struct {
	Issues []Issue
}

// Error renders validation errors as a multi-line string.
func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return "config validation failed"
	}
	lines := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		lines = append(lines, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return strings.Join(lines, "\n")
}

// Validate checks identifiers, formats and cross references. Mode names
// of sources, exams and exam aliases share one namespace.
func Validate(cfg *Config) error {
	var issues []Issue
	add := func(field, message string) {
		issues = append(issues, Issue{Field: field, Message: message})
	}

	if cfg.Round.Size < 1 {
		add("round.size", "must be >= 1")
	}
	if cfg.Round.PassThreshold < 0 {
		add("round.pass_threshold", "must be >= 0")
	}
	if cfg.Round.MaxSize < cfg.Round.Size {
		add("round.max_size", fmt.Sprintf("must be >= round.size (%d)", cfg.Round.Size))
	}

	formats := map[string]bool{}
	for _, name := range parser.Names() {
		formats[name] = true
	}

	modes := map[string]string{}
	claim := func(field, mode string) {
		key := strings.ToLower(mode)
		if prev, exists := modes[key]; exists {
			add(field, fmt.Sprintf("mode %q already used by %s", mode, prev))
			return
		}
		modes[key] = field
	}

	if len(cfg.Sources) == 0 {
		add("sources", "at least one source is required")
	}
	sourceIDs := map[string]bool{}
	for i, src := range cfg.Sources {
		prefix := fmt.Sprintf("sources[%d]", i)
		if src.ID == "" {
			add(prefix+".id", "is required")
		} else {
			claim(prefix+".id", src.ID)
			sourceIDs[strings.ToLower(src.ID)] = true
		}
		if strings.TrimSpace(src.Path) == "" {
			add(prefix+".path", "is required")
		}
		if !formats[src.Format] {
			add(prefix+".format", fmt.Sprintf("unsupported format %q (one of %s)", src.Format, strings.Join(parser.Names(), ", ")))
		}
	}

	for i, exam := range cfg.Exams {
		prefix := fmt.Sprintf("exams[%d]", i)
		if exam.ID == "" {
			add(prefix+".id", "is required")
		} else {
			claim(prefix+".id", exam.ID)
		}
		for j, alias := range exam.Aliases {
			if alias == "" {
				add(fmt.Sprintf("%s.aliases[%d]", prefix, j), "must not be empty")
				continue
			}
			claim(fmt.Sprintf("%s.aliases[%d]", prefix, j), alias)
		}
		if len(exam.Sources) != 2 {
			add(prefix+".sources", "must name exactly two sources")
		}
		for j, id := range exam.Sources {
			if !sourceIDs[strings.ToLower(id)] {
				add(fmt.Sprintf("%s.sources[%d]", prefix, j), fmt.Sprintf("unknown source %q", id))
			}
		}
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}
