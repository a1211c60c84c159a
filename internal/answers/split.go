// Package answers splits a raw answer cell into the individual accepted
// answers it lists.
package answers

import (
	"regexp"
	"strings"
)

// Policy selects which separators Split may use. Separators are tried in
// a fixed priority order: bullet lines, inline " - ", semicolon, vertical
// bar, comma. The first one found in the cell wins and the rest are not
// considered. A forward slash never separates answers.
type Policy struct {
	Bullets      bool
	InlineHyphen bool
	Semicolon    bool
	Pipe         bool
	Comma        bool
}

var (
	// Standard is used for answer columns of header-bearing CSV sources.
	Standard = Policy{Bullets: true, InlineHyphen: true, Semicolon: true}
	// Delimited is used for flattened rows where only plain delimiters occur.
	Delimited = Policy{Semicolon: true, Pipe: true, Comma: true}
	// SemicolonOnly is used for simple inline enumerations.
	SemicolonOnly = Policy{Semicolon: true}
)

var (
	bulletLine   = regexp.MustCompile(`^\s*-\s+(.*)$`)
	inlineHyphen = regexp.MustCompile(`\s-\s+`)
)

// Normalize converts \r\n and \r line endings to \n.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// Split returns the trimmed, non-empty answers of cell under policy. An
// empty cell yields an empty list.
func Split(cell string, policy Policy) []string {
	txt := strings.TrimSpace(Normalize(cell))
	if txt == "" {
		return nil
	}
	if policy.Bullets {
		if out := bullets(txt, trimRight); len(out) > 0 {
			return out
		}
	}
	if policy.InlineHyphen && inlineHyphen.MatchString(txt) {
		return orWhole(txt, pieces(inlineHyphen.Split(txt, -1), func(s string) string {
			return strings.Trim(s, " ;")
		}))
	}
	for _, sep := range []struct {
		on  bool
		sep string
	}{
		{policy.Semicolon, ";"},
		{policy.Pipe, "|"},
		{policy.Comma, ","},
	} {
		if sep.on && strings.Contains(txt, sep.sep) {
			return orWhole(txt, pieces(strings.Split(txt, sep.sep), strings.TrimSpace))
		}
	}
	return []string{txt}
}

// SplitBlock splits a free-text answer block on bullet lines. A block
// without bullets but with content is returned whole as one answer.
func SplitBlock(block string) []string {
	block = Normalize(block)
	if out := bullets(block, strings.TrimSpace); len(out) > 0 {
		return out
	}
	if raw := strings.TrimSpace(block); raw != "" {
		return []string{raw}
	}
	return nil
}

// OrPlaceholder returns answers, or a single empty answer when there are
// none, for consumers that always render at least one row.
func OrPlaceholder(answers []string) []string {
	if len(answers) == 0 {
		return []string{""}
	}
	return answers
}

func trimRight(s string) string {
	return strings.TrimRight(s, " \t\n\v\f\r")
}

// bullets collects one answer per bullet line. Non-bullet lines extend the
// current answer with their trailing whitespace removed; lines before the
// first bullet are dropped.
func bullets(text string, finish func(string) string) []string {
	var (
		out     []string
		current []string
		open    bool
	)
	flush := func() {
		if len(current) == 0 {
			return
		}
		ans := finish(strings.Join(current, "\n"))
		if strings.TrimSpace(ans) != "" {
			out = append(out, ans)
		}
		current = nil
	}
	for _, ln := range strings.Split(text, "\n") {
		if m := bulletLine.FindStringSubmatch(ln); m != nil {
			flush()
			open = true
			current = append(current, m[1])
			continue
		}
		if open {
			current = append(current, trimRight(ln))
		}
	}
	flush()
	return out
}

func pieces(parts []string, trim func(string) string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = trim(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// orWhole keeps the whole cell when a separator produced only empty pieces.
func orWhole(txt string, parts []string) []string {
	if len(parts) == 0 {
		return []string{txt}
	}
	return parts
}
