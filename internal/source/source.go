// Package source reads question sources into normalized text.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"psp.com/kviz/backend/internal/answers"
	"psp.com/kviz/backend/internal/questionbank"
)

// Source is the full text of one question source. Text carries no byte
// order mark and uses \n line endings only.
type Source struct {
	Name string
	Text string
}

// Read loads location, which is either a local path or an http(s) URL.
// HTML documents are flattened to text. The underlying file or response
// is released before Read returns.
func Read(location string) (Source, error) {
	if isRemote(location) {
		return Fetch(DefaultClient, location)
	}
	data, err := os.ReadFile(location)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Source{}, &questionbank.NotFoundError{Path: location}
		}
		return Source{}, fmt.Errorf("read %s: %w", location, err)
	}
	return decode(location, data, isHTMLName(location))
}

// FromString builds a Source from in-memory text.
func FromString(name, text string) Source {
	return Source{Name: name, Text: answers.Normalize(strings.TrimPrefix(text, "\ufeff"))}
}

func decode(name string, data []byte, html bool) (Source, error) {
	utf16 := bytes.HasPrefix(data, []byte{0xFE, 0xFF}) || bytes.HasPrefix(data, []byte{0xFF, 0xFE})
	if !utf16 && !utf8.Valid(data) {
		return Source{}, &questionbank.FormatError{Source: name, Reason: "source is not valid UTF-8"}
	}
	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return Source{}, fmt.Errorf("decode %s: %w", name, err)
	}
	text := string(decoded)
	if html {
		text, err = HTMLText(strings.NewReader(text))
		if err != nil {
			return Source{}, fmt.Errorf("parse html %s: %w", name, err)
		}
	}
	return Source{Name: name, Text: answers.Normalize(text)}, nil
}

func isRemote(location string) bool {
	l := strings.ToLower(location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

func isHTMLName(name string) bool {
	if i := strings.IndexAny(name, "?#"); i >= 0 && isRemote(name) {
		name = name[:i]
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		return true
	}
	return false
}
