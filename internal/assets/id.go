// Package assets links questions to image files by their leading
// "major.minor" number.
package assets

import "regexp"

// Matches "1.1", "1.01.", "2.100 " and similar at the start of a question.
var leadingNumber = regexp.MustCompile(`^\s*(\d+)\.(\d{1,3})(?:\.|\b)`)

// ID is a normalized question number such as 1.01.
type ID struct {
	Major string
	Minor string
}

func (id ID) String() string {
	return id.Major + "." + id.Minor
}

// ParseID reads the leading number of question. A one-digit minor part is
// padded to two digits; longer ones are kept as written. ok is false when
// the question does not start with a number, which means it has no assets.
func ParseID(question string) (id ID, ok bool) {
	m := leadingNumber.FindStringSubmatch(question)
	if m == nil {
		return ID{}, false
	}
	minor := m[2]
	if len(minor) == 1 {
		minor = "0" + minor
	}
	return ID{Major: m[1], Minor: minor}, true
}
