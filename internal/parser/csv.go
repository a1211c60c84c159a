package parser

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"psp.com/kviz/backend/internal/questionbank"
)

const sniffSize = 4096

var (
	questionAliases = []string{"question", "questions", "kerdes", "kérdés", "kérdések"}
	answerAliases   = []string{"answer", "answers", "valasz", "válasz", "válaszok"}
)

// sniffDelimiter picks the candidate that splits the first 4KB of text
// into records with one consistent field count above one. The widest
// consistent split wins; ties go to the earlier candidate.
func sniffDelimiter(text string, candidates ...rune) (rune, bool) {
	sample := text
	if len(sample) > sniffSize {
		sample = sample[:sniffSize]
		for !utf8.ValidString(sample) {
			sample = sample[:len(sample)-1]
		}
		if i := strings.LastIndexByte(sample, '\n'); i > 0 {
			sample = sample[:i+1]
		}
	}
	var (
		best   rune
		fields int
	)
	for _, c := range candidates {
		n := consistentFields(sample, c)
		if n > 1 && n > fields {
			best, fields = c, n
		}
	}
	return best, fields > 1
}

func consistentFields(sample string, comma rune) int {
	r := newReader(sample, comma)
	n := -1
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0
		}
		if n == -1 {
			n = len(rec)
		} else if len(rec) != n {
			return 0
		}
	}
	return n
}

func newReader(text string, comma rune) *csv.Reader {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r
}

// readRecords reads every record of text. Lines that are entirely empty
// produce no record.
func readRecords(name, text string, comma rune) ([][]string, error) {
	records, err := newReader(text, comma).ReadAll()
	if err != nil {
		return nil, &questionbank.FormatError{Source: name, Reason: "malformed CSV: " + err.Error()}
	}
	return records, nil
}

// readRows reads every record of text like readRecords and also counts
// the empty lines encoding/csv skips between and around records. Newlines
// inside quoted cells are not counted.
func readRows(name, text string, comma rune) ([][]string, int, error) {
	r := newReader(text, comma)
	var (
		records  [][]string
		empty    int
		consumed int
		end      int64
	)
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, &questionbank.FormatError{Source: name, Reason: "malformed CSV: " + err.Error()}
		}
		line, _ := r.FieldPos(0)
		empty += line - consumed - 1
		end = r.InputOffset()
		consumed = strings.Count(text[:end], "\n")
		records = append(records, rec)
	}
	empty += strings.Count(text[end:], "\n")
	return records, empty, nil
}

// findColumn returns the index of the first header cell matching one of
// aliases, compared case-insensitively after trimming, or -1.
func findColumn(header []string, aliases ...string) int {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, ok := index[key]; !ok {
			index[key] = i
		}
	}
	for _, a := range aliases {
		if i, ok := index[a]; ok {
			return i
		}
	}
	return -1
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// splitAtMark cuts a combined cell after the first '?' or '!'. The mark
// stays with the question.
func splitAtMark(s string) (question, rest string, ok bool) {
	i := strings.IndexAny(s, "?!")
	if i < 0 {
		return s, "", false
	}
	return strings.TrimSpace(s[:i+1]), strings.TrimSpace(s[i+1:]), true
}
