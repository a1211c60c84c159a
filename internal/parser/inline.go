package parser

import (
	"strings"

	"psp.com/kviz/backend/internal/answers"
	"psp.com/kviz/backend/internal/questionbank"
	"psp.com/kviz/backend/internal/source"
)

// Inline reads a comma-separated CSV whose question column may hold the
// answer too, after the first '?' or '!'. An answer column is optional.
// Answers are split on semicolons only; a repeated question keeps its
// last row.
type Inline struct{}

func (Inline) Name() string { return "inline" }

func (Inline) Parse(src source.Source) (*Result, error) {
	records, err := readRecords(src.Name, src.Text, ',')
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &questionbank.FormatError{Source: src.Name, Reason: "CSV looks empty"}
	}

	header := records[0]
	qCol := findColumn(header, "question", "kerdes", "kérdés")
	aCol := findColumn(header, "answer", "valasz", "válasz")
	if qCol < 0 {
		return nil, &questionbank.ConfigurationError{Source: src.Name, Reason: "CSV header has no 'question' column"}
	}

	res := &Result{}
	builder := questionbank.NewBuilder()
	for _, row := range records[1:] {
		question := strings.TrimSpace(cell(row, qCol))
		raw := strings.TrimSpace(cell(row, aCol))
		if raw == "" && question != "" {
			question, raw, _ = splitAtMark(question)
		}
		if question == "" {
			res.BlankRows++
			continue
		}
		builder.Set(question, answers.Split(raw, answers.SemicolonOnly))
	}
	if builder.Len() == 0 {
		return nil, &questionbank.FormatError{
			Source:    src.Name,
			Reason:    "no question rows could be read",
			BlankRows: res.BlankRows,
		}
	}
	res.Bank = builder.Bank()
	return res, nil
}
