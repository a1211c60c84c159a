package parser

import (
	"strings"

	"psp.com/kviz/backend/internal/answers"
	"psp.com/kviz/backend/internal/questionbank"
	"psp.com/kviz/backend/internal/source"
)

// Columns reads a header-bearing CSV with a question and an answer column.
// The delimiter is sniffed among comma, semicolon and tab. Repeated
// questions are merged.
type Columns struct{}

func (Columns) Name() string { return "columns" }

func (Columns) Parse(src source.Source) (*Result, error) {
	comma, ok := sniffDelimiter(src.Text, ',', ';', '\t')
	if !ok {
		comma = ','
	}
	records, err := readRecords(src.Name, src.Text, comma)
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, &questionbank.FormatError{Source: src.Name, Reason: "CSV looks empty"}
	}

	header := records[0]
	qCol := findColumn(header, questionAliases...)
	aCol := findColumn(header, answerAliases...)
	if qCol < 0 || aCol < 0 {
		return nil, &questionbank.ConfigurationError{
			Source: src.Name,
			Reason: "CSV header has no 'question' and 'answer' columns",
		}
	}

	res := &Result{}
	builder := questionbank.NewBuilder()
	for _, row := range records[1:] {
		question := strings.TrimSpace(cell(row, qCol))
		raw := cell(row, aCol)
		if strings.TrimSpace(raw) == "" && question != "" {
			question, raw, _ = splitAtMark(question)
		}
		if question == "" {
			res.BlankRows++
			continue
		}
		builder.Add(question, answers.Split(raw, answers.Standard))
	}
	if builder.Len() == 0 {
		return nil, &questionbank.FormatError{
			Source:    src.Name,
			Reason:    "no question/answer pairs could be read",
			BlankRows: res.BlankRows,
		}
	}
	res.Bank = builder.Bank()
	return res, nil
}
