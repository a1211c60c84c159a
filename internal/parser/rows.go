package parser

import (
	"strings"

	"psp.com/kviz/backend/internal/answers"
	"psp.com/kviz/backend/internal/questionbank"
	"psp.com/kviz/backend/internal/source"
)

// Rows reads CSV-like sources without trusting their header or cell
// boundaries. Each row is flattened to one line and cut after its first
// question mark; whatever follows is the answer text.
type Rows struct{}

func (Rows) Name() string { return "rows" }

func (Rows) Parse(src source.Source) (*Result, error) {
	comma, ok := sniffDelimiter(src.Text, ',', ';', '\t')
	if !ok {
		comma = ','
	}
	records, empty, err := readRows(src.Name, src.Text, comma)
	if err != nil {
		return nil, err
	}

	res := &Result{BlankRows: empty}
	builder := questionbank.NewBuilder()
	for _, row := range records {
		flat := strings.Join(row, " ")
		if strings.TrimSpace(flat) == "" {
			res.BlankRows++
			continue
		}
		i := strings.IndexByte(flat, '?')
		if i < 0 {
			res.UnmarkedRows++
			continue
		}
		builder.Add(flat[:i+1], answers.Split(flat[i+1:], answers.Delimited))
	}
	if builder.Len() == 0 {
		return nil, &questionbank.FormatError{
			Source:       src.Name,
			Reason:       "no row contains a question",
			BlankRows:    res.BlankRows,
			UnmarkedRows: res.UnmarkedRows,
		}
	}
	res.Bank = builder.Bank()
	return res, nil
}
