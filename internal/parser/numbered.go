package parser

import (
	"regexp"
	"strings"

	"psp.com/kviz/backend/internal/answers"
	"psp.com/kviz/backend/internal/questionbank"
	"psp.com/kviz/backend/internal/source"
)

// Example header: "1. Definiálja az izotópok fogalmát!"
var questionHeader = regexp.MustCompile(`(?m)^\s*(\d+)\.\s*(.*?)!\s*$`)

// Numbered reads free text where every question is a numbered line ending
// in '!' followed by its bullet answers, up to the next numbered line.
// The number and the '!' are not part of the question key. A repeated
// question keeps the answers of its last occurrence.
type Numbered struct{}

func (Numbered) Name() string { return "numbered" }

func (Numbered) Parse(src source.Source) (*Result, error) {
	matches := questionHeader.FindAllStringSubmatchIndex(src.Text, -1)
	if len(matches) == 0 {
		return nil, &questionbank.FormatError{
			Source: src.Name,
			Reason: "no numbered question header found, expected e.g. '1. Question text!'",
		}
	}

	builder := questionbank.NewBuilder()
	for i, m := range matches {
		question := strings.TrimSpace(src.Text[m[4]:m[5]])
		end := len(src.Text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		builder.Set(question, answers.SplitBlock(src.Text[m[1]:end]))
	}
	if builder.Len() == 0 {
		return nil, &questionbank.FormatError{Source: src.Name, Reason: "numbered headers carry no question text"}
	}
	return &Result{Bank: builder.Bank()}, nil
}
