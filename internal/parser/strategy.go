// Package parser turns question sources into question banks. Each source
// shape has its own Strategy; all of them produce the same Bank.
package parser

import (
	"fmt"
	"strings"

	"psp.com/kviz/backend/internal/questionbank"
	"psp.com/kviz/backend/internal/source"
)

// Strategy parses one source shape.
type Strategy interface {
	Name() string
	Parse(src source.Source) (*Result, error)
}

// Result is a parsed bank together with the rows that were skipped on the
// way. A Result is only returned when at least one question was parsed.
type Result struct {
	Bank         *questionbank.Bank
	BlankRows    int
	UnmarkedRows int
}

var strategies = map[string]Strategy{
	"columns":  Columns{},
	"rows":     Rows{},
	"numbered": Numbered{},
	"inline":   Inline{},
	"json":     BankJSON{},
}

// ByName returns the strategy registered under name.
func ByName(name string) (Strategy, error) {
	s, ok := strategies[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, &questionbank.ConfigurationError{Reason: fmt.Sprintf("unknown source format %q", name)}
	}
	return s, nil
}

// Names lists the registered strategy names.
func Names() []string {
	return []string{"columns", "rows", "numbered", "inline", "json"}
}

// ParseFile reads location once and parses it with s.
func ParseFile(location string, s Strategy) (*Result, error) {
	src, err := source.Read(location)
	if err != nil {
		return nil, err
	}
	return s.Parse(src)
}

// BankJSON reads a bank previously dumped as a JSON object of
// question -> answers.
type BankJSON struct{}

func (BankJSON) Name() string { return "json" }

func (BankJSON) Parse(src source.Source) (*Result, error) {
	bank, err := questionbank.Decode(src.Name, []byte(src.Text))
	if err != nil {
		return nil, err
	}
	return &Result{Bank: bank}, nil
}
