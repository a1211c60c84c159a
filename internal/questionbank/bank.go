package questionbank

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Bank maps canonical question text to its accepted answers. Keys keep
// the order they were first added in so seeded draws are reproducible.
// A Bank is never modified after Builder.Bank returns it.
type Bank struct {
	order   []string
	answers map[string][]string
}

// Len returns the number of questions in the bank.
func (b *Bank) Len() int {
	if b == nil {
		return 0
	}
	return len(b.order)
}

// Questions returns the question keys in insertion order.
func (b *Bank) Questions() []string {
	if b == nil {
		return nil
	}
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// Answers returns a copy of the accepted answers for question.
func (b *Bank) Answers(question string) ([]string, bool) {
	if b == nil {
		return nil, false
	}
	ans, ok := b.answers[question]
	if !ok {
		return nil, false
	}
	out := make([]string, len(ans))
	copy(out, ans)
	return out, true
}

// MarshalJSON writes the bank as an object whose keys keep bank order.
func (b *Bank) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, q := range b.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(q)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(b.answers[q])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object of question -> answers, keeping key order.
func (b *Bank) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("question bank must be a JSON object")
	}
	builder := NewBuilder()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		question, _ := tok.(string)
		var answers []string
		if err := dec.Decode(&answers); err != nil {
			return fmt.Errorf("answers for %q: %w", question, err)
		}
		builder.Add(question, answers)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*b = *builder.Bank()
	return nil
}

// Save writes the bank to path as indented JSON.
func (b *Bank) Save(path string) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Decode reads a bank previously written by Save. name is only used in
// errors.
func Decode(name string, data []byte) (*Bank, error) {
	var b Bank
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, &FormatError{Source: name, Reason: "invalid question bank JSON: " + err.Error()}
	}
	if b.Len() == 0 {
		return nil, &FormatError{Source: name, Reason: "question bank is empty"}
	}
	return &b, nil
}

// AnswerKey is the comparison form used to de-duplicate answers.
func AnswerKey(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}
