package questionbank

import "strings"

// Builder accumulates questions for a new Bank.
type Builder struct {
	order   []string
	answers map[string][]string
	seen    map[string]map[string]struct{}
}

func NewBuilder() *Builder {
	return &Builder{
		answers: make(map[string][]string),
		seen:    make(map[string]map[string]struct{}),
	}
}

// Add appends answers to question, skipping blank answers and answers
// already present under AnswerKey. It returns false when the trimmed
// question is empty.
func (b *Builder) Add(question string, answers []string) bool {
	question = strings.TrimSpace(question)
	if question == "" {
		return false
	}
	if _, ok := b.answers[question]; !ok {
		b.order = append(b.order, question)
		b.answers[question] = []string{}
		b.seen[question] = make(map[string]struct{})
	}
	seen := b.seen[question]
	for _, a := range answers {
		key := AnswerKey(a)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		b.answers[question] = append(b.answers[question], strings.TrimSpace(a))
	}
	return true
}

// Set replaces the answers of question, keeping its original position if
// it was already present.
func (b *Builder) Set(question string, answers []string) bool {
	question = strings.TrimSpace(question)
	if question == "" {
		return false
	}
	if _, ok := b.answers[question]; ok {
		b.answers[question] = []string{}
		b.seen[question] = make(map[string]struct{})
	}
	return b.Add(question, answers)
}

// Len returns the number of questions added so far.
func (b *Builder) Len() int { return len(b.order) }

// Bank returns the accumulated bank. The builder must not be used after.
func (b *Builder) Bank() *Bank {
	bank := &Bank{order: b.order, answers: b.answers}
	b.order, b.answers, b.seen = nil, nil, nil
	return bank
}

// Merge unions banks in the order given. For a question present in more
// than one bank, answers from later banks are appended only when not
// already present under AnswerKey.
func Merge(banks ...*Bank) *Bank {
	builder := NewBuilder()
	for _, bank := range banks {
		if bank == nil {
			continue
		}
		for _, q := range bank.order {
			builder.Add(q, bank.answers[q])
		}
	}
	return builder.Bank()
}
