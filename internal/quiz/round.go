package quiz

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"psp.com/kviz/backend/internal/answers"
	"psp.com/kviz/backend/internal/questionbank"
)

// Verdict is the user's own assessment of one answered question.
type Verdict string

const (
	Unassessed Verdict = ""
	Correct    Verdict = "correct"
	Incorrect  Verdict = "incorrect"
)

// ParseVerdict accepts the English names and the Hungarian "helyes" and
// "hibas" used by older exports.
func ParseVerdict(s string) (Verdict, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return Unassessed, nil
	case "correct", "helyes":
		return Correct, nil
	case "incorrect", "hibas", "hibás":
		return Incorrect, nil
	}
	return Unassessed, fmt.Errorf("unknown verdict %q", s)
}

// Round is one drawn set of questions plus the bank that answers them.
// Verdicts are indexed by position because a mixed draw may contain the
// same question text twice.
type Round struct {
	ID        string
	Mode      string
	CreatedAt time.Time
	Questions []string
	Origins   []string
	Bank      *questionbank.Bank

	mu       sync.Mutex
	verdicts []Verdict
}

// NewRound wraps a draw. origins may be nil when every question comes
// from the single pool named by mode.
func NewRound(mode string, questions, origins []string, bank *questionbank.Bank) *Round {
	if origins == nil {
		origins = make([]string, len(questions))
		for i := range origins {
			origins[i] = mode
		}
	}
	return &Round{
		ID:        uuid.NewString(),
		Mode:      mode,
		CreatedAt: time.Now().UTC(),
		Questions: questions,
		Origins:   origins,
		Bank:      bank,
		verdicts:  make([]Verdict, len(questions)),
	}
}

// Answers returns the accepted answers for question i, always at least
// one row long.
func (r *Round) Answers(i int) ([]string, error) {
	if err := r.check(i); err != nil {
		return nil, err
	}
	ans, _ := r.Bank.Answers(r.Questions[i])
	return answers.OrPlaceholder(ans), nil
}

func (r *Round) SetVerdict(i int, v Verdict) error {
	if err := r.check(i); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.verdicts[i] = v
	return nil
}

// Verdicts returns a copy of all verdicts in question order.
func (r *Round) Verdicts() []Verdict {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Verdict, len(r.verdicts))
	copy(out, r.verdicts)
	return out
}

// Score counts the questions self-assessed as correct.
func (r *Round) Score() int {
	n := 0
	for _, v := range r.Verdicts() {
		if v == Correct {
			n++
		}
	}
	return n
}

// Assessed counts the questions that carry any verdict.
func (r *Round) Assessed() int {
	n := 0
	for _, v := range r.Verdicts() {
		if v != Unassessed {
			n++
		}
	}
	return n
}

// Passed reports whether the score reaches threshold.
func (r *Round) Passed(threshold int) bool {
	return r.Score() >= threshold
}

func (r *Round) check(i int) error {
	if i < 0 || i >= len(r.Questions) {
		return &questionbank.ValidationError{
			Reason:    fmt.Sprintf("question index %d out of range 0..%d", i, len(r.Questions)-1),
			Requested: i,
			Available: len(r.Questions),
		}
	}
	return nil
}
