// Package report turns a finished round into its export record and a
// printable certificate.
package report

import (
	"encoding/json"
	"io"
	"time"

	"psp.com/kviz/backend/internal/answers"
	"psp.com/kviz/backend/internal/quiz"
)

type Detail struct {
	Question string       `json:"question"`
	Answers  []string     `json:"answers"`
	Verdict  quiz.Verdict `json:"verdict"`
}

// Result is the export record of one round.
type Result struct {
	RoundID       string    `json:"round_id"`
	Mode          string    `json:"mode"`
	Timestamp     time.Time `json:"timestamp"`
	QuestionCount int       `json:"question_count"`
	Threshold     int       `json:"threshold"`
	Assessed      int       `json:"assessed"`
	Correct       int       `json:"correct"`
	Passed        bool      `json:"passed"`
	Details       []Detail  `json:"details"`
}

// Build snapshots round. A question without answers exports a single
// empty answer.
func Build(round *quiz.Round, threshold int) Result {
	verdicts := round.Verdicts()
	res := Result{
		RoundID:       round.ID,
		Mode:          round.Mode,
		Timestamp:     time.Now().UTC(),
		QuestionCount: len(round.Questions),
		Threshold:     threshold,
		Details:       make([]Detail, 0, len(round.Questions)),
	}
	for i, q := range round.Questions {
		ans, _ := round.Bank.Answers(q)
		v := verdicts[i]
		switch v {
		case quiz.Correct:
			res.Correct++
			res.Assessed++
		case quiz.Incorrect:
			res.Assessed++
		}
		res.Details = append(res.Details, Detail{Question: q, Answers: answers.OrPlaceholder(ans), Verdict: v})
	}
	res.Passed = res.Correct >= threshold
	return res
}

// JSON writes res as indented UTF-8 JSON. Markup characters in questions
// are written as is.
func JSON(w io.Writer, res Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(res)
}
