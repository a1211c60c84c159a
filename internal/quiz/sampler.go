package quiz

import (
	"fmt"
	"math/rand/v2"

	"psp.com/kviz/backend/internal/questionbank"
)

// seedStream is the fixed PCG stream for seeded draws, so a seed alone
// determines the result.
const seedStream = 0x6b76697a

// Request asks for N questions. A non-nil Seed makes the whole draw,
// including the mixed-mode shuffle, reproducible.
type Request struct {
	N    int
	Seed *int64
}

// Pool is a named bank taking part in a draw.
type Pool struct {
	Name string
	Bank *questionbank.Bank
}

func newRand(seed *int64) *rand.Rand {
	if seed == nil {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(uint64(*seed), seedStream))
}

// Sample draws req.N distinct questions uniformly from bank.
func Sample(bank *questionbank.Bank, req Request) ([]string, error) {
	if err := checkCount(req.N); err != nil {
		return nil, err
	}
	if req.N > bank.Len() {
		return nil, &questionbank.ValidationError{
			Reason:    fmt.Sprintf("requested %d questions but only %d are available", req.N, bank.Len()),
			Requested: req.N,
			Available: bank.Len(),
		}
	}
	return draw(bank, req.N, newRand(req.Seed)), nil
}

// SplitCount divides n between two pools, giving the odd one to the first.
func SplitCount(n int) (int, int) {
	n1 := (n + 1) / 2
	return n1, n - n1
}

// SampleMixed draws half of req.N (rounded up) from first and the rest
// from second, then shuffles the combined list so the pools interleave.
// The returned origins name the pool each question came from.
func SampleMixed(first, second Pool, req Request) (questions, origins []string, err error) {
	if err := checkCount(req.N); err != nil {
		return nil, nil, err
	}
	n1, n2 := SplitCount(req.N)
	if n1 > first.Bank.Len() || n2 > second.Bank.Len() {
		return nil, nil, &questionbank.ValidationError{
			Reason:    fmt.Sprintf("cannot draw %d questions split between %s and %s", req.N, first.Name, second.Name),
			Requested: req.N,
			Available: first.Bank.Len() + second.Bank.Len(),
			Shortfalls: []questionbank.Shortfall{
				{Source: first.Name, Requested: n1, Available: first.Bank.Len()},
				{Source: second.Name, Requested: n2, Available: second.Bank.Len()},
			},
		}
	}

	r := newRand(req.Seed)
	questions = append(draw(first.Bank, n1, r), draw(second.Bank, n2, r)...)
	origins = make([]string, 0, len(questions))
	for i := range questions {
		if i < n1 {
			origins = append(origins, first.Name)
		} else {
			origins = append(origins, second.Name)
		}
	}
	r.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
		origins[i], origins[j] = origins[j], origins[i]
	})
	return questions, origins, nil
}

func draw(bank *questionbank.Bank, n int, r *rand.Rand) []string {
	keys := bank.Questions()
	picks := r.Perm(len(keys))[:n]
	out := make([]string, 0, n)
	for _, ix := range picks {
		out = append(out, keys[ix])
	}
	return out
}

func checkCount(n int) error {
	if n < 1 {
		return &questionbank.ValidationError{Reason: "the number of questions must be a positive integer", Requested: n}
	}
	return nil
}
