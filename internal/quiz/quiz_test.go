package quiz

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psp.com/kviz/backend/internal/questionbank"
)

func seed(v int64) *int64 { return &v }

func inBank(bank *questionbank.Bank, q string) bool {
	_, ok := bank.Answers(q)
	return ok
}

func numberedBank(prefix string, n int) *questionbank.Bank {
	b := questionbank.NewBuilder()
	for i := 0; i < n; i++ {
		b.Add(fmt.Sprintf("%s %d?", prefix, i), []string{fmt.Sprintf("answer %d", i)})
	}
	return b.Bank()
}

func TestSampleDistinctAndBounded(t *testing.T) {
	bank := numberedBank("q", 20)
	for i := 0; i < 50; i++ {
		got, err := Sample(bank, Request{N: 12})
		require.NoError(t, err)
		require.Len(t, got, 12)
		seen := map[string]bool{}
		for _, q := range got {
			assert.False(t, seen[q], "duplicate %q", q)
			assert.True(t, inBank(bank, q))
			seen[q] = true
		}
	}
}

func TestSampleWholeBank(t *testing.T) {
	bank := numberedBank("q", 5)
	got, err := Sample(bank, Request{N: 5})
	require.NoError(t, err)
	assert.ElementsMatch(t, bank.Questions(), got)
}

func TestSampleSeedIsDeterministic(t *testing.T) {
	bank := numberedBank("q", 40)
	a, err := Sample(bank, Request{N: 10, Seed: seed(42)})
	require.NoError(t, err)
	b, err := Sample(bank, Request{N: 10, Seed: seed(42)})
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := Sample(bank, Request{N: 10, Seed: seed(43)})
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestSampleValidation(t *testing.T) {
	bank := numberedBank("q", 3)
	var ve *questionbank.ValidationError

	_, err := Sample(bank, Request{N: 4})
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, 4, ve.Requested)
	assert.Equal(t, 3, ve.Available)

	_, err = Sample(bank, Request{N: 0})
	require.True(t, errors.As(err, &ve))
}

func TestSplitCount(t *testing.T) {
	n1, n2 := SplitCount(11)
	assert.Equal(t, 6, n1)
	assert.Equal(t, 5, n2)
	n1, n2 = SplitCount(12)
	assert.Equal(t, 6, n1)
	assert.Equal(t, 6, n2)
	n1, n2 = SplitCount(1)
	assert.Equal(t, 1, n1)
	assert.Equal(t, 0, n2)
}

func TestSampleMixedProportions(t *testing.T) {
	first := Pool{Name: "1", Bank: numberedBank("first", 10)}
	second := Pool{Name: "2", Bank: numberedBank("second", 10)}

	questions, origins, err := SampleMixed(first, second, Request{N: 11})
	require.NoError(t, err)
	require.Len(t, questions, 11)
	require.Len(t, origins, 11)

	counts := map[string]int{}
	for i, q := range questions {
		counts[origins[i]]++
		if origins[i] == "1" {
			assert.True(t, inBank(first.Bank, q))
		} else {
			assert.True(t, inBank(second.Bank, q))
		}
	}
	assert.Equal(t, 6, counts["1"])
	assert.Equal(t, 5, counts["2"])
}

func TestSampleMixedSeedIsDeterministic(t *testing.T) {
	first := Pool{Name: "1", Bank: numberedBank("first", 30)}
	second := Pool{Name: "2", Bank: numberedBank("second", 30)}

	q1, o1, err := SampleMixed(first, second, Request{N: 12, Seed: seed(7)})
	require.NoError(t, err)
	q2, o2, err := SampleMixed(first, second, Request{N: 12, Seed: seed(7)})
	require.NoError(t, err)
	assert.Equal(t, q1, q2)
	assert.Equal(t, o1, o2)
}

func TestSampleMixedShortfall(t *testing.T) {
	first := Pool{Name: "1. félév", Bank: numberedBank("first", 3)}
	second := Pool{Name: "2. félév", Bank: numberedBank("second", 10)}

	_, _, err := SampleMixed(first, second, Request{N: 11})
	var ve *questionbank.ValidationError
	require.True(t, errors.As(err, &ve))
	require.Len(t, ve.Shortfalls, 2)
	assert.Equal(t, questionbank.Shortfall{Source: "1. félév", Requested: 6, Available: 3}, ve.Shortfalls[0])
	assert.Equal(t, questionbank.Shortfall{Source: "2. félév", Requested: 5, Available: 10}, ve.Shortfalls[1])
}

func TestRoundVerdictsAndScore(t *testing.T) {
	bank := numberedBank("q", 3)
	b := questionbank.NewBuilder()
	b.Add("no answers?", nil)
	empty := b.Bank()

	r := NewRound("1", []string{"q 0?", "q 1?", "q 2?"}, nil, bank)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, []string{"1", "1", "1"}, r.Origins)

	require.NoError(t, r.SetVerdict(0, Correct))
	require.NoError(t, r.SetVerdict(2, Incorrect))
	assert.Error(t, r.SetVerdict(3, Correct))
	assert.Equal(t, 1, r.Score())
	assert.Equal(t, 2, r.Assessed())
	assert.True(t, r.Passed(1))
	assert.False(t, r.Passed(2))

	ans, err := r.Answers(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"answer 1"}, ans)

	r2 := NewRound("x", []string{"no answers?"}, nil, empty)
	ans, err = r2.Answers(0)
	require.NoError(t, err)
	assert.Equal(t, []string{""}, ans)
}

func TestParseVerdict(t *testing.T) {
	for in, want := range map[string]Verdict{
		"helyes": Correct, "Correct": Correct, "hibas": Incorrect, "incorrect": Incorrect, "": Unassessed,
	} {
		got, err := ParseVerdict(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseVerdict("maybe")
	assert.Error(t, err)
}
