package questionbank

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bankOf(t *testing.T, entries ...any) *Bank {
	t.Helper()
	b := NewBuilder()
	for i := 0; i < len(entries); i += 2 {
		b.Add(entries[i].(string), entries[i+1].([]string))
	}
	return b.Bank()
}

func answerSet(b *Bank, q string) []string {
	ans, _ := b.Answers(q)
	out := make([]string, 0, len(ans))
	for _, a := range ans {
		out = append(out, AnswerKey(a))
	}
	sort.Strings(out)
	return out
}

func TestBuilderDeduplicatesAnswers(t *testing.T) {
	b := bankOf(t,
		"  Mi a só? ", []string{"NaCl", " nacl ", "", "kősó"},
		"", []string{"ignored"},
	)
	require.Equal(t, 1, b.Len())
	ans, ok := b.Answers("Mi a só?")
	require.True(t, ok)
	assert.Equal(t, []string{"NaCl", "kősó"}, ans)
}

func TestBuilderSetReplacesInPlace(t *testing.T) {
	builder := NewBuilder()
	builder.Add("A?", []string{"1"})
	builder.Add("B?", []string{"2"})
	builder.Set("A?", []string{"3"})
	b := builder.Bank()

	assert.Equal(t, []string{"A?", "B?"}, b.Questions())
	ans, _ := b.Answers("A?")
	assert.Equal(t, []string{"3"}, ans)
}

func TestMergeKeepsFirstSeenOrder(t *testing.T) {
	first := bankOf(t, "Mi a víz?", []string{"H2O", "víz"})
	second := bankOf(t, "Mi a víz?", []string{"VÍZ", "dihidrogén-oxid"}, "Mi a só?", []string{"NaCl"})

	merged := Merge(first, second)
	require.Equal(t, []string{"Mi a víz?", "Mi a só?"}, merged.Questions())
	ans, _ := merged.Answers("Mi a víz?")
	assert.Equal(t, []string{"H2O", "víz", "dihidrogén-oxid"}, ans)
}

func TestMergeIsCommutativeOnAnswerSets(t *testing.T) {
	a := bankOf(t, "Q?", []string{"x", "Y"}, "R?", []string{"1"})
	b := bankOf(t, "Q?", []string{"y", "z"}, "S?", []string{"2"})

	ab := Merge(a, b)
	ba := Merge(b, a)
	require.Equal(t, ab.Len(), ba.Len())
	for _, q := range ab.Questions() {
		assert.Equal(t, answerSet(ab, q), answerSet(ba, q), q)
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	a := bankOf(t, "Q?", []string{"x", "y"})
	merged := Merge(a, a)
	assert.Equal(t, answerSet(a, "Q?"), answerSet(merged, "Q?"))
	assert.Equal(t, a.Len(), merged.Len())
}

func TestMergeOverlappingCaseInsensitiveAnswers(t *testing.T) {
	a := bankOf(t, "Mi az atom?", []string{"Részecske", "mag + elektronfelhő"})
	b := bankOf(t, "Mi az atom?", []string{"részecske ", "MAG + ELEKTRONFELHŐ", "kémiai egység"})

	ans, _ := Merge(a, b).Answers("Mi az atom?")
	assert.Len(t, ans, 3)
}

func TestBankJSONRoundTripKeepsOrder(t *testing.T) {
	b := bankOf(t, "Z?", []string{"1"}, "A?", []string{"2", "3"}, "M?", []string{})

	data, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Z?":["1"],"A?":["2","3"],"M?":[]}`, string(data))

	var back Bank
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []string{"Z?", "A?", "M?"}, back.Questions())
}

func TestSaveAndDecode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.json")
	b := bankOf(t, "Mi a pH?", []string{"kémhatás"})
	require.NoError(t, b.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	loaded, err := Decode(path, data)
	require.NoError(t, err)
	ans, ok := loaded.Answers("Mi a pH?")
	require.True(t, ok)
	assert.Equal(t, []string{"kémhatás"}, ans)
}

func TestDecodeRejectsInvalidAndEmpty(t *testing.T) {
	for _, data := range []string{`[1, 2]`, `{}`, `{"Mi?": `} {
		_, err := Decode("bank.json", []byte(data))
		var fe *FormatError
		assert.True(t, errors.As(err, &fe), data)
	}
}

func TestValidationErrorNamesShortfalls(t *testing.T) {
	err := &ValidationError{
		Reason: "cannot draw 11 questions",
		Shortfalls: []Shortfall{
			{Source: "1", Requested: 6, Available: 3},
			{Source: "2", Requested: 5, Available: 9},
		},
	}
	assert.Contains(t, err.Error(), "1: 6 requested, 3 available")
	assert.Contains(t, err.Error(), "2: 5 requested, 9 available")
}
