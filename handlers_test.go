package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psp.com/kviz/backend/internal/config"
	"psp.com/kviz/backend/internal/logger"
	"psp.com/kviz/backend/internal/quiz"
)

const chemistryCSV = "question,answer\n" +
	"\"1.1. Mi az atom?\",\"- a legkisebb részecske\n- kémiailag tovább nem bontható\"\n" +
	"\"1.2. Mi a víz kémiai jele?\",\"H2O\"\n" +
	"\"1.3. Mi a só?\",\"NaCl; kősó\"\n" +
	"\"Mi a pH?\",\"\"\n"

const numberedText = "1. Definiálja az izotóp fogalmát!\n- azonos rendszám\n- eltérő tömegszám\n" +
	"2. Mi a mól!\nanyagmennyiség egysége\n"

func testServer(t *testing.T) *server {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kemia.csv"), []byte(chemistryCSV), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tetelek.txt"), []byte(numberedText), 0o644))
	pics := filepath.Join(dir, "pic1")
	require.NoError(t, os.Mkdir(pics, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pics, "1.01.png"), []byte("\x89PNG"), 0o644))

	cfg := config.Defaults()
	cfg.Sources = []config.SourceConfig{
		{ID: "1", Path: filepath.Join(dir, "kemia.csv"), Assets: pics},
		{ID: "2", Path: filepath.Join(dir, "tetelek.txt"), Format: "numbered"},
	}
	cfg.Exams = []config.ExamConfig{{ID: "3", Aliases: []string{"szigorlat"}, Sources: []string{"1", "2"}}}
	config.Normalize(&cfg)
	require.NoError(t, config.Validate(&cfg))
	return newServer(cfg, logger.Nop())
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func createRound(t *testing.T, h http.Handler, body map[string]any) roundResp {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/rounds", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out roundResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthz(t *testing.T) {
	rec := do(t, testServer(t).routes(), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestModes(t *testing.T) {
	rec := do(t, testServer(t).routes(), http.MethodGet, "/api/modes", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var modes []struct {
		ID        string `json:"id"`
		Kind      string `json:"kind"`
		Questions int    `json:"questions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &modes))
	require.Len(t, modes, 3)
	assert.Equal(t, 4, modes[0].Questions)
	assert.Equal(t, 2, modes[1].Questions)
	assert.Equal(t, "exam", modes[2].Kind)
	assert.Equal(t, 6, modes[2].Questions)
}

func TestRoundLifecycle(t *testing.T) {
	h := testServer(t).routes()
	round := createRound(t, h, map[string]any{"mode": "1", "count": 4, "seed": 42})
	require.Len(t, round.Questions, 4)
	assert.Equal(t, config.DefaultPassThreshold, round.Threshold)

	byText := map[string]int{}
	for _, q := range round.Questions {
		byText[q.Text] = q.Index
	}

	rec := do(t, h, http.MethodGet, "/api/rounds/"+round.ID+"/questions/"+strconv.Itoa(byText["1.1. Mi az atom?"]), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var q questionResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &q))
	assert.Equal(t, []string{"a legkisebb részecske", "kémiailag tovább nem bontható"}, q.Answers)
	assert.Equal(t, "1.01", q.AssetKey)
	assert.Equal(t, []string{"/api/assets/1/1.01.png"}, q.Images)

	rec = do(t, h, http.MethodGet, "/api/rounds/"+round.ID+"/questions/"+strconv.Itoa(byText["Mi a pH?"]), nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &q))
	assert.Equal(t, []string{""}, q.Answers)
	assert.Empty(t, q.Images)

	for text, i := range byText {
		verdict := "hibas"
		if strings.Contains(text, "atom") || strings.Contains(text, "víz") {
			verdict = "correct"
		}
		rec = do(t, h, http.MethodPut, "/api/rounds/"+round.ID+"/questions/"+strconv.Itoa(i)+"/verdict", map[string]string{"verdict": verdict})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/api/rounds/"+round.ID+"/result", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var result struct {
		QuestionCount int  `json:"question_count"`
		Correct       int  `json:"correct"`
		Assessed      int  `json:"assessed"`
		Passed        bool `json:"passed"`
		Details       []struct {
			Verdict quiz.Verdict `json:"verdict"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 4, result.QuestionCount)
	assert.Equal(t, 2, result.Correct)
	assert.Equal(t, 4, result.Assessed)
	assert.False(t, result.Passed)

	rec = do(t, h, http.MethodGet, "/api/rounds/"+round.ID+"/certificate?name=Kov%C3%A1cs%20%C3%96d%C3%B6n", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))

	rec = do(t, h, http.MethodGet, "/api/rounds/"+round.ID+"/certificate?name=%3Cscript%3E", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSeededRoundsRepeat(t *testing.T) {
	h := testServer(t).routes()
	a := createRound(t, h, map[string]any{"mode": "szigorlat", "count": 3, "seed": 9})
	b := createRound(t, h, map[string]any{"mode": "szigorlat", "count": 3, "seed": 9})
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.Questions, b.Questions)

	origins := map[string]int{}
	for _, q := range a.Questions {
		origins[q.Origin]++
	}
	assert.Equal(t, map[string]int{"1": 2, "2": 1}, origins)
}

func TestCreateRoundErrors(t *testing.T) {
	h := testServer(t).routes()
	cases := []struct {
		name string
		body map[string]any
		code int
	}{
		{"unknown mode", map[string]any{"mode": "9"}, http.StatusBadRequest},
		{"too many for bank", map[string]any{"mode": "2", "count": 3}, http.StatusBadRequest},
		{"zero", map[string]any{"mode": "1", "count": 0}, http.StatusBadRequest},
		{"above max", map[string]any{"mode": "1", "count": 51}, http.StatusBadRequest},
		{"default size exceeds bank", map[string]any{"mode": "1"}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/rounds", tc.body)
			assert.Equal(t, tc.code, rec.Code, rec.Body.String())
		})
	}
}

func TestMissingSourceIsNotFound(t *testing.T) {
	s := testServer(t)
	s.cfg.Sources[0].Path = filepath.Join(t.TempDir(), "none.csv")
	s = newServer(s.cfg, logger.Nop())

	rec := do(t, s.routes(), http.MethodPost, "/api/rounds", map[string]any{"mode": "1", "count": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoundLookupErrors(t *testing.T) {
	h := testServer(t).routes()
	round := createRound(t, h, map[string]any{"mode": "2", "count": 2})

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/rounds/nope/result", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/rounds/"+uuidZero+"/result", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/rounds/"+round.ID+"/questions/2", nil).Code)
	assert.Equal(t, http.StatusBadRequest,
		do(t, h, http.MethodPut, "/api/rounds/"+round.ID+"/questions/0/verdict", map[string]string{"verdict": "maybe"}).Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/rounds/"+round.ID, nil).Code)
}

func TestAssets(t *testing.T) {
	h := testServer(t).routes()
	rec := do(t, h, http.MethodGet, "/api/assets/1/1.01.png", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "\x89PNG", rec.Body.String())

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/assets/1/9.99.png", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/assets/2/1.01.png", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/assets/1/..%2Fkemia.csv", nil).Code)
}

func TestRoundStoreDropsExpired(t *testing.T) {
	store := newRoundStore(time.Hour)
	old := quiz.NewRound("1", []string{"q?"}, nil, nil)
	old.CreatedAt = time.Now().Add(-2 * time.Hour)
	store.put(old)
	store.put(quiz.NewRound("1", []string{"q?"}, nil, nil))

	_, ok := store.get(old.ID)
	assert.False(t, ok)
	assert.Equal(t, 1, store.len())
}

func TestRateLimiter(t *testing.T) {
	l := newRateLimiter(2, time.Minute)
	now := time.Now()
	assert.True(t, l.allow("a", now))
	assert.True(t, l.allow("a", now))
	assert.False(t, l.allow("a", now))
	assert.True(t, l.allow("b", now))
	assert.True(t, l.allow("a", now.Add(2*time.Minute)))
}

const uuidZero = "00000000-0000-0000-0000-000000000000"
