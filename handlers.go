package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"psp.com/kviz/backend/internal/assets"
	"psp.com/kviz/backend/internal/questionbank"
	"psp.com/kviz/backend/internal/quiz"
	"psp.com/kviz/backend/internal/report"
)

var nameRegex = regexp.MustCompile(`^[\p{L}\s'.-]{1,100}$`)

func (s *server) handleModes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.catalog.Modes())
}

type createRoundReq struct {
	Mode  string `json:"mode"`
	Count *int   `json:"count"`
	Seed  *int64 `json:"seed"`
}

type questionRef struct {
	Index    int    `json:"index"`
	Text     string `json:"text"`
	Origin   string `json:"origin"`
	AssetKey string `json:"assetKey,omitempty"`
}

type roundResp struct {
	ID        string        `json:"id"`
	Mode      string        `json:"mode"`
	CreatedAt time.Time     `json:"createdAt"`
	Threshold int           `json:"threshold"`
	Questions []questionRef `json:"questions"`
	Assessed  int           `json:"assessed"`
	Correct   int           `json:"correct"`
}

func (s *server) handleCreateRound(w http.ResponseWriter, r *http.Request) {
	var req createRoundReq
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	count := s.cfg.Round.Size
	if req.Count != nil {
		count = *req.Count
	}
	if count > s.cfg.Round.MaxSize {
		http.Error(w, "too many questions, at most "+strconv.Itoa(s.cfg.Round.MaxSize)+" per round", http.StatusBadRequest)
		return
	}

	round, err := s.catalog.NewRound(req.Mode, quiz.Request{N: count, Seed: req.Seed})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.rounds.put(round)
	s.log.Info("Round created", "round", round.ID, "mode", round.Mode, "questions", len(round.Questions))
	writeJSONStatus(w, http.StatusCreated, s.roundView(round))
}

func (s *server) handleRound(w http.ResponseWriter, r *http.Request) {
	round, ok := s.lookupRound(w, r)
	if !ok {
		return
	}
	writeJSON(w, s.roundView(round))
}

type questionResp struct {
	questionRef
	Answers []string     `json:"answers"`
	Images  []string     `json:"images"`
	Verdict quiz.Verdict `json:"verdict"`
}

func (s *server) handleQuestion(w http.ResponseWriter, r *http.Request) {
	round, i, ok := s.lookupQuestion(w, r)
	if !ok {
		return
	}
	ans, err := round.Answers(i)
	if err != nil {
		s.writeError(w, err)
		return
	}
	files, err := s.catalog.Images(round, i)
	if err != nil {
		s.log.Warn("Asset lookup failed", "round", round.ID, "index", i, "error", err)
	}
	images := make([]string, 0, len(files))
	for _, f := range files {
		images = append(images, "/api/assets/"+url.PathEscape(round.Origins[i])+"/"+url.PathEscape(filepath.Base(f)))
	}
	writeJSON(w, questionResp{
		questionRef: questionRefAt(round, i),
		Answers:     ans,
		Images:      images,
		Verdict:     round.Verdicts()[i],
	})
}

type verdictReq struct {
	Verdict string `json:"verdict"`
}

func (s *server) handleVerdict(w http.ResponseWriter, r *http.Request) {
	round, i, ok := s.lookupQuestion(w, r)
	if !ok {
		return
	}
	var req verdictReq
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1024)).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	v, err := quiz.ParseVerdict(req.Verdict)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := round.SetVerdict(i, v); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, map[string]int{"assessed": round.Assessed(), "correct": round.Score()})
}

func (s *server) handleResult(w http.ResponseWriter, r *http.Request) {
	round, ok := s.lookupRound(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if r.URL.Query().Get("download") != "" {
		w.Header().Set("Content-Disposition", "attachment; filename=result-"+round.ID+".json")
	}
	if err := report.JSON(w, report.Build(round, s.cfg.Round.PassThreshold)); err != nil {
		s.log.Error("Failed to write result", "round", round.ID, "error", err)
	}
}

func (s *server) handleCertificate(w http.ResponseWriter, r *http.Request) {
	round, ok := s.lookupRound(w, r)
	if !ok {
		return
	}
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name != "" && !nameRegex.MatchString(name) {
		http.Error(w, "invalid name", http.StatusBadRequest)
		return
	}
	pdfBytes, err := report.PDF(report.Build(round, s.cfg.Round.PassThreshold), name)
	if err != nil {
		s.log.Error("Failed to generate certificate", "round", round.ID, "error", err)
		http.Error(w, "failed to generate certificate", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=certificate-"+round.ID+".pdf")
	w.Write(pdfBytes)
}

func (s *server) handleAsset(w http.ResponseWriter, r *http.Request) {
	path, ok := s.catalog.AssetPath(chi.URLParam(r, "source"), chi.URLParam(r, "file"))
	if !ok {
		http.Error(w, "asset not found", http.StatusNotFound)
		return
	}
	f, err := os.Open(path)
	if err != nil {
		http.Error(w, "asset not found", http.StatusNotFound)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.Error(w, "asset not found", http.StatusNotFound)
		return
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// --- Helpers ---

func (s *server) lookupRound(w http.ResponseWriter, r *http.Request) (*quiz.Round, bool) {
	id := chi.URLParam(r, "roundID")
	if _, err := uuid.Parse(id); err != nil {
		http.Error(w, "invalid round id", http.StatusBadRequest)
		return nil, false
	}
	round, ok := s.rounds.get(id)
	if !ok {
		http.Error(w, "round not found", http.StatusNotFound)
		return nil, false
	}
	return round, true
}

func (s *server) lookupQuestion(w http.ResponseWriter, r *http.Request) (*quiz.Round, int, bool) {
	round, ok := s.lookupRound(w, r)
	if !ok {
		return nil, 0, false
	}
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || i < 0 || i >= len(round.Questions) {
		http.Error(w, "question not found", http.StatusNotFound)
		return nil, 0, false
	}
	return round, i, true
}

func (s *server) roundView(round *quiz.Round) roundResp {
	refs := make([]questionRef, 0, len(round.Questions))
	for i := range round.Questions {
		refs = append(refs, questionRefAt(round, i))
	}
	return roundResp{
		ID:        round.ID,
		Mode:      round.Mode,
		CreatedAt: round.CreatedAt,
		Threshold: s.cfg.Round.PassThreshold,
		Questions: refs,
		Assessed:  round.Assessed(),
		Correct:   round.Score(),
	}
}

func questionRefAt(round *quiz.Round, i int) questionRef {
	ref := questionRef{Index: i, Text: round.Questions[i], Origin: round.Origins[i]}
	if id, ok := assets.ParseID(round.Questions[i]); ok {
		ref.AssetKey = id.String()
	}
	return ref
}

// writeError maps the pipeline's error kinds to HTTP statuses.
func (s *server) writeError(w http.ResponseWriter, err error) {
	var (
		notFound *questionbank.NotFoundError
		invalid  *questionbank.ValidationError
		format   *questionbank.FormatError
		conf     *questionbank.ConfigurationError
	)
	switch {
	case errors.As(err, &invalid):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &notFound):
		s.log.Warn("Question source missing", "error", err)
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &format), errors.As(err, &conf):
		s.log.Warn("Question source unusable", "error", err)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		s.log.Error("Request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, v any) { writeJSONStatus(w, http.StatusOK, v) }

func writeJSONStatus(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
