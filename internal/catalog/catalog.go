// Package catalog holds the configured question sources, parses them on
// first use and turns a mode name into a drawn round.
package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"psp.com/kviz/backend/internal/assets"
	"psp.com/kviz/backend/internal/config"
	"psp.com/kviz/backend/internal/logger"
	"psp.com/kviz/backend/internal/parser"
	"psp.com/kviz/backend/internal/questionbank"
	"psp.com/kviz/backend/internal/quiz"
)

// Mode is a selectable round type: a single source or an exam pool.
type Mode struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Kind      string   `json:"kind"`
	Aliases   []string `json:"aliases,omitempty"`
	Sources   []string `json:"sources"`
	Questions int      `json:"questions"`
	Error     string   `json:"error,omitempty"`
}

type Catalog struct {
	sources    map[string]config.SourceConfig
	sourceIDs  []string
	exams      map[string]config.ExamConfig
	examIDs    []string
	extensions []string
	log        *logger.Logger

	loads singleflight.Group
	mu    sync.Mutex
	cache map[string]*questionbank.Bank
}

// preloadLimit bounds how many sources Preload reads at once.
const preloadLimit = 4

func New(cfg config.Config, log *logger.Logger) *Catalog {
	if log == nil {
		log = logger.Nop()
	}
	c := &Catalog{
		sources:    make(map[string]config.SourceConfig),
		exams:      make(map[string]config.ExamConfig),
		extensions: cfg.Assets.Extensions,
		log:        log,
		cache:      make(map[string]*questionbank.Bank),
	}
	for _, src := range cfg.Sources {
		c.sources[strings.ToLower(src.ID)] = src
		c.sourceIDs = append(c.sourceIDs, src.ID)
	}
	for _, exam := range cfg.Exams {
		c.exams[strings.ToLower(exam.ID)] = exam
		for _, alias := range exam.Aliases {
			c.exams[strings.ToLower(alias)] = exam
		}
		c.examIDs = append(c.examIDs, exam.ID)
	}
	return c
}

// Source returns the configuration of source id.
func (c *Catalog) Source(id string) (config.SourceConfig, bool) {
	src, ok := c.sources[strings.ToLower(strings.TrimSpace(id))]
	return src, ok
}

// Bank returns the parsed bank of source id. Banks are cached by location
// and format, so each file is read and parsed once even when several
// callers ask for it at the same time.
func (c *Catalog) Bank(id string) (*questionbank.Bank, error) {
	src, ok := c.Source(id)
	if !ok {
		return nil, &questionbank.ValidationError{Reason: fmt.Sprintf("unknown source %q", id)}
	}
	key := src.Format + "|" + src.Path

	c.mu.Lock()
	bank, ok := c.cache[key]
	c.mu.Unlock()
	if ok {
		return bank, nil
	}

	v, err, _ := c.loads.Do(key, func() (interface{}, error) {
		c.mu.Lock()
		cached, ok := c.cache[key]
		c.mu.Unlock()
		if ok {
			return cached, nil
		}
		bank, err := c.load(src)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.cache[key] = bank
		c.mu.Unlock()
		return bank, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*questionbank.Bank), nil
}

func (c *Catalog) load(src config.SourceConfig) (*questionbank.Bank, error) {
	strategy, err := parser.ByName(src.Format)
	if err != nil {
		return nil, err
	}
	log := c.log.With("source", src.ID, "path", src.Path, "format", strategy.Name())
	res, err := parser.ParseFile(src.Path, strategy)
	if err != nil {
		log.Warn("Failed to load question source", "error", err)
		return nil, fmt.Errorf("load source %s: %w", src.ID, err)
	}
	if res.BlankRows > 0 || res.UnmarkedRows > 0 {
		log.Info("Skipped malformed rows", "blank", res.BlankRows, "unmarked", res.UnmarkedRows)
	}
	log.Info("Loaded question source", "questions", res.Bank.Len())
	return res.Bank, nil
}

// Preload reads every configured source concurrently and returns the
// failures by source id. A failed source stays uncached, so a later
// request retries it.
func (c *Catalog) Preload(ctx context.Context) map[string]error {
	var (
		mu       sync.Mutex
		failures = map[string]error{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(preloadLimit)
	for _, id := range c.sourceIDs {
		id := id
		g.Go(func() error {
			err := gctx.Err()
			if err == nil {
				_, err = c.Bank(id)
			}
			if err != nil {
				mu.Lock()
				failures[id] = err
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return failures
}

// NewRound resolves mode to a source or an exam pool and draws a round.
// Exam rounds split the count between the pool's two sources and carry
// the merged bank.
func (c *Catalog) NewRound(mode string, req quiz.Request) (*quiz.Round, error) {
	key := strings.ToLower(strings.TrimSpace(mode))
	if src, ok := c.sources[key]; ok {
		bank, err := c.Bank(src.ID)
		if err != nil {
			return nil, err
		}
		questions, err := quiz.Sample(bank, req)
		if err != nil {
			return nil, err
		}
		return quiz.NewRound(src.ID, questions, nil, bank), nil
	}
	if exam, ok := c.exams[key]; ok {
		return c.examRound(exam, req)
	}
	return nil, &questionbank.ValidationError{
		Reason: fmt.Sprintf("unknown mode %q, use one of: %s", mode, strings.Join(c.modeNames(), ", ")),
	}
}

func (c *Catalog) examRound(exam config.ExamConfig, req quiz.Request) (*quiz.Round, error) {
	if len(exam.Sources) != 2 {
		return nil, &questionbank.ConfigurationError{Reason: fmt.Sprintf("exam %s must name exactly two sources", exam.ID)}
	}
	pools := make([]quiz.Pool, 0, 2)
	for _, id := range exam.Sources {
		bank, err := c.Bank(id)
		if err != nil {
			return nil, err
		}
		pools = append(pools, quiz.Pool{Name: id, Bank: bank})
	}
	questions, origins, err := quiz.SampleMixed(pools[0], pools[1], req)
	if err != nil {
		return nil, err
	}
	merged := questionbank.Merge(pools[0].Bank, pools[1].Bank)
	return quiz.NewRound(exam.ID, questions, origins, merged), nil
}

// Modes lists sources then exams with their question counts. A source
// that fails to load is reported with its error instead of a count.
func (c *Catalog) Modes() []Mode {
	var out []Mode
	for _, id := range c.sourceIDs {
		src, _ := c.Source(id)
		m := Mode{ID: src.ID, Name: src.Name, Kind: "source", Sources: []string{src.ID}}
		if bank, err := c.Bank(src.ID); err != nil {
			m.Error = err.Error()
		} else {
			m.Questions = bank.Len()
		}
		out = append(out, m)
	}
	for _, id := range c.examIDs {
		exam := c.exams[strings.ToLower(id)]
		m := Mode{ID: exam.ID, Name: exam.Name, Kind: "exam", Aliases: exam.Aliases, Sources: exam.Sources}
		for _, sid := range exam.Sources {
			bank, err := c.Bank(sid)
			if err != nil {
				m.Error = err.Error()
				break
			}
			m.Questions += bank.Len()
		}
		out = append(out, m)
	}
	return out
}

// Images returns the asset files of question i of round, looked up in the
// asset directory of the source the question was drawn from.
func (c *Catalog) Images(round *quiz.Round, i int) ([]string, error) {
	if i < 0 || i >= len(round.Questions) {
		return nil, &questionbank.ValidationError{Reason: fmt.Sprintf("question index %d out of range", i)}
	}
	id, ok := assets.ParseID(round.Questions[i])
	if !ok {
		return nil, nil
	}
	src, ok := c.Source(round.Origins[i])
	if !ok || src.Assets == "" {
		return nil, nil
	}
	return assets.Find(src.Assets, id, c.extensions...)
}

// AssetPath maps a file name inside a source's asset directory to a local
// path. Names containing path separators or without one of the configured
// image extensions are rejected.
func (c *Catalog) AssetPath(sourceID, name string) (string, bool) {
	src, ok := c.Source(sourceID)
	if !ok || src.Assets == "" {
		return "", false
	}
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", false
	}
	if !assets.HasExtension(name, c.extensions...) {
		return "", false
	}
	return filepath.Join(src.Assets, name), true
}

func (c *Catalog) modeNames() []string {
	names := append([]string{}, c.sourceIDs...)
	for _, id := range c.examIDs {
		names = append(names, id)
		names = append(names, c.exams[strings.ToLower(id)].Aliases...)
	}
	return names
}
