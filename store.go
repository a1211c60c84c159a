package main

import (
	"sync"
	"time"

	"psp.com/kviz/backend/internal/quiz"
)

// roundStore keeps drawn rounds in memory. Rounds older than ttl are
// dropped whenever a new one is stored.
type roundStore struct {
	mu     sync.Mutex
	rounds map[string]*quiz.Round
	ttl    time.Duration
	now    func() time.Time
}

func newRoundStore(ttl time.Duration) *roundStore {
	return &roundStore{rounds: map[string]*quiz.Round{}, ttl: ttl, now: time.Now}
}

func (s *roundStore) put(r *quiz.Round) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.ttl)
	for id, old := range s.rounds {
		if old.CreatedAt.Before(cutoff) {
			delete(s.rounds, id)
		}
	}
	s.rounds[r.ID] = r
}

func (s *roundStore) get(id string) (*quiz.Round, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rounds[id]
	return r, ok
}

func (s *roundStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rounds)
}

// rateLimiter allows limit requests per client within window.
type rateLimiter struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	limit  int
	window time.Duration
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{hits: map[string][]time.Time{}, limit: limit, window: window}
}

func (l *rateLimiter) allow(client string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	var recent []time.Time
	for _, t := range l.hits[client] {
		if now.Sub(t) < l.window {
			recent = append(recent, t)
		}
	}
	if len(recent) >= l.limit {
		l.hits[client] = recent
		return false
	}
	l.hits[client] = append(recent, now)
	return true
}
