package quiz

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/mcp-adapters/internal/apperr"
)

// Store holds the catalog. It is safe for concurrent use and hands out
// copies, so callers cannot mutate stored questions.
type Store struct {
	mu        sync.RWMutex
	questions []Question

	intn func(n int) int
	now  func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithRandom replaces the uniform picker. intn must return a value in
// [0, n).
func WithRandom(intn func(n int) int) StoreOption {
	return func(s *Store) {
		s.intn = intn
	}
}

// WithClock sets the clock used to stamp added questions.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a store holding questions in order.
func NewStore(questions []Question, opts ...StoreOption) *Store {
	s := &Store{
		questions: make([]Question, 0, len(questions)),
		intn:      rand.IntN,
		now:       time.Now,
	}
	for _, q := range questions {
		s.questions = append(s.questions, q.clone())
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Len returns the number of questions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.questions)
}

// Random picks a question uniformly from the whole catalog.
func (s *Store) Random() (Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.questions) == 0 {
		return Question{}, &apperr.NotFoundError{Message: "The question bank is empty"}
	}
	return s.questions[s.intn(len(s.questions))].clone(), nil
}

// ByID returns the question with the given id.
func (s *Store) ByID(id int) (Question, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, q := range s.questions {
		if q.ID == id {
			return q.clone(), true
		}
	}
	return Question{}, false
}

// BySubject returns questions whose subject equals subject, ignoring case.
func (s *Store) BySubject(subject string) []Question {
	return s.filter(func(q Question) bool {
		return strings.EqualFold(q.Subject, subject)
	})
}

// ByDifficulty returns questions of the given difficulty.
func (s *Store) ByDifficulty(d Difficulty) []Question {
	return s.filter(func(q Question) bool {
		return q.Difficulty == d
	})
}

func (s *Store) filter(keep func(Question) bool) []Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Question
	for _, q := range s.questions {
		if keep(q) {
			out = append(out, q.clone())
		}
	}
	return out
}

// Subjects returns the distinct subjects in first-seen order.
func (s *Store) Subjects() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, q := range s.questions {
		if !seen[q.Subject] {
			seen[q.Subject] = true
			out = append(out, q.Subject)
		}
	}
	return out
}

// Count pairs a label with a number of questions.
type Count struct {
	Label string
	Count int
}

// Stats summarizes the catalog.
type Stats struct {
	Total        int
	BySubject    []Count
	ByDifficulty []Count
}

// Stats counts questions per subject, in first-seen order, and per
// difficulty, listing every level even when it has none.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{Total: len(s.questions)}
	subjectIdx := make(map[string]int)
	perLevel := make(map[Difficulty]int, len(Difficulties))
	for _, q := range s.questions {
		i, ok := subjectIdx[q.Subject]
		if !ok {
			i = len(stats.BySubject)
			subjectIdx[q.Subject] = i
			stats.BySubject = append(stats.BySubject, Count{Label: q.Subject})
		}
		stats.BySubject[i].Count++
		perLevel[q.Difficulty]++
	}
	for _, d := range Difficulties {
		stats.ByDifficulty = append(stats.ByDifficulty, Count{Label: string(d), Count: perLevel[d]})
	}
	return stats
}

// Add stores q under the next id, max existing id plus one, stamped with
// the current time, and returns the stored question.
func (s *Store) Add(q Question) Question {
	s.mu.Lock()
	defer s.mu.Unlock()

	maxID := 0
	for _, existing := range s.questions {
		maxID = max(maxID, existing.ID)
	}
	q.ID = maxID + 1
	q.CreatedAt = s.now()
	q = q.clone()
	s.questions = append(s.questions, q)
	return q.clone()
}

// Select picks a question the way get-random-question does: filter by
// subject and then difficulty when given, and pick uniformly among the
// matches. With no filters the whole catalog is used.
func (s *Store) Select(subject string, difficulty Difficulty) (Question, error) {
	var matches []Question
	switch {
	case subject != "" && difficulty != "":
		for _, q := range s.BySubject(subject) {
			if q.Difficulty == difficulty {
				matches = append(matches, q)
			}
		}
		if len(matches) == 0 {
			return Question{}, &apperr.NotFoundError{
				Message: fmt.Sprintf("No questions found for subject %q with difficulty %q", subject, difficulty),
			}
		}
	case subject != "":
		matches = s.BySubject(subject)
		if len(matches) == 0 {
			return Question{}, &apperr.NotFoundError{
				Message: fmt.Sprintf("No questions found for subject %q", subject),
			}
		}
	case difficulty != "":
		matches = s.ByDifficulty(difficulty)
		if len(matches) == 0 {
			return Question{}, &apperr.NotFoundError{
				Message: fmt.Sprintf("No questions found with difficulty %q", difficulty),
			}
		}
	default:
		return s.Random()
	}
	return matches[s.intn(len(matches))], nil
}
