package memory

import (
	"context"
	"sort"
	"sync"

	"quiz-alarm-service/internal/domain"
)

// QuestionStore is an in-memory question store, used when Postgres is not
// configured and throughout unit tests.
type QuestionStore struct {
	mu        sync.RWMutex
	questions map[int64]domain.Question
	nextID    int64
}

func NewQuestionStore(seed []domain.Question) *QuestionStore {
	s := &QuestionStore{questions: make(map[int64]domain.Question), nextID: 1}
	for _, q := range seed {
		if q.ID == 0 {
			q.ID = s.nextID
		}
		s.questions[q.ID] = q
		if q.ID >= s.nextID {
			s.nextID = q.ID + 1
		}
	}
	return s
}

func (s *QuestionStore) List(_ context.Context, filter domain.QuestionFilter) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Question, 0)
	for _, q := range s.questions {
		if filter.Matches(q) {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *QuestionStore) Get(_ context.Context, id int64) (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[id]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return q, nil
}

func (s *QuestionStore) Create(_ context.Context, q domain.Question) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q.ID = s.nextID
	s.nextID++
	s.questions[q.ID] = q
	return q, nil
}

func (s *QuestionStore) Update(_ context.Context, q domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[q.ID]; !ok {
		return domain.ErrQuestionNotFound
	}
	s.questions[q.ID] = q
	return nil
}

func (s *QuestionStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[id]; !ok {
		return domain.ErrQuestionNotFound
	}
	delete(s.questions, id)
	return nil
}
