package memory

import (
	"context"
	"sync"

	"quiz-alarm-service/internal/domain"
)

// QuestionCache keeps per-(exam, type) snapshots in process memory.
type QuestionCache struct {
	mu      sync.RWMutex
	entries map[string][]domain.Question
}

func NewQuestionCache() *QuestionCache {
	return &QuestionCache{entries: make(map[string][]domain.Question)}
}

func (c *QuestionCache) Put(_ context.Context, exam, questionType string, qs []domain.Question) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	snapshot := make([]domain.Question, len(qs))
	copy(snapshot, qs)
	c.entries[cacheKey(exam, questionType)] = snapshot
	return nil
}

func (c *QuestionCache) Get(_ context.Context, exam, questionType string) ([]domain.Question, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cached := c.entries[cacheKey(exam, questionType)]
	out := make([]domain.Question, len(cached))
	copy(out, cached)
	return out, nil
}

func cacheKey(exam, questionType string) string {
	return exam + ":" + questionType
}
