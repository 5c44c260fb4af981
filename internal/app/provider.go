package app

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"quiz-alarm-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// QuestionProvider resolves a question for a filter with offline resilience:
// live store fetch (bounded by timeout) -> cached snapshot, widening the
// filter between rounds. It returns nil when every source comes up empty;
// the emergency set is the caller's concern.
type QuestionProvider struct {
	source    QuestionSource
	cache     QuestionCache
	timeout   time.Duration
	cacheSize int
	sf        singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionProvider(source QuestionSource, cache QuestionCache, timeout time.Duration, cacheSize int) *QuestionProvider {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if cacheSize <= 0 {
		cacheSize = 10
	}
	return &QuestionProvider{
		source:    source,
		cache:     cache,
		timeout:   timeout,
		cacheSize: cacheSize,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Resolve picks a question matching the filter, widening it on no match:
// full filter, then without subcategory/difficulty, then exam only.
func (p *QuestionProvider) Resolve(ctx context.Context, filter domain.QuestionFilter) *domain.Question {
	for _, f := range widen(filter) {
		if qs, err := p.fetchLive(ctx, f); err == nil && len(qs) > 0 {
			p.refreshCache(ctx, filter.Exam, filter.QuestionType, qs)
			return p.pick(qs)
		}
		if qs := p.fromCache(ctx, filter.Exam, filter.QuestionType, f); len(qs) > 0 {
			return p.pick(qs)
		}
	}
	return nil
}

// WarmCache snapshots up to cacheSize questions for the (exam, type) pair.
// Called when an alarm config for the pair is created.
func (p *QuestionProvider) WarmCache(ctx context.Context, exam, questionType string) error {
	qs, err := p.fetchLive(ctx, domain.QuestionFilter{Exam: exam, QuestionType: questionType})
	if err != nil {
		return err
	}
	return p.cache.Put(ctx, exam, questionType, capSlice(qs, p.cacheSize))
}

func (p *QuestionProvider) fetchLive(ctx context.Context, filter domain.QuestionFilter) ([]domain.Question, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	key := filter.Exam + ":" + filter.QuestionType + ":" + filter.Subcategory + ":" + filter.Difficulty
	result, err, _ := p.sf.Do(key, func() (interface{}, error) {
		return p.source.List(fetchCtx, filter)
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (p *QuestionProvider) fromCache(ctx context.Context, exam, questionType string, filter domain.QuestionFilter) []domain.Question {
	cached, err := p.cache.Get(ctx, exam, questionType)
	if err != nil {
		log.Printf("question cache read failed for %s/%s: %v", exam, questionType, err)
		return nil
	}
	matched := cached[:0:0]
	for _, q := range cached {
		if filter.Matches(q) {
			matched = append(matched, q)
		}
	}
	return matched
}

// refreshCache opportunistically renews the pair snapshot after a
// successful live fetch; failures only cost freshness.
func (p *QuestionProvider) refreshCache(ctx context.Context, exam, questionType string, qs []domain.Question) {
	if err := p.cache.Put(ctx, exam, questionType, capSlice(qs, p.cacheSize)); err != nil {
		log.Printf("question cache refresh failed for %s/%s: %v", exam, questionType, err)
	}
}

func (p *QuestionProvider) pick(qs []domain.Question) *domain.Question {
	p.mu.Lock()
	q := qs[p.rnd.Intn(len(qs))]
	p.mu.Unlock()
	return &q
}

func widen(f domain.QuestionFilter) []domain.QuestionFilter {
	variants := []domain.QuestionFilter{f}
	if f.Subcategory != "" && f.Subcategory != domain.AnySubcategory || f.Difficulty != "" && f.Difficulty != domain.AnyDifficulty {
		variants = append(variants, domain.QuestionFilter{Exam: f.Exam, QuestionType: f.QuestionType})
	}
	if f.QuestionType != "" {
		variants = append(variants, domain.QuestionFilter{Exam: f.Exam})
	}
	return variants
}

func capSlice(qs []domain.Question, n int) []domain.Question {
	if len(qs) > n {
		return qs[:n]
	}
	return qs
}
