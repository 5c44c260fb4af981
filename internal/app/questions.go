package app

import (
	"context"
	"time"

	"quiz-alarm-service/internal/domain"
)

// QuestionService is the administrative surface over the question store.
// Authoring enforces that the correct answer appears verbatim in the choice
// list; runtime matching stays purely string-based.
type QuestionService struct {
	store QuestionStore
	clock func() time.Time
}

func NewQuestionService(store QuestionStore) *QuestionService {
	return &QuestionService{store: store, clock: time.Now}
}

func (qs *QuestionService) List(ctx context.Context, filter domain.QuestionFilter) ([]domain.Question, error) {
	return qs.store.List(ctx, filter)
}

func (qs *QuestionService) Get(ctx context.Context, id int64) (domain.Question, error) {
	return qs.store.Get(ctx, id)
}

func (qs *QuestionService) Create(ctx context.Context, q domain.Question) (domain.Question, error) {
	if err := validateQuestion(q); err != nil {
		return domain.Question{}, err
	}
	now := qs.clock()
	q.CreatedAt = now
	q.UpdatedAt = now
	return qs.store.Create(ctx, q)
}

func (qs *QuestionService) Update(ctx context.Context, q domain.Question) error {
	if err := validateQuestion(q); err != nil {
		return err
	}
	q.UpdatedAt = qs.clock()
	return qs.store.Update(ctx, q)
}

func (qs *QuestionService) Delete(ctx context.Context, id int64) error {
	return qs.store.Delete(ctx, id)
}

func validateQuestion(q domain.Question) error {
	for _, c := range q.Choices {
		if c == q.CorrectAnswer {
			return nil
		}
	}
	return domain.ErrAnswerNotInChoices
}
