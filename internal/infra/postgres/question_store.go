package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"quiz-alarm-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuestionStore implements app.QuestionStore over Postgres. Filtering is
// exact field equality, matching what the provider expects; choices are a
// JSONB array to preserve order.
type QuestionStore struct {
	pool *pgxpool.Pool
}

func NewQuestionStore(pool *pgxpool.Pool) *QuestionStore {
	return &QuestionStore{pool: pool}
}

func (s *QuestionStore) List(ctx context.Context, filter domain.QuestionFilter) ([]domain.Question, error) {
	query := `SELECT id, exam, type, subcategory, text, correct_answer, choices, difficulty, explanation, created_at, updated_at
		FROM questions WHERE 1=1`
	args := []interface{}{}
	if filter.Exam != "" {
		args = append(args, filter.Exam)
		query += fmt.Sprintf(" AND exam=$%d", len(args))
	}
	if filter.QuestionType != "" {
		args = append(args, filter.QuestionType)
		query += fmt.Sprintf(" AND type=$%d", len(args))
	}
	if filter.Subcategory != "" && filter.Subcategory != domain.AnySubcategory {
		args = append(args, filter.Subcategory)
		query += fmt.Sprintf(" AND subcategory=$%d", len(args))
	}
	if filter.Difficulty != "" && filter.Difficulty != domain.AnyDifficulty {
		args = append(args, filter.Difficulty)
		query += fmt.Sprintf(" AND difficulty=$%d", len(args))
	}
	query += " ORDER BY id"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var out []domain.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *QuestionStore) Get(ctx context.Context, id int64) (domain.Question, error) {
	row := s.pool.QueryRow(ctx, `SELECT id, exam, type, subcategory, text, correct_answer, choices, difficulty, explanation, created_at, updated_at
		FROM questions WHERE id=$1`, id)
	q, err := scanQuestion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return q, err
}

func (s *QuestionStore) Create(ctx context.Context, q domain.Question) (domain.Question, error) {
	choices, err := json.Marshal(q.Choices)
	if err != nil {
		return domain.Question{}, err
	}
	err = s.pool.QueryRow(ctx, `INSERT INTO questions (exam, type, subcategory, text, correct_answer, choices, difficulty, explanation, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10) RETURNING id`,
		q.Exam, q.Type, q.Subcategory, q.Text, q.CorrectAnswer, choices, q.Difficulty, q.Explanation, q.CreatedAt, q.UpdatedAt,
	).Scan(&q.ID)
	if err != nil {
		return domain.Question{}, fmt.Errorf("insert question: %w", err)
	}
	return q, nil
}

func (s *QuestionStore) Update(ctx context.Context, q domain.Question) error {
	choices, err := json.Marshal(q.Choices)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `UPDATE questions SET exam=$2, type=$3, subcategory=$4, text=$5, correct_answer=$6, choices=$7, difficulty=$8, explanation=$9, updated_at=$10
		WHERE id=$1`,
		q.ID, q.Exam, q.Type, q.Subcategory, q.Text, q.CorrectAnswer, choices, q.Difficulty, q.Explanation, q.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

func (s *QuestionStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM questions WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

func scanQuestion(row pgx.Row) (domain.Question, error) {
	var q domain.Question
	var choices []byte
	if err := row.Scan(&q.ID, &q.Exam, &q.Type, &q.Subcategory, &q.Text, &q.CorrectAnswer, &choices, &q.Difficulty, &q.Explanation, &q.CreatedAt, &q.UpdatedAt); err != nil {
		return domain.Question{}, err
	}
	if err := json.Unmarshal(choices, &q.Choices); err != nil {
		return domain.Question{}, fmt.Errorf("unmarshal choices for question %d: %w", q.ID, err)
	}
	return q, nil
}
