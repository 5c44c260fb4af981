package cli

import (
	"fmt"
	"log"
	"time"

	"quiz-alarm-service/internal/config"
	"quiz-alarm-service/internal/domain"
	"quiz-alarm-service/internal/infra/postgres"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
)

// NewSeedCmd loads the built-in sample question set into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load sample questions into the question store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}
			ctx := cmd.Context()
			if err := runMigrationsWithConfig(ctx, cfg); err != nil {
				return err
			}
			pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
			if err != nil {
				return err
			}
			defer pool.Close()

			store := postgres.NewQuestionStore(pool)
			for _, q := range sampleQuestions() {
				q.ID = 0
				if _, err := store.Create(ctx, q); err != nil {
					return err
				}
			}
			log.Printf("seeded %d questions", len(sampleQuestions()))
			return nil
		},
	}
}

// sampleQuestions is a minimal data set for demos and the in-memory store;
// real content comes in through the authoring API.
func sampleQuestions() []domain.Question {
	now := time.Now()
	return []domain.Question{
		{
			ID:            1,
			Exam:          domain.ExamGMAT,
			Type:          "quantitative",
			Subcategory:   "algebra",
			Text:          "If $2x - 4 = 10$, what is $x$?",
			CorrectAnswer: "$x = 7$",
			Choices:       []string{"$x = 5$", "$x = 6$", "$x = 7$", "$x = 8$"},
			Difficulty:    "easy",
			Explanation:   "Add 4 to both sides and divide by 2.",
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		{
			ID:            2,
			Exam:          domain.ExamGMAT,
			Type:          "quantitative",
			Subcategory:   "arithmetic",
			Text:          "What is $15\\%$ of 240?",
			CorrectAnswer: "36",
			Choices:       []string{"24", "30", "36", "42"},
			Difficulty:    "easy",
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		{
			ID:            3,
			Exam:          domain.ExamGMAT,
			Type:          "verbal",
			Subcategory:   "sentence-correction",
			Text:          "Choose the grammatically correct sentence.",
			CorrectAnswer: "Neither of the answers is correct.",
			Choices:       []string{"Neither of the answers are correct.", "Neither of the answers is correct.", "Neither of the answer is correct.", "Neither answers is correct."},
			Difficulty:    "medium",
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		{
			ID:            4,
			Exam:          domain.ExamLSAT,
			Type:          "logical",
			Subcategory:   "assumption",
			Text:          "The argument assumes that higher spending causes better outcomes. Which answer states that assumption?",
			CorrectAnswer: "Spending more money improves results",
			Choices:       []string{"Spending more money improves results", "Results are unrelated to spending", "Outcomes cause spending", "Budgets never change"},
			Difficulty:    "medium",
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		{
			ID:            5,
			Exam:          domain.ExamLSAT,
			Type:          "reading",
			Subcategory:   "main-point",
			Text:          "The primary purpose of the passage is to:",
			CorrectAnswer: "evaluate a proposed explanation",
			Choices:       []string{"defend a tradition", "evaluate a proposed explanation", "describe an experiment", "propose a new law"},
			Difficulty:    "hard",
			CreatedAt:     now,
			UpdatedAt:     now,
		},
	}
}
