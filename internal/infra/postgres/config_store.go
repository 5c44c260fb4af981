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

// ConfigStore implements app.ConfigStore over Postgres. The weekday mask is
// stored as a JSONB array of 7 booleans, Sunday-first.
type ConfigStore struct {
	pool *pgxpool.Pool
}

func NewConfigStore(pool *pgxpool.Pool) *ConfigStore {
	return &ConfigStore{pool: pool}
}

func (s *ConfigStore) List(ctx context.Context) ([]domain.AlarmConfig, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, alarm_time, days, exam, question_type, subcategory, difficulty, is_active
		FROM alarm_configs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list alarm configs: %w", err)
	}
	defer rows.Close()

	var out []domain.AlarmConfig
	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cfg)
	}
	return out, rows.Err()
}

func (s *ConfigStore) Get(ctx context.Context, id int64) (domain.AlarmConfig, error) {
	row := s.pool.QueryRow(ctx, `SELECT id, name, alarm_time, days, exam, question_type, subcategory, difficulty, is_active
		FROM alarm_configs WHERE id=$1`, id)
	cfg, err := scanConfig(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.AlarmConfig{}, domain.ErrAlarmNotFound
	}
	return cfg, err
}

func (s *ConfigStore) Create(ctx context.Context, cfg domain.AlarmConfig) error {
	days, err := json.Marshal(cfg.Days)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `INSERT INTO alarm_configs (id, name, alarm_time, days, exam, question_type, subcategory, difficulty, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		cfg.ID, cfg.Name, cfg.Time, days, cfg.Exam, cfg.QuestionType, cfg.Subcategory, cfg.Difficulty, cfg.IsActive)
	if err != nil {
		return fmt.Errorf("insert alarm config: %w", err)
	}
	return nil
}

func (s *ConfigStore) Update(ctx context.Context, cfg domain.AlarmConfig) error {
	days, err := json.Marshal(cfg.Days)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `UPDATE alarm_configs SET name=$2, alarm_time=$3, days=$4, exam=$5, question_type=$6, subcategory=$7, difficulty=$8, is_active=$9
		WHERE id=$1`,
		cfg.ID, cfg.Name, cfg.Time, days, cfg.Exam, cfg.QuestionType, cfg.Subcategory, cfg.Difficulty, cfg.IsActive)
	if err != nil {
		return fmt.Errorf("update alarm config: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlarmNotFound
	}
	return nil
}

func (s *ConfigStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM alarm_configs WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete alarm config: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlarmNotFound
	}
	return nil
}

func scanConfig(row pgx.Row) (domain.AlarmConfig, error) {
	var cfg domain.AlarmConfig
	var days []byte
	if err := row.Scan(&cfg.ID, &cfg.Name, &cfg.Time, &days, &cfg.Exam, &cfg.QuestionType, &cfg.Subcategory, &cfg.Difficulty, &cfg.IsActive); err != nil {
		return domain.AlarmConfig{}, err
	}
	if err := json.Unmarshal(days, &cfg.Days); err != nil {
		return domain.AlarmConfig{}, fmt.Errorf("unmarshal weekday mask for config %d: %w", cfg.ID, err)
	}
	return cfg, nil
}
