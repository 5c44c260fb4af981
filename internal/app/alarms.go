package app

import (
	"context"
	"errors"
	"log"

	"quiz-alarm-service/internal/domain"
)

// Alarm configuration use cases. All mutation goes through the scheduler so
// the in-memory trigger state and the persisted list never diverge.

func (s *Scheduler) ListAlarms(ctx context.Context) ([]domain.AlarmConfig, error) {
	return s.configs.List(ctx)
}

func (s *Scheduler) GetAlarm(ctx context.Context, id int64) (domain.AlarmConfig, error) {
	return s.configs.Get(ctx, id)
}

// CreateAlarm validates the config, derives its id from the creation
// timestamp and opportunistically warms the question cache for the
// (exam, type) pair so the first firing works offline.
func (s *Scheduler) CreateAlarm(ctx context.Context, cfg domain.AlarmConfig) (domain.AlarmConfig, error) {
	if _, err := domain.ParseAlarmTime(cfg.Time); err != nil {
		return domain.AlarmConfig{}, err
	}
	cfg.ID = s.nextConfigID(ctx)
	if err := s.configs.Create(ctx, cfg); err != nil {
		return domain.AlarmConfig{}, err
	}
	if err := s.provider.WarmCache(ctx, cfg.Exam, cfg.QuestionType); err != nil {
		log.Printf("alarm %d: cache warm for %s/%s failed: %v", cfg.ID, cfg.Exam, cfg.QuestionType, err)
	}
	return cfg, nil
}

func (s *Scheduler) UpdateAlarm(ctx context.Context, cfg domain.AlarmConfig) error {
	if _, err := domain.ParseAlarmTime(cfg.Time); err != nil {
		return err
	}
	return s.configs.Update(ctx, cfg)
}

// ToggleAlarm flips the active flag.
func (s *Scheduler) ToggleAlarm(ctx context.Context, id int64) (domain.AlarmConfig, error) {
	cfg, err := s.configs.Get(ctx, id)
	if err != nil {
		return domain.AlarmConfig{}, err
	}
	cfg.IsActive = !cfg.IsActive
	if err := s.configs.Update(ctx, cfg); err != nil {
		return domain.AlarmConfig{}, err
	}
	return cfg, nil
}

// DeleteAlarm removes the config, tearing down a ringing instance first.
func (s *Scheduler) DeleteAlarm(ctx context.Context, id int64) error {
	s.teardown(ctx, id)
	return s.configs.Delete(ctx, id)
}

// TestFire rings an ad hoc config immediately, bypassing the time match but
// not the claim step. Used by the "try it now" surface.
func (s *Scheduler) TestFire(ctx context.Context, cfg domain.AlarmConfig) error {
	if cfg.ID == 0 {
		cfg.ID = s.nextConfigID(ctx)
	}
	now := s.clock()
	if cfg.Time == "" {
		cfg.Time = now.Format("15:04")
	}
	if !s.claim(cfg.ID, now) {
		return domain.ErrAlarmNotRinging
	}
	s.fire(ctx, cfg, now)
	return nil
}

// nextConfigID derives ids from unix milliseconds, bumping past collisions
// (two configs created within the same millisecond).
func (s *Scheduler) nextConfigID(ctx context.Context) int64 {
	id := s.clock().UnixMilli()
	for {
		_, err := s.configs.Get(ctx, id)
		if errors.Is(err, domain.ErrAlarmNotFound) {
			return id
		}
		if err != nil {
			return id
		}
		id++
	}
}

// Preference and statistics passthroughs, kept on the scheduler so transport
// has a single application dependency.

func (s *Scheduler) SetExamPreference(ctx context.Context, exam string) error {
	return s.state.SetExamPreference(ctx, exam)
}

func (s *Scheduler) ExamPreference(ctx context.Context) (string, error) {
	return s.state.ExamPreference(ctx)
}

func (s *Scheduler) Stats(ctx context.Context) ([]domain.ExamStats, error) {
	return s.state.Stats(ctx)
}

func (s *Scheduler) SetNotificationPermission(ctx context.Context, granted bool) error {
	return s.state.SetNotificationPermission(ctx, granted)
}
