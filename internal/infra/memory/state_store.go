package memory

import (
	"context"
	"sort"
	"sync"

	"quiz-alarm-service/internal/domain"
)

// StateStore is the in-memory implementation of app.StateStore.
type StateStore struct {
	mu           sync.RWMutex
	activeAlarms map[int64]domain.ActiveAlarm
	examPref     string
	stats        map[string]*domain.ExamStats
	notifGranted bool
}

func NewStateStore() *StateStore {
	return &StateStore{
		activeAlarms: make(map[int64]domain.ActiveAlarm),
		stats:        make(map[string]*domain.ExamStats),
	}
}

func (s *StateStore) SaveActiveAlarm(_ context.Context, inst domain.ActiveAlarm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeAlarms[inst.AlarmID] = inst
	return nil
}

func (s *StateStore) DeleteActiveAlarm(_ context.Context, alarmID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.activeAlarms, alarmID)
	return nil
}

func (s *StateStore) ListActiveAlarms(_ context.Context) ([]domain.ActiveAlarm, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ActiveAlarm, 0, len(s.activeAlarms))
	for _, inst := range s.activeAlarms {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AlarmID < out[j].AlarmID })
	return out, nil
}

func (s *StateStore) SetExamPreference(_ context.Context, exam string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.examPref = exam
	return nil
}

func (s *StateStore) ExamPreference(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.examPref, nil
}

func (s *StateStore) RecordAnswer(_ context.Context, exam, questionType string, correct bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := exam + ":" + questionType
	st, ok := s.stats[key]
	if !ok {
		st = &domain.ExamStats{Exam: exam, QuestionType: questionType}
		s.stats[key] = st
	}
	st.Total++
	if correct {
		st.Correct++
	}
	return nil
}

func (s *StateStore) Stats(_ context.Context) ([]domain.ExamStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ExamStats, 0, len(s.stats))
	for _, st := range s.stats {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Exam != out[j].Exam {
			return out[i].Exam < out[j].Exam
		}
		return out[i].QuestionType < out[j].QuestionType
	})
	return out, nil
}

func (s *StateStore) SetNotificationPermission(_ context.Context, granted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifGranted = granted
	return nil
}

func (s *StateStore) NotificationPermission(_ context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notifGranted, nil
}
