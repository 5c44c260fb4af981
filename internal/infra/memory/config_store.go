package memory

import (
	"context"
	"sort"
	"sync"

	"quiz-alarm-service/internal/domain"
)

// ConfigStore is an in-memory implementation of app.ConfigStore.
type ConfigStore struct {
	mu      sync.RWMutex
	configs map[int64]domain.AlarmConfig
}

func NewConfigStore() *ConfigStore {
	return &ConfigStore{configs: make(map[int64]domain.AlarmConfig)}
}

func (s *ConfigStore) List(_ context.Context) ([]domain.AlarmConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.AlarmConfig, 0, len(s.configs))
	for _, cfg := range s.configs {
		out = append(out, cfg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *ConfigStore) Get(_ context.Context, id int64) (domain.AlarmConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.configs[id]
	if !ok {
		return domain.AlarmConfig{}, domain.ErrAlarmNotFound
	}
	return cfg, nil
}

func (s *ConfigStore) Create(_ context.Context, cfg domain.AlarmConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[cfg.ID] = cfg
	return nil
}

func (s *ConfigStore) Update(_ context.Context, cfg domain.AlarmConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.configs[cfg.ID]; !ok {
		return domain.ErrAlarmNotFound
	}
	s.configs[cfg.ID] = cfg
	return nil
}

func (s *ConfigStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.configs[id]; !ok {
		return domain.ErrAlarmNotFound
	}
	delete(s.configs, id)
	return nil
}
