package redis

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"strings"

	"quiz-alarm-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	activeKeyPrefix = "alarm:active:"
	activeIndexKey  = "alarm:active:ids"
	examPrefKey     = "alarm:pref:exam"
	statsKey        = "alarm:stats"
	permissionKey   = "alarm:notify:permission"
)

// StateStore is the Redis-backed persisted state collaborator. Every value
// is JSON or a plain string; corrupt entries are logged and skipped.
type StateStore struct {
	client *redis.Client
}

func NewStateStore(client *redis.Client) *StateStore {
	return &StateStore{client: client}
}

func (s *StateStore) SaveActiveAlarm(ctx context.Context, inst domain.ActiveAlarm) error {
	data, err := json.Marshal(inst)
	if err != nil {
		return err
	}
	id := strconv.FormatInt(inst.AlarmID, 10)
	pipe := s.client.Pipeline()
	pipe.Set(ctx, activeKeyPrefix+id, data, 0)
	pipe.SAdd(ctx, activeIndexKey, id)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *StateStore) DeleteActiveAlarm(ctx context.Context, alarmID int64) error {
	id := strconv.FormatInt(alarmID, 10)
	pipe := s.client.Pipeline()
	pipe.Del(ctx, activeKeyPrefix+id)
	pipe.SRem(ctx, activeIndexKey, id)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *StateStore) ListActiveAlarms(ctx context.Context) ([]domain.ActiveAlarm, error) {
	ids, err := s.client.SMembers(ctx, activeIndexKey).Result()
	if err != nil {
		return nil, err
	}
	out := make([]domain.ActiveAlarm, 0, len(ids))
	for _, id := range ids {
		data, err := s.client.Get(ctx, activeKeyPrefix+id).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, err
		}
		var inst domain.ActiveAlarm
		if err := json.Unmarshal(data, &inst); err != nil {
			log.Printf("redis: corrupt active alarm snapshot %s: %v", id, err)
			continue
		}
		out = append(out, inst)
	}
	return out, nil
}

func (s *StateStore) SetExamPreference(ctx context.Context, exam string) error {
	return s.client.Set(ctx, examPrefKey, exam, 0).Err()
}

func (s *StateStore) ExamPreference(ctx context.Context) (string, error) {
	val, err := s.client.Get(ctx, examPrefKey).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

func (s *StateStore) RecordAnswer(ctx context.Context, exam, questionType string, correct bool) error {
	field := exam + ":" + questionType
	pipe := s.client.Pipeline()
	pipe.HIncrBy(ctx, statsKey, field+":total", 1)
	if correct {
		pipe.HIncrBy(ctx, statsKey, field+":correct", 1)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *StateStore) Stats(ctx context.Context) ([]domain.ExamStats, error) {
	fields, err := s.client.HGetAll(ctx, statsKey).Result()
	if err != nil {
		return nil, err
	}
	byPair := make(map[string]*domain.ExamStats)
	for field, raw := range fields {
		parts := strings.Split(field, ":")
		if len(parts) != 3 {
			continue
		}
		count, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		key := parts[0] + ":" + parts[1]
		st, ok := byPair[key]
		if !ok {
			st = &domain.ExamStats{Exam: parts[0], QuestionType: parts[1]}
			byPair[key] = st
		}
		switch parts[2] {
		case "total":
			st.Total = count
		case "correct":
			st.Correct = count
		}
	}
	out := make([]domain.ExamStats, 0, len(byPair))
	for _, st := range byPair {
		out = append(out, *st)
	}
	return out, nil
}

func (s *StateStore) SetNotificationPermission(ctx context.Context, granted bool) error {
	val := "0"
	if granted {
		val = "1"
	}
	return s.client.Set(ctx, permissionKey, val, 0).Err()
}

func (s *StateStore) NotificationPermission(ctx context.Context) (bool, error) {
	val, err := s.client.Get(ctx, permissionKey).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return val == "1", nil
}
