package redis

import (
	"context"
	"encoding/json"
	"log"

	"quiz-alarm-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// QuestionCache persists per-(exam, type) question snapshots as a JSON array
// under alarm:cache:{exam}:{type}. Entries have no TTL: they are refreshed
// when a config for the pair is created and whenever a live fetch succeeds.
type QuestionCache struct {
	client *redis.Client
	size   int
}

func NewQuestionCache(client *redis.Client, size int) *QuestionCache {
	if size <= 0 {
		size = 10
	}
	return &QuestionCache{client: client, size: size}
}

func (c *QuestionCache) Put(ctx context.Context, exam, questionType string, qs []domain.Question) error {
	if len(qs) > c.size {
		qs = qs[:c.size]
	}
	data, err := json.Marshal(qs)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(exam, questionType), data, 0).Err()
}

func (c *QuestionCache) Get(ctx context.Context, exam, questionType string) ([]domain.Question, error) {
	data, err := c.client.Get(ctx, c.key(exam, questionType)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var qs []domain.Question
	if err := json.Unmarshal(data, &qs); err != nil {
		// Corrupt payloads read as an empty cache rather than failing the
		// trigger path.
		log.Printf("redis: corrupt question cache for %s/%s: %v", exam, questionType, err)
		return nil, nil
	}
	return qs, nil
}

func (c *QuestionCache) key(exam, questionType string) string {
	return "alarm:cache:" + exam + ":" + questionType
}
