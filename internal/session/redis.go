package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ygellis/luach-bot/internal/models"
)

const maxReferencedEvents = 5

// RedisStore keeps conversation context in redis with a TTL so the recency
// window is enforced by the store itself.
type RedisStore struct {
	client      *redis.Client
	ttl         time.Duration
	defaultLead int
}

func NewRedisStore(addr, password string, db int, ttl time.Duration, defaultLead int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisStore{client: client, ttl: ttl, defaultLead: defaultLead}, nil
}

func conversationKey(conversationID string) string {
	return "luach:conv:" + conversationID + ":events"
}

func leadKey(userID int64) string {
	return "luach:user:" + strconv.FormatInt(userID, 10) + ":lead"
}

func (s *RedisStore) GetRecentReferencedEvents(ctx context.Context, conversationID string) ([]models.ReferencedEvent, error) {
	raw, err := s.client.LRange(ctx, conversationKey(conversationID), 0, maxReferencedEvents-1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange: %w", err)
	}
	events := make([]models.ReferencedEvent, 0, len(raw))
	for _, r := range raw {
		var ev models.ReferencedEvent
		if err := json.Unmarshal([]byte(r), &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func (s *RedisStore) RememberEvent(ctx context.Context, conversationID string, ev models.ReferencedEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal referenced event: %w", err)
	}
	key := conversationKey(conversationID)
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, maxReferencedEvents-1)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("remember event: %w", err)
	}
	return nil
}

func (s *RedisStore) GetDefaultLeadTimeMinutes(ctx context.Context, userID int64) (int, error) {
	v, err := s.client.Get(ctx, leadKey(userID)).Int()
	if errors.Is(err, redis.Nil) {
		return s.defaultLead, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get lead time: %w", err)
	}
	return v, nil
}

func (s *RedisStore) SetDefaultLeadTimeMinutes(ctx context.Context, userID int64, minutes int) error {
	if err := s.client.Set(ctx, leadKey(userID), minutes, 0).Err(); err != nil {
		return fmt.Errorf("set lead time: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
