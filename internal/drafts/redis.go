package drafts

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/Samsuesca/uniformes-backend/internal/domain"
)

// RedisStore keeps drafts in Redis so they survive server restarts and are
// visible to every instance serving the same terminals. Each draft lives
// under its own key with the store's TTL, so stale drafts age out without a
// sweeper.
type RedisStore struct {
	client   *redis.Client
	ttl      time.Duration
	capacity int
}

func NewRedisStore(addr, password string, db int, ttl time.Duration, capacity int) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisStore{client: client, ttl: ttl, capacity: normalizeCapacity(capacity)}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func draftKey(terminalID, draftID string) string {
	return "draft:" + terminalID + ":" + draftID
}

func terminalPattern(terminalID string) string {
	return "draft:" + terminalID + ":*"
}

func (s *RedisStore) Save(ctx context.Context, draft domain.SaleDraft) error {
	key := draftKey(draft.TerminalID, draft.ID)
	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		keys, err := s.terminalKeys(ctx, draft.TerminalID)
		if err != nil {
			return err
		}
		if len(keys) >= s.capacity {
			return ErrTerminalFull
		}
	}
	payload, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, payload, s.ttl).Err()
}

func (s *RedisStore) List(ctx context.Context, terminalID string) ([]domain.SaleDraft, error) {
	keys, err := s.terminalKeys(ctx, terminalID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.SaleDraft, 0, len(keys))
	for _, key := range keys {
		val, err := s.client.Get(ctx, key).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, err
		}
		var d domain.SaleDraft
		if err := json.Unmarshal([]byte(val), &d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	sortBySavedAt(out)
	return out, nil
}

func (s *RedisStore) Get(ctx context.Context, terminalID, draftID string) (*domain.SaleDraft, error) {
	val, err := s.client.Get(ctx, draftKey(terminalID, draftID)).Result()
	if err == redis.Nil {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, err
	}
	var d domain.SaleDraft
	if err := json.Unmarshal([]byte(val), &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *RedisStore) Delete(ctx context.Context, terminalID, draftID string) error {
	removed, err := s.client.Del(ctx, draftKey(terminalID, draftID)).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return ErrDraftNotFound
	}
	return nil
}

func (s *RedisStore) terminalKeys(ctx context.Context, terminalID string) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, terminalPattern(terminalID), 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}
