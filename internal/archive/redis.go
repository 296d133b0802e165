package archive

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Save writes e as JSON. A zero ttl stores the key without expiry.
func (s *RedisStore) Save(ctx context.Context, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode archive entry: %w", err)
	}
	if err := s.client.Set(ctx, entryKey(e.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store archive entry: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id int64) (*Entry, error) {
	data, err := s.client.Get(ctx, entryKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load archive entry: %w", err)
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to decode archive entry: %w", err)
	}
	return &e, nil
}

func (s *RedisStore) Delete(ctx context.Context, id int64) error {
	return s.client.Del(ctx, entryKey(id)).Err()
}

// entryKey hashes on the braces so cluster deployments keep an entry in one slot.
func entryKey(id int64) string {
	var raw [8]byte
	binary.LittleEndian.PutUint64(raw[:], uint64(id))
	return "archive.{" + base64.RawStdEncoding.EncodeToString(raw[:]) + "}"
}
