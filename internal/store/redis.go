package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"inhouse52/internal/models"
)

const DefaultRedisKey = "inhouse52:state"

// Redis stores the JSON document under a single key.
type Redis struct {
	client *redis.Client
	key    string
	now    func() time.Time
}

var _ Store = (*Redis)(nil)

type RedisOptions struct {
	Addr     string
	Username string
	Password string
	DB       int
	Key      string
}

func NewRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	if opts.Addr == "" {
		return nil, errors.New("redis address is required")
	}
	key := opts.Key
	if key == "" {
		key = DefaultRedisKey
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Username: opts.Username,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{client: client, key: key, now: time.Now}, nil
}

func (s *Redis) Load(ctx context.Context) (*models.AppState, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.DefaultState(s.now()), nil
	} else if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	var state models.AppState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	state.Normalize()
	return &state, nil
}

func (s *Redis) Save(ctx context.Context, state *models.AppState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := s.client.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

func (s *Redis) Close() error {
	return s.client.Close()
}
