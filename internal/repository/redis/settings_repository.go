// Package redis stores user settings as JSON documents in Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nadmax/yantodo/internal/repository"
	"github.com/nadmax/yantodo/internal/settings"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "settings:"
	maxRetries = 5
)

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

type SettingsRepository struct {
	client *redis.Client
	now    func() time.Time
}

var _ repository.SettingsRepository = (*SettingsRepository)(nil)

func NewSettingsRepository(redisAddr string) (*SettingsRepository, error) {
	client := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &SettingsRepository{
		client: client,
		now:    time.Now,
	}, nil
}

func (r *SettingsRepository) SetClock(now func() time.Time) {
	r.now = now
}

// GetSettings returns the stored settings, creating the defaults on first
// access. If another writer stores the key first, its value is returned.
func (r *SettingsRepository) GetSettings(ctx context.Context, userID string) (*settings.Settings, error) {
	key := keyPrefix + userID

	data, err := r.client.Get(ctx, key).Result()
	if err == nil {
		return decode(userID, data)
	}
	if !errors.Is(err, redis.Nil) {
		return nil, err
	}

	defaults := settings.Default(userID, r.now())
	encoded, err := defaults.ToJSON()
	if err != nil {
		return nil, err
	}

	created, err := r.client.SetNX(ctx, key, encoded, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to create default settings for %s: %w", userID, err)
	}
	if !created {
		return r.load(ctx, r.client, userID)
	}

	return defaults, nil
}

// UpdateSettings runs fn inside a WATCH/MULTI transaction on the user's key
// and retries when another writer got there first.
func (r *SettingsRepository) UpdateSettings(ctx context.Context, userID string, fn func(*settings.Settings) error) (*settings.Settings, error) {
	key := keyPrefix + userID
	var updated *settings.Settings

	txf := func(tx *redis.Tx) error {
		s, err := r.load(ctx, tx, userID)
		if err != nil {
			return err
		}

		if err := fn(s); err != nil {
			return err
		}

		data, err := s.ToJSON()
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		if err != nil {
			return err
		}

		updated = s
		return nil
	}

	for range maxRetries {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}

		return updated, nil
	}

	return nil, fmt.Errorf("%w: settings for user %s", repository.ErrConflict, userID)
}

func (r *SettingsRepository) Close() error {
	return r.client.Close()
}

func (r *SettingsRepository) load(ctx context.Context, c getter, userID string) (*settings.Settings, error) {
	data, err := c.Get(ctx, keyPrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return settings.Default(userID, r.now()), nil
	}
	if err != nil {
		return nil, err
	}

	return decode(userID, data)
}

func decode(userID, data string) (*settings.Settings, error) {
	s, err := settings.SettingsFromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode settings for %s: %w", userID, err)
	}

	return s, nil
}
