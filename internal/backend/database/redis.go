package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPhotosKey = "photos"

// RedisDatabase stores each photo as JSON in one hash field keyed by photo id.
type RedisDatabase struct {
	client *redis.Client
	key    string
	now    func() time.Time
}

// NewRedisDatabase accepts a redis:// URL or a bare host:port address.
func NewRedisDatabase(connectionString string) (*RedisDatabase, error) {
	var options *redis.Options
	if strings.Contains(connectionString, "://") {
		parsed, err := redis.ParseURL(connectionString)
		if err != nil {
			return nil, fmt.Errorf("invalid redis connection string: %w", err)
		}
		options = parsed
	} else {
		options = &redis.Options{Addr: connectionString}
	}

	return &RedisDatabase{
		client: redis.NewClient(options),
		key:    redisPhotosKey,
		now:    time.Now,
	}, nil
}

func (r *RedisDatabase) CreateDatabase() error {
	// hashes are created on first write; only check the server answers
	return r.client.Ping(context.Background()).Err()
}

func (r *RedisDatabase) DoesDatabaseExist() bool {
	return r.client.Ping(context.Background()).Err() == nil
}

func (r *RedisDatabase) Close() error {
	return r.client.Close()
}

func (r *RedisDatabase) ListPhotos(ctx context.Context) ([]*Photo, error) {
	values, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, err
	}
	photos := make([]*Photo, 0, len(values))
	for id, raw := range values {
		photo, err := decodePhoto(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode photo %s: %w", id, err)
		}
		photos = append(photos, photo)
	}
	SortByDateDesc(photos)
	return photos, nil
}

func (r *RedisDatabase) GetPhoto(ctx context.Context, id string) (*Photo, error) {
	raw, err := r.client.HGet(ctx, r.key, id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrPhotoNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodePhoto(raw)
}

func (r *RedisDatabase) CreatePhoto(ctx context.Context, input NewPhoto) (*Photo, error) {
	id, err := generateID()
	if err != nil {
		return nil, err
	}
	photo := newPhotoRecord(id, input, r.now())
	raw, err := json.Marshal(photo)
	if err != nil {
		return nil, err
	}
	created, err := r.client.HSetNX(ctx, r.key, id, raw).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to store photo: %w", err)
	}
	if !created {
		return nil, fmt.Errorf("photo id collision: %s", id)
	}
	return photo, nil
}

func (r *RedisDatabase) UpdatePhoto(ctx context.Context, id string, update PhotoUpdate) (*Photo, error) {
	var updated *Photo
	txf := func(tx *redis.Tx) error {
		raw, err := tx.HGet(ctx, r.key, id).Result()
		if errors.Is(err, redis.Nil) {
			return ErrPhotoNotFound
		}
		if err != nil {
			return err
		}
		photo, err := decodePhoto(raw)
		if err != nil {
			return err
		}
		if update.IsEmpty() {
			updated = photo
			return nil
		}

		update.applyTo(photo)
		encoded, err := json.Marshal(photo)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, r.key, id, encoded)
			return nil
		})
		if err == nil {
			updated = photo
		}
		return err
	}

	err := r.client.Watch(ctx, txf, r.key)
	if errors.Is(err, redis.TxFailedErr) {
		return nil, fmt.Errorf("failed to update photo %s: concurrent modification", id)
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *RedisDatabase) DeletePhoto(ctx context.Context, id string) (bool, error) {
	removed, err := r.client.HDel(ctx, r.key, id).Result()
	if err != nil {
		return false, err
	}
	return removed > 0, nil
}

func decodePhoto(raw string) (*Photo, error) {
	var photo Photo
	if err := json.Unmarshal([]byte(raw), &photo); err != nil {
		return nil, err
	}
	return &photo, nil
}
