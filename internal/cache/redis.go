// Package cache хранит в Redis каталог планов и одноразовые уведомления пользователей.
// Права доступа сюда не попадают: они пересчитываются из базы на каждом запросе.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/movibes/internal/config"
	"github.com/magabrotheeeer/movibes/internal/models"
)

// NoticeTTL сколько живут непоказанные уведомления.
const NoticeTTL = 24 * time.Hour

// Cache обёртка над redis клиентом.
type Cache struct {
	Db *redis.Client
}

// InitServer подключается к Redis и проверяет соединение.
func InitServer(ctx context.Context, cfg config.RedisConnection) (*Cache, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Cache{Db: db}, nil
}

// Get читает JSON значение по ключу в result. false, если ключа нет.
func (c *Cache) Get(key string, result any) (bool, error) {
	const op = "cache.Get"
	val, err := c.Db.Get(context.Background(), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if err = json.Unmarshal(val, result); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// Set сохраняет значение в JSON.
func (c *Cache) Set(key string, value any, expiration time.Duration) error {
	const op = "cache.Set"
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := c.Db.Set(context.Background(), key, jsonData, expiration).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Invalidate удаляет ключи.
func (c *Cache) Invalidate(keys ...string) error {
	const op = "cache.Invalidate"
	if len(keys) == 0 {
		return nil
	}
	if err := c.Db.Del(context.Background(), keys...).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает соединение.
func (c *Cache) Close() error {
	return c.Db.Close()
}

func noticesKey(userID string) string {
	return "notices:" + userID
}

// PushNotice добавляет уведомление в очередь пользователя.
func (c *Cache) PushNotice(ctx context.Context, userID string, n models.Notice) error {
	const op = "cache.PushNotice"
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	pipe := c.Db.TxPipeline()
	pipe.RPush(ctx, noticesKey(userID), data)
	pipe.Expire(ctx, noticesKey(userID), NoticeTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// PopNotices забирает и удаляет все уведомления пользователя атомарно.
func (c *Cache) PopNotices(ctx context.Context, userID string) ([]models.Notice, error) {
	const op = "cache.PopNotices"
	pipe := c.Db.TxPipeline()
	lrange := pipe.LRange(ctx, noticesKey(userID), 0, -1)
	pipe.Del(ctx, noticesKey(userID))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	raw := lrange.Val()
	notices := make([]models.Notice, 0, len(raw))
	for _, item := range raw {
		var n models.Notice
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		notices = append(notices, n)
	}
	return notices, nil
}
