package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/redis/go-redis/v9"
)

// Cache хранит сериализованные ответы по ключу.
// Реализации: Redis (общий между инстансами) и встроенный LRU.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

// TaskKey возвращает ключ кеша для задачи.
func TaskKey(id int64) string {
	return fmt.Sprintf("task:%d", id)
}

// RedisCache — кеш поверх Redis. Ошибки Redis не фатальны:
// промах кеша всегда можно обслужить из БД.
type RedisCache struct {
	client *redis.Client
}

// NewRedis подключается к Redis по адресу addr.
func NewRedis(addr string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	log.Println("Redis connection successful.")
	return &RedisCache{client: client}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		log.Printf("WARN: failed to set cache key %s: %v", key, err)
	}
}

func (c *RedisCache) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		log.Printf("WARN: failed to delete cache key %s: %v", key, err)
	}
}

// LRUCache — встроенный кеш на один процесс, используется когда
// Redis не сконфигурирован. TTL не поддерживается, вытеснение по размеру.
type LRUCache struct {
	inner *lru.Cache
}

// NewLRU создает LRU-кеш на size записей.
func NewLRU(size int) (*LRUCache, error) {
	inner, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}
	return &LRUCache{inner: inner}, nil
}

func (c *LRUCache) Get(_ context.Context, key string) ([]byte, bool) {
	val, ok := c.inner.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := val.([]byte)
	return b, ok
}

func (c *LRUCache) Set(_ context.Context, key string, value []byte, _ time.Duration) {
	c.inner.Add(key, value)
}

func (c *LRUCache) Delete(_ context.Context, key string) {
	c.inner.Remove(key)
}
