package throttle

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix Redis 键前缀
const keyPrefix = "throttle:"

// RedisStore 基于 Redis 的节流状态存储，键带 TTL 自动过期
//
// 多进程部署时替换 MemoryStore 使用。
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 从现有 Redis 客户端创建节流存储
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// NewRedisStoreFromURL 从 URL 创建节流存储
func NewRedisStoreFromURL(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("throttle: parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("throttle: connect redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func (r *RedisStore) Get(ctx context.Context, key string) (time.Time, bool, error) {
	val, err := r.client.Get(ctx, keyPrefix+key).Int64()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return time.UnixMilli(val), true, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, next time.Time, ttl time.Duration) error {
	return r.client.Set(ctx, keyPrefix+key, next.UnixMilli(), ttl).Err()
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, keyPrefix+key).Err()
}

// Close 关闭 Redis 连接
func (r *RedisStore) Close() error {
	return r.client.Close()
}
