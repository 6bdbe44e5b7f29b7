package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/maliky/schedule-checker-app/config"
)

// ErrKeyNotFound 键不存在或已过期
var ErrKeyNotFound = errors.New("redis: 键不存在")

// Client Redis 客户端封装
// 用于处理产物缓存与上传接口限流
type Client struct {
	rdb    goredis.UniversalClient
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// NewFromUniversal 包装已有连接（测试或共享连接池时使用）
func NewFromUniversal(rdb goredis.UniversalClient, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{rdb: rdb, logger: logger}
}

// ── 二进制产物 ──

// SetBytes 写入二进制内容，ttl<=0 表示不过期
func (c *Client) SetBytes(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return c.rdb.Set(ctx, key, data, ttl).Err()
}

// GetBytes 读取二进制内容，不存在时返回 ErrKeyNotFound
func (c *Client) GetBytes(ctx context.Context, key string) ([]byte, error) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrKeyNotFound
	}
	return data, err
}

// ── 限流 ──

// CheckRateLimit 固定窗口计数限流
// 窗口内第一次请求设置过期时间，计数超过 limit 即拒绝
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	var incr *goredis.IntCmd
	_, err := c.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		return nil
	})
	if err != nil {
		return false, err
	}
	return incr.Val() <= int64(limit), nil
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
