package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"fleetwave/backend/config"
)

// Client Redis 客户端封装
// 用于 Token 黑名单、接口限流与拦截汇总缓存；连接失败时调用方降级为 nil
type Client struct {
	rdb    *goredis.Client
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

// ── Token 黑名单 ──

const blacklistPrefix = "token:blacklist:"

// IsBlacklisted 检查 JWT ID 是否在黑名单中（黑名单由托管认证服务在登出时写入）
func (c *Client) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ── 限流 ──

// CheckRateLimit 滑动窗口限流：窗口内请求数不超过 limit 时放行
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	member := strconv.FormatInt(now.UnixNano(), 10)
	windowStart := strconv.FormatInt(now.Add(-window).UnixNano(), 10)

	pipe := c.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", windowStart)
	pipe.ZAdd(ctx, key, goredis.Z{Score: float64(now.UnixNano()), Member: member})
	card := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return card.Val() <= int64(limit), nil
}

// ── 拦截汇总缓存 ──

const blockingPrefix = "rent:blocking:"

// GetBlocking 读取缓存的 (overdue, rejected) 计数；未命中返回 ok=false
func (c *Client) GetBlocking(ctx context.Context, driverID, day string) (overdue, rejected int, ok bool, err error) {
	vals, err := c.rdb.HMGet(ctx, blockingPrefix+driverID+":"+day, "overdue", "rejected").Result()
	if err != nil {
		return 0, 0, false, err
	}
	if len(vals) != 2 || vals[0] == nil || vals[1] == nil {
		return 0, 0, false, nil
	}
	overdue, err1 := strconv.Atoi(fmt.Sprint(vals[0]))
	rejected, err2 := strconv.Atoi(fmt.Sprint(vals[1]))
	if err1 != nil || err2 != nil {
		return 0, 0, false, nil
	}
	return overdue, rejected, true, nil
}

// SetBlocking 写入拦截汇总缓存
func (c *Client) SetBlocking(ctx context.Context, driverID, day string, overdue, rejected int, ttl time.Duration) error {
	key := blockingPrefix + driverID + ":" + day
	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, key, "overdue", overdue, "rejected", rejected)
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// InvalidateBlocking 报告或司机状态变更后清除该司机的汇总缓存
func (c *Client) InvalidateBlocking(ctx context.Context, driverID string) error {
	iter := c.rdb.Scan(ctx, 0, blockingPrefix+driverID+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
