package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

// SeatCache は便ごとの空席数キャッシュを管理する
type SeatCache struct {
	client *redis.Client
}

// NewSeatCache は新しいSeatCacheインスタンスを作成する
func NewSeatCache(client *redis.Client) *SeatCache {
	return &SeatCache{client: client}
}

// GetAvailableCount は便の空席数をキャッシュから取得する
func (c *SeatCache) GetAvailableCount(ctx context.Context, tripID string) (int, error) {
	key := c.availableCountKey(tripID)
	val, err := c.client.Get(ctx, key).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCacheMiss
		}
		return 0, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	return val, nil
}

// SetAvailableCount は便の空席数をキャッシュに保存する
func (c *SeatCache) SetAvailableCount(ctx context.Context, tripID string, count int, ttl time.Duration) error {
	key := c.availableCountKey(tripID)
	err := c.client.Set(ctx, key, count, ttl).Err()
	if err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate は便のキャッシュを無効化する
// 予約・キャンセル確定後に呼ばれる
func (c *SeatCache) Invalidate(ctx context.Context, tripID string) error {
	key := c.availableCountKey(tripID)
	err := c.client.Del(ctx, key).Err()
	if err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func (c *SeatCache) availableCountKey(tripID string) string {
	return fmt.Sprintf("seats:available:%s", tripID)
}
