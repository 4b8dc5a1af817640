package cache

import (
	"context"
	"errors"
	"time"

	"github.com/weiawesome/ward-rooms/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

type RoomCacheResult struct {
	Room domain.Room `json:"room"`
}

// RoomCache caches active rooms by internal id.
type RoomCache interface {
	Get(ctx context.Context, key string) (*RoomCacheResult, error)
	Set(ctx context.Context, key string, result *RoomCacheResult, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	BuildKeyByID(roomID string) string
	Close() error
}

// NopRoomCache always misses. Used when caching is disabled.
type NopRoomCache struct{}

func (NopRoomCache) Get(context.Context, string) (*RoomCacheResult, error) {
	return nil, ErrCacheMiss
}

func (NopRoomCache) Set(context.Context, string, *RoomCacheResult, time.Duration) error {
	return nil
}

func (NopRoomCache) Delete(context.Context, ...string) error { return nil }

func (NopRoomCache) BuildKeyByID(roomID string) string { return roomID }

func (NopRoomCache) Close() error { return nil }
