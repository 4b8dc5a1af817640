package repository

import (
	"context"
	"time"

	"github.com/weiawesome/ward-rooms/internal/domain"
)

// ErrRoomNotFound is returned for missing or soft-deleted rooms.
var ErrRoomNotFound = domain.ErrRoomNotFound

// RoomRepository defines the interface for room data persistence.
// Every read and write is scoped to active rooms.
type RoomRepository interface {
	// Create assigns the internal id and a unique public room code.
	Create(ctx context.Context, room *domain.Room) error
	FindActiveByID(ctx context.Context, id string) (*domain.Room, error)
	// IsActive is a cheap existence check used to revalidate cached rooms.
	IsActive(ctx context.Context, id string) (bool, error)
	// Update overwrites every mutable field of an active room.
	Update(ctx context.Context, room *domain.Room) error
	UpdateImages(ctx context.Context, id string, images []string) error
	SoftDelete(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context, filter domain.RoomFilter, offset, limit int) ([]domain.Room, error)
	Count(ctx context.Context, filter domain.RoomFilter) (int64, error)
	Overview(ctx context.Context) (*domain.StatsOverview, error)
	CountByBranchStatus(ctx context.Context) ([]domain.BranchStatusCount, error)
}
