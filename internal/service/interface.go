package service

import (
	"context"

	"github.com/weiawesome/ward-rooms/internal/domain"
)

// RoomService defines the room mutations and single-room reads.
// Errors are *domain.ValidationError, domain.ErrRoomNotFound or
// *domain.StorageError.
type RoomService interface {
	CreateRoom(ctx context.Context, userID string, req *domain.CreateRoomRequest, images []domain.ImageUpload) (*domain.Room, error)
	GetRoom(ctx context.Context, id string) (*domain.Room, error)
	UpdateRoom(ctx context.Context, userID, id string, req *domain.UpdateRoomRequest, images []domain.ImageUpload) (*domain.Room, error)
	DeleteRoom(ctx context.Context, userID, id string) error
	// DeleteImage detaches one image and returns the number left on the room.
	DeleteImage(ctx context.Context, userID string, req *domain.DeleteImageRequest) (int, error)
}

// QueryEngine answers list and statistics queries over active rooms.
type QueryEngine interface {
	ListRooms(ctx context.Context, query *domain.ListRoomsQuery) (*domain.RoomPage, error)
	RoomStats(ctx context.Context) (*domain.RoomStats, error)
}
