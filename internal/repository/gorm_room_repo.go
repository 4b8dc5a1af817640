package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"

	"github.com/weiawesome/ward-rooms/internal/domain"
	"github.com/weiawesome/ward-rooms/pkg/database"
	"github.com/weiawesome/ward-rooms/pkg/log"
)

// maxCodeAttempts bounds room code regeneration on unique-key collisions.
const maxCodeAttempts = 5

// Public room codes are "RM" followed by six digits.
const (
	roomCodePrefix   = "RM"
	roomCodeAlphabet = "0123456789"
	roomCodeSize     = 6
)

// likeEscape is the escape character used in LIKE patterns. It is not
// special in any supported dialect's string literals.
const likeEscape = "!"

// GormRoomRepository implements RoomRepository using GORM.
type GormRoomRepository struct {
	db      *gorm.DB
	newCode func() (string, error)
}

// NewGormRoomRepository creates a new GORM-based room repository.
func NewGormRoomRepository(db *gorm.DB) *GormRoomRepository {
	return &GormRoomRepository{db: db, newCode: randomRoomCode}
}

func randomRoomCode() (string, error) {
	digits, err := gonanoid.Generate(roomCodeAlphabet, roomCodeSize)
	if err != nil {
		return "", fmt.Errorf("failed to generate room code: %w", err)
	}
	return roomCodePrefix + digits, nil
}

// Create creates a new room.
func (r *GormRoomRepository) Create(ctx context.Context, room *domain.Room) error {
	l := log.Ctx(ctx)

	model := domain.RoomToModel(room)
	model.ID = uuid.New().String()
	model.IsActive = true
	model.DeletedAt = nil

	var err error
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		model.RoomCode, err = r.newCode()
		if err != nil {
			l.Error().Err(err).Msg("failed to generate room code")
			return err
		}
		err = r.db.WithContext(ctx).Create(model).Error
		if err == nil {
			break
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			l.Error().Err(err).Msg("failed to create room in db")
			return err
		}
		l.Warn().Str(log.FieldRoomCode, model.RoomCode).Int("attempt", attempt).Msg("room code collision, regenerating")
	}
	if err != nil {
		l.Error().Err(err).Msg("failed to allocate unique room code")
		return fmt.Errorf("allocate room code after %d attempts: %w", maxCodeAttempts, err)
	}

	// Update the domain object with generated identity and timestamps
	room.ID = model.ID
	room.RoomID = model.RoomCode
	room.IsActive = true
	room.CreatedAt = model.CreatedAt
	room.UpdatedAt = model.UpdatedAt
	l.Debug().Str(log.FieldRoomID, room.ID).Str(log.FieldRoomCode, room.RoomID).Msg("room created in db")
	return nil
}

// FindActiveByID retrieves an active room by internal id.
func (r *GormRoomRepository) FindActiveByID(ctx context.Context, id string) (*domain.Room, error) {
	l := log.Ctx(ctx)

	var model domain.RoomModel
	result := r.db.WithContext(ctx).First(&model, "id = ? AND is_active = ?", id, true)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		l.Error().Err(result.Error).Str(log.FieldRoomID, id).Msg("failed to get room by id")
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// IsActive reports whether id names an active room.
func (r *GormRoomRepository) IsActive(ctx context.Context, id string) (bool, error) {
	l := log.Ctx(ctx)

	var count int64
	err := r.db.WithContext(ctx).Model(&domain.RoomModel{}).
		Where("id = ? AND is_active = ?", id, true).
		Limit(1).
		Count(&count).Error
	if err != nil {
		l.Error().Err(err).Str(log.FieldRoomID, id).Msg("failed to check room state")
		return false, err
	}
	return count > 0, nil
}

// Update overwrites the mutable fields of an active room.
func (r *GormRoomRepository) Update(ctx context.Context, room *domain.Room) error {
	l := log.Ctx(ctx)

	model := domain.RoomToModel(room)
	result := r.db.WithContext(ctx).Model(model).
		Where("is_active = ?", true).
		Select("*").
		Omit("id", "room_code", "is_active", "created_at", "deleted_at").
		Updates(model)
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldRoomID, room.ID).Msg("failed to update room in db")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRoomNotFound
	}

	room.UpdatedAt = model.UpdatedAt
	l.Debug().Str(log.FieldRoomID, room.ID).Msg("room updated in db")
	return nil
}

// UpdateImages replaces the image list of an active room.
func (r *GormRoomRepository) UpdateImages(ctx context.Context, id string, images []string) error {
	l := log.Ctx(ctx)

	result := r.db.WithContext(ctx).Model(&domain.RoomModel{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(map[string]interface{}{
			"images":     database.StringArray(images),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldRoomID, id).Msg("failed to update room images in db")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// SoftDelete deactivates a room. The record is retained.
func (r *GormRoomRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	l := log.Ctx(ctx)

	result := r.db.WithContext(ctx).Model(&domain.RoomModel{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(map[string]interface{}{
			"is_active":  false,
			"deleted_at": at,
		})
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldRoomID, id).Msg("failed to soft delete room in db")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRoomNotFound
	}
	l.Debug().Str(log.FieldRoomID, id).Msg("room soft deleted in db")
	return nil
}

// List retrieves a page of active rooms, newest first.
func (r *GormRoomRepository) List(ctx context.Context, filter domain.RoomFilter, offset, limit int) ([]domain.Room, error) {
	l := log.Ctx(ctx)

	var models []domain.RoomModel
	err := r.filtered(ctx, filter).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		l.Error().Err(err).Msg("failed to list rooms from db")
		return nil, err
	}

	rooms := make([]domain.Room, len(models))
	for i, model := range models {
		rooms[i] = *model.ToDomain()
	}
	return rooms, nil
}

// Count counts active rooms matching filter.
func (r *GormRoomRepository) Count(ctx context.Context, filter domain.RoomFilter) (int64, error) {
	l := log.Ctx(ctx)

	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		l.Error().Err(err).Msg("failed to count rooms")
		return 0, err
	}
	return total, nil
}

func (r *GormRoomRepository) filtered(ctx context.Context, filter domain.RoomFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&domain.RoomModel{}).Where("is_active = ?", true)

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
		query = query.Where(
			"(LOWER(room_name) LIKE ? ESCAPE '"+likeEscape+"' OR LOWER(room_number) LIKE ? ESCAPE '"+likeEscape+"' OR LOWER(room_code) LIKE ? ESCAPE '"+likeEscape+"')",
			pattern, pattern, pattern,
		)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Branch != "" {
		query = query.Where("hospital_branch = ?", filter.Branch)
	}
	return query
}

// escapeLike makes LIKE wildcards in user input match literally.
func escapeLike(s string) string {
	return strings.NewReplacer(
		likeEscape, likeEscape+likeEscape,
		"%", likeEscape+"%",
		"_", likeEscape+"_",
	).Replace(s)
}

type overviewRow struct {
	TotalRooms       int64
	AvailableRooms   int64
	OccupiedRooms    int64
	MaintenanceRooms int64
	ReservedRooms    int64
	BlockedRooms     int64
	AverageRent      float64
	TotalBeds        int64
	AvailableBeds    int64
}

// Overview aggregates every active room in a single query.
func (r *GormRoomRepository) Overview(ctx context.Context) (*domain.StatsOverview, error) {
	l := log.Ctx(ctx)

	var row overviewRow
	err := r.db.WithContext(ctx).Model(&domain.RoomModel{}).
		Select(`COUNT(*) AS total_rooms,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS available_rooms,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS occupied_rooms,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS maintenance_rooms,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS reserved_rooms,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS blocked_rooms,
			COALESCE(AVG(rent_amount), 0) AS average_rent,
			COALESCE(SUM(total_beds), 0) AS total_beds,
			COALESCE(SUM(available_beds), 0) AS available_beds`,
			string(domain.RoomStatusAvailable),
			string(domain.RoomStatusOccupied),
			string(domain.RoomStatusMaintenance),
			string(domain.RoomStatusReserved),
			string(domain.RoomStatusBlocked),
		).
		Where("is_active = ?", true).
		Scan(&row).Error
	if err != nil {
		l.Error().Err(err).Msg("failed to aggregate room stats")
		return nil, err
	}

	return &domain.StatsOverview{
		TotalRooms:       row.TotalRooms,
		AvailableRooms:   row.AvailableRooms,
		OccupiedRooms:    row.OccupiedRooms,
		MaintenanceRooms: row.MaintenanceRooms,
		ReservedRooms:    row.ReservedRooms,
		BlockedRooms:     row.BlockedRooms,
		AverageRent:      row.AverageRent,
		TotalBeds:        row.TotalBeds,
		AvailableBeds:    row.AvailableBeds,
	}, nil
}

type branchStatusRow struct {
	Branch string
	Status string
	Count  int64
}

// CountByBranchStatus counts active rooms grouped by branch and status.
func (r *GormRoomRepository) CountByBranchStatus(ctx context.Context) ([]domain.BranchStatusCount, error) {
	l := log.Ctx(ctx)

	var rows []branchStatusRow
	err := r.db.WithContext(ctx).Model(&domain.RoomModel{}).
		Select("hospital_branch AS branch, status, COUNT(*) AS count").
		Where("is_active = ?", true).
		Group("hospital_branch, status").
		Order("hospital_branch, status").
		Scan(&rows).Error
	if err != nil {
		l.Error().Err(err).Msg("failed to count rooms by branch and status")
		return nil, err
	}

	counts := make([]domain.BranchStatusCount, len(rows))
	for i, row := range rows {
		counts[i] = domain.BranchStatusCount{
			Branch: row.Branch,
			Status: domain.RoomStatus(row.Status),
			Count:  row.Count,
		}
	}
	return counts, nil
}
