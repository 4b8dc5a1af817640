package domain

import (
	"time"

	"github.com/weiawesome/ward-rooms/pkg/database"
)

// RoomModel is the GORM model for rooms table.
type RoomModel struct {
	ID                string                       `gorm:"type:varchar(36);primaryKey"`
	RoomCode          string                       `gorm:"type:varchar(16);uniqueIndex;not null"`
	RoomName          string                       `gorm:"type:varchar(200);not null"`
	HospitalBranch    string                       `gorm:"type:varchar(200);index;not null"`
	FloorName         string                       `gorm:"type:varchar(100);not null"`
	RoomNumber        string                       `gorm:"type:varchar(50);not null"`
	WingBuilding      string                       `gorm:"type:varchar(100);not null"`
	RoomCategory      string                       `gorm:"type:varchar(100);not null"`
	CustomCategory    string                       `gorm:"type:varchar(100)"`
	RentAmount        float64                      `gorm:"not null"`
	AdditionalCharges AdditionalCharges            `gorm:"embedded"`
	PackageRates      database.JSON[[]PackageRate] `gorm:"type:text"`
	Facilities        database.StringArray         `gorm:"type:text"`
	Capacity          Capacity                     `gorm:"embedded"`
	Images            database.StringArray         `gorm:"type:text"`
	Status            string                       `gorm:"type:varchar(20);index;not null"`
	IsActive          bool                         `gorm:"index;not null"`
	CreatedAt         time.Time                    `gorm:"autoCreateTime;index"`
	UpdatedAt         time.Time                    `gorm:"autoUpdateTime"`
	DeletedAt         *time.Time
}

// TableName specifies the table name for RoomModel.
func (RoomModel) TableName() string {
	return "rooms"
}

// ToDomain converts RoomModel to domain Room.
func (m *RoomModel) ToDomain() *Room {
	rates := m.PackageRates.Data
	if rates == nil {
		rates = []PackageRate{}
	}
	facilities := []string(m.Facilities)
	if facilities == nil {
		facilities = []string{}
	}
	images := []string(m.Images)
	if images == nil {
		images = []string{}
	}
	return &Room{
		ID:                m.ID,
		RoomID:            m.RoomCode,
		RoomName:          m.RoomName,
		HospitalBranch:    m.HospitalBranch,
		FloorName:         m.FloorName,
		RoomNumber:        m.RoomNumber,
		WingBuilding:      m.WingBuilding,
		RoomCategory:      m.RoomCategory,
		CustomCategory:    m.CustomCategory,
		RentAmount:        m.RentAmount,
		AdditionalCharges: m.AdditionalCharges,
		PackageRates:      rates,
		Facilities:        facilities,
		Capacity:          m.Capacity,
		Images:            images,
		Status:            RoomStatus(m.Status),
		IsActive:          m.IsActive,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
		DeletedAt:         m.DeletedAt,
	}
}

// RoomToModel converts domain Room to RoomModel.
func RoomToModel(r *Room) *RoomModel {
	return &RoomModel{
		ID:                r.ID,
		RoomCode:          r.RoomID,
		RoomName:          r.RoomName,
		HospitalBranch:    r.HospitalBranch,
		FloorName:         r.FloorName,
		RoomNumber:        r.RoomNumber,
		WingBuilding:      r.WingBuilding,
		RoomCategory:      r.RoomCategory,
		CustomCategory:    r.CustomCategory,
		RentAmount:        r.RentAmount,
		AdditionalCharges: r.AdditionalCharges,
		PackageRates:      database.NewJSON(r.PackageRates),
		Facilities:        database.StringArray(r.Facilities),
		Capacity:          r.Capacity,
		Images:            database.StringArray(r.Images),
		Status:            string(r.Status),
		IsActive:          r.IsActive,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
		DeletedAt:         r.DeletedAt,
	}
}

// NewRoom builds an active room from a validated creation request.
func NewRoom(req *CreateRoomRequest, images []string) *Room {
	room := &Room{
		RoomName:       req.RoomName,
		HospitalBranch: req.HospitalBranch,
		FloorName:      req.FloorName,
		RoomNumber:     req.RoomNumber,
		WingBuilding:   req.WingBuilding,
		RoomCategory:   req.RoomCategory,
		CustomCategory: req.CustomCategory,
		PackageRates:   req.PackageRates,
		Facilities:     req.Facilities,
		Images:         images,
		Status:         req.Status,
		IsActive:       true,
	}
	if req.RentAmount != nil {
		room.RentAmount = *req.RentAmount
	}
	if req.AdditionalCharges != nil {
		room.AdditionalCharges = *req.AdditionalCharges
	}
	if req.Capacity != nil {
		room.Capacity = *req.Capacity
	}
	if room.Status == "" {
		room.Status = RoomStatusAvailable
	}
	if room.PackageRates == nil {
		room.PackageRates = []PackageRate{}
	}
	if room.Facilities == nil {
		room.Facilities = []string{}
	}
	if room.Images == nil {
		room.Images = []string{}
	}
	return room
}
