package domain

import (
	"io"
	"time"
)

// RoomStatus represents the occupancy status of a room.
type RoomStatus string

const (
	RoomStatusAvailable   RoomStatus = "Available"
	RoomStatusOccupied    RoomStatus = "Occupied"
	RoomStatusMaintenance RoomStatus = "Maintenance"
	RoomStatusReserved    RoomStatus = "Reserved"
	RoomStatusBlocked     RoomStatus = "Blocked"
)

// RoomStatuses lists every valid status.
var RoomStatuses = []RoomStatus{
	RoomStatusAvailable,
	RoomStatusOccupied,
	RoomStatusMaintenance,
	RoomStatusReserved,
	RoomStatusBlocked,
}

// Valid reports whether s is one of the fixed statuses.
func (s RoomStatus) Valid() bool {
	for _, v := range RoomStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// MaxImagesPerRoom caps the number of images attached to a room.
const MaxImagesPerRoom = 5

// AdditionalCharges are charged on top of the base rent.
type AdditionalCharges struct {
	NursingCharges   float64 `json:"nursingCharges" validate:"gte=0"`
	CleaningCharges  float64 `json:"cleaningCharges" validate:"gte=0"`
	EquipmentCharges float64 `json:"equipmentCharges" validate:"gte=0"`
}

// PackageRate is a named bundled price.
type PackageRate struct {
	PackageName string  `json:"packageName"`
	Rate        float64 `json:"rate" validate:"gte=0"`
	Duration    string  `json:"duration"`
}

// Capacity describes beds and patients a room holds.
// AvailableBeds is not checked against TotalBeds.
type Capacity struct {
	TotalBeds       int `json:"totalBeds" validate:"gte=1"`
	AvailableBeds   int `json:"availableBeds" validate:"gte=0"`
	PatientCapacity int `json:"patientCapacity" validate:"gte=1"`
}

// Room is a hospital room in the inventory.
type Room struct {
	ID                string            `json:"id"`
	RoomID            string            `json:"roomId"`
	RoomName          string            `json:"roomName"`
	HospitalBranch    string            `json:"hospitalBranch"`
	FloorName         string            `json:"floorName"`
	RoomNumber        string            `json:"roomNumber"`
	WingBuilding      string            `json:"wingBuilding"`
	RoomCategory      string            `json:"roomCategory"`
	CustomCategory    string            `json:"customCategory,omitempty"`
	RentAmount        float64           `json:"rentAmount"`
	AdditionalCharges AdditionalCharges `json:"additionalCharges"`
	PackageRates      []PackageRate     `json:"packageRates"`
	Facilities        []string          `json:"facilities"`
	Capacity          Capacity          `json:"capacity"`
	Images            []string          `json:"images"`
	Status            RoomStatus        `json:"status"`
	IsActive          bool              `json:"isActive"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
	DeletedAt         *time.Time        `json:"deletedAt,omitempty"`
}

// HasImage reports whether url is attached to the room.
func (r *Room) HasImage(url string) bool {
	for _, img := range r.Images {
		if img == url {
			return true
		}
	}
	return false
}

// ImagesWithout returns the image list minus url, preserving order.
func (r *Room) ImagesWithout(url string) []string {
	out := make([]string, 0, len(r.Images))
	for _, img := range r.Images {
		if img != url {
			out = append(out, img)
		}
	}
	return out
}

// ImageUpload is one image attachment received with a create or update.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// CreateRoomRequest is a validated room creation payload.
type CreateRoomRequest struct {
	RoomName          string             `json:"roomName" validate:"required"`
	HospitalBranch    string             `json:"hospitalBranch" validate:"required"`
	FloorName         string             `json:"floorName" validate:"required"`
	RoomNumber        string             `json:"roomNumber" validate:"required"`
	WingBuilding      string             `json:"wingBuilding" validate:"required"`
	RoomCategory      string             `json:"roomCategory" validate:"required"`
	CustomCategory    string             `json:"customCategory"`
	RentAmount        *float64           `json:"rentAmount" validate:"required,gte=0"`
	AdditionalCharges *AdditionalCharges `json:"additionalCharges"`
	PackageRates      []PackageRate      `json:"packageRates" validate:"omitempty,dive"`
	Facilities        []string           `json:"facilities"`
	Capacity          *Capacity          `json:"capacity" validate:"required"`
	Status            RoomStatus         `json:"status" validate:"omitempty,oneof=Available Occupied Maintenance Reserved Blocked"`
}

// UpdateRoomRequest is a validated partial update. Nil fields are left
// untouched; nested objects and lists replace the stored value as a unit.
type UpdateRoomRequest struct {
	RoomName          *string            `json:"roomName" validate:"omitempty,min=1"`
	HospitalBranch    *string            `json:"hospitalBranch" validate:"omitempty,min=1"`
	FloorName         *string            `json:"floorName" validate:"omitempty,min=1"`
	RoomNumber        *string            `json:"roomNumber" validate:"omitempty,min=1"`
	WingBuilding      *string            `json:"wingBuilding" validate:"omitempty,min=1"`
	RoomCategory      *string            `json:"roomCategory" validate:"omitempty,min=1"`
	CustomCategory    *string            `json:"customCategory"`
	RentAmount        *float64           `json:"rentAmount" validate:"omitempty,gte=0"`
	AdditionalCharges *AdditionalCharges `json:"additionalCharges"`
	PackageRates      []PackageRate      `json:"packageRates" validate:"omitempty,dive"`
	Facilities        []string           `json:"facilities"`
	Capacity          *Capacity          `json:"capacity"`
	Status            *RoomStatus        `json:"status" validate:"omitempty,oneof=Available Occupied Maintenance Reserved Blocked"`
}

// Apply merges the supplied fields into r.
func (u *UpdateRoomRequest) Apply(r *Room) {
	if u.RoomName != nil {
		r.RoomName = *u.RoomName
	}
	if u.HospitalBranch != nil {
		r.HospitalBranch = *u.HospitalBranch
	}
	if u.FloorName != nil {
		r.FloorName = *u.FloorName
	}
	if u.RoomNumber != nil {
		r.RoomNumber = *u.RoomNumber
	}
	if u.WingBuilding != nil {
		r.WingBuilding = *u.WingBuilding
	}
	if u.RoomCategory != nil {
		r.RoomCategory = *u.RoomCategory
	}
	if u.CustomCategory != nil {
		r.CustomCategory = *u.CustomCategory
	}
	if u.RentAmount != nil {
		r.RentAmount = *u.RentAmount
	}
	if u.AdditionalCharges != nil {
		r.AdditionalCharges = *u.AdditionalCharges
	}
	if u.PackageRates != nil {
		r.PackageRates = u.PackageRates
	}
	if u.Facilities != nil {
		r.Facilities = u.Facilities
	}
	if u.Capacity != nil {
		r.Capacity = *u.Capacity
	}
	if u.Status != nil {
		r.Status = *u.Status
	}
}

// DeleteImageRequest removes one image from a room. RoomID is the internal id.
type DeleteImageRequest struct {
	RoomID   string `json:"roomId"`
	ImageURL string `json:"imageUrl"`
}

// ListRoomsQuery holds the list filters and paging input. Limit is nil when
// the parameter is absent, which selects the default page size.
type ListRoomsQuery struct {
	Page   int    `form:"page"`
	Limit  *int   `form:"limit"`
	Search string `form:"search"`
	Status string `form:"status"`
	Branch string `form:"branch"`
}

// RoomFilter is the predicate for listing active rooms.
type RoomFilter struct {
	Search string
	Status string
	Branch string
}

// RoomPage is one page of rooms plus the total matching count.
type RoomPage struct {
	Rooms []Room `json:"rooms"`
	Total int64  `json:"total"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Pages int    `json:"pages"`
}

// StatsOverview aggregates every active room.
type StatsOverview struct {
	TotalRooms       int64   `json:"totalRooms"`
	AvailableRooms   int64   `json:"availableRooms"`
	OccupiedRooms    int64   `json:"occupiedRooms"`
	MaintenanceRooms int64   `json:"maintenanceRooms"`
	ReservedRooms    int64   `json:"reservedRooms"`
	BlockedRooms     int64   `json:"blockedRooms"`
	AverageRent      float64 `json:"averageRent"`
	TotalBeds        int64   `json:"totalBeds"`
	AvailableBeds    int64   `json:"availableBeds"`
}

// BranchStatusCount is the number of active rooms for one branch and status.
type BranchStatusCount struct {
	Branch string     `json:"branch"`
	Status RoomStatus `json:"status"`
	Count  int64      `json:"count"`
}

// RoomStats is the statistics response.
type RoomStats struct {
	Overview       StatsOverview       `json:"overview"`
	StatusByBranch []BranchStatusCount `json:"statusByBranch"`
}
