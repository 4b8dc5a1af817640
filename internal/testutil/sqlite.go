// Package testutil holds helpers shared by package tests.
package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/weiawesome/ward-rooms/internal/domain"
	"github.com/weiawesome/ward-rooms/pkg/database"
)

// NewSQLiteDB opens a migrated in-memory database private to the test.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.New(&database.Config{
		Driver:   "sqlite",
		FilePath: "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		LogLevel: "silent",
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps the shared in-memory database alive and
	// serialises concurrent test queries.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db, &domain.RoomModel{}))
	return db
}

// NewRoom returns a valid active room with the given number and branch.
func NewRoom(number, branch string) *domain.Room {
	rent := 1500.0
	return domain.NewRoom(&domain.CreateRoomRequest{
		RoomName:       "Room " + number,
		HospitalBranch: branch,
		FloorName:      "Ground Floor",
		RoomNumber:     number,
		WingBuilding:   "Block 1 - South Wing",
		RoomCategory:   "General Ward",
		RentAmount:     &rent,
		Capacity:       &domain.Capacity{TotalBeds: 2, AvailableBeds: 1, PatientCapacity: 2},
	}, nil)
}
