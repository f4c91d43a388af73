package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"eventops-backend/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// named in-memory database so the pool shares one store per test
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.Hotel{},
		&models.RoomCategory{},
		&models.Room{},
		&models.RoomAllotment{},
		&models.RoomBooking{},
		&models.AuditLog{},
	))
	return db
}

type fixture struct {
	hotel    models.Hotel
	category models.RoomCategory
	rooms    []models.Room
}

// seedCatalog creates one hotel with a single category (given capacity) and
// n rooms.
func seedCatalog(t *testing.T, db *gorm.DB, capacity, roomCount int) fixture {
	t.Helper()

	f := fixture{
		hotel: models.Hotel{ShortCode: "TST", Name: "Test Hotel", Email: "desk@test.local", Active: true},
	}
	require.NoError(t, db.Create(&f.hotel).Error)

	f.category = models.RoomCategory{HotelID: f.hotel.ID, Name: "Standard", Capacity: capacity, RoomCount: roomCount}
	require.NoError(t, db.Create(&f.category).Error)

	for i := 0; i < roomCount; i++ {
		room := models.Room{
			HotelID:    f.hotel.ID,
			CategoryID: f.category.ID,
			RoomNumber: fmt.Sprintf("10%d", i+1),
			Status:     models.RoomStatusAvailable,
		}
		require.NoError(t, db.Create(&room).Error)
		f.rooms = append(f.rooms, room)
	}
	return f
}

// stubEventResolver maps occupant ids to event ids.
type stubEventResolver struct {
	events map[string]string
}

func (s *stubEventResolver) ResolveEventID(_ context.Context, occupantID string) (string, error) {
	return s.events[occupantID], nil
}

// stubNotifier records dispatched notifications.
type stubNotifier struct {
	dispatched []Notification
}

func (s *stubNotifier) Dispatch(n Notification) { s.dispatched = append(s.dispatched, n) }
func (s *stubNotifier) Close() error            { return nil }

func newTestStack(t *testing.T, db *gorm.DB, events EventResolver) (*AllotmentService, *AvailabilityService, *BookingSyncService) {
	t.Helper()
	logger := zap.NewNop()
	availability := NewAvailabilityService(db)
	sync := NewBookingSyncService(db, logger)
	allotments := NewAllotmentService(db, availability, sync, events, nil, nil, logger)
	return allotments, availability, sync
}
