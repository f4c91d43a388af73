package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"eventops-backend/models"
)

func newCatalog(t *testing.T, db *gorm.DB) *CatalogService {
	t.Helper()
	return NewCatalogService(db, NewAvailabilityService(db), zap.NewNop())
}

func TestCreateRoom_KeepsRoomCountAndRejectsDuplicates(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, 2, 0)
	catalog := newCatalog(t, db)

	room := models.Room{HotelID: f.hotel.ID, CategoryID: f.category.ID, RoomNumber: "101"}
	require.NoError(t, catalog.CreateRoom(&room))

	var category models.RoomCategory
	require.NoError(t, db.First(&category, f.category.ID).Error)
	assert.Equal(t, 1, category.RoomCount)

	dup := models.Room{HotelID: f.hotel.ID, CategoryID: f.category.ID, RoomNumber: "101"}
	assert.ErrorIs(t, catalog.CreateRoom(&dup), ErrDuplicateRoomNumber)

	// the failed insert must not bump the cache
	require.NoError(t, db.First(&category, f.category.ID).Error)
	assert.Equal(t, 1, category.RoomCount)
}

func TestCreateRoom_CategoryMustBelongToHotel(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, 2, 0)
	catalog := newCatalog(t, db)

	other := models.Hotel{ShortCode: "OTH", Name: "Other Hotel", Active: true}
	require.NoError(t, db.Create(&other).Error)

	// the category lookup is scoped to the hotel, so a cross-hotel pair
	// reads as a missing category
	room := models.Room{HotelID: other.ID, CategoryID: f.category.ID, RoomNumber: "201"}
	assert.ErrorIs(t, catalog.CreateRoom(&room), ErrNotFound)
}

func TestUpdateRoom_StripsProtectedFieldsAndValidatesStatus(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, 2, 1)
	catalog := newCatalog(t, db)

	err := catalog.UpdateRoom(f.rooms[0].ID, map[string]interface{}{
		"status":      models.RoomStatusMaintenance,
		"category_id": 999,
	})
	require.NoError(t, err)

	var room models.Room
	require.NoError(t, db.First(&room, f.rooms[0].ID).Error)
	assert.Equal(t, models.RoomStatusMaintenance, room.Status)
	assert.Equal(t, f.category.ID, room.CategoryID)

	err = catalog.UpdateRoom(f.rooms[0].ID, map[string]interface{}{"status": "sideways"})
	assert.Error(t, err)
}

func TestDeleteRoom_BlockedWhileActiveAllotmentsExist(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, 2, 1)
	catalog := newCatalog(t, db)
	svc, _, _ := newTestStack(t, db, nil)

	a, err := svc.Create(CreateAllotmentInput{
		HotelID: f.hotel.ID, RoomID: f.rooms[0].ID, OccupantID: "V-1",
		CheckIn: date(2026, 1, 10), CheckOut: date(2026, 1, 12), Occupancy: 1,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, catalog.DeleteRoom(f.rooms[0].ID), ErrRoomHasActiveAllotments)

	_, err = svc.UpdateStatus(a.ID, models.AllotmentCancelled)
	require.NoError(t, err)
	require.NoError(t, catalog.DeleteRoom(f.rooms[0].ID))

	var category models.RoomCategory
	require.NoError(t, db.First(&category, f.category.ID).Error)
	assert.Equal(t, 0, category.RoomCount)
}

func TestDeleteCategory_BlockedWhileRoomsExist(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, 2, 1)
	catalog := newCatalog(t, db)

	assert.ErrorIs(t, catalog.DeleteCategory(f.category.ID), ErrCategoryNotEmpty)

	require.NoError(t, catalog.DeleteRoom(f.rooms[0].ID))
	require.NoError(t, catalog.DeleteCategory(f.category.ID))
}

func TestDeleteHotel_ForceCancelsWithAuditTrail(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, 2, 2)
	catalog := newCatalog(t, db)
	svc, _, _ := newTestStack(t, db, nil)

	a, err := svc.Create(CreateAllotmentInput{
		HotelID: f.hotel.ID, RoomID: f.rooms[0].ID, OccupantID: "V-1",
		CheckIn: date(2026, 1, 10), CheckOut: date(2026, 1, 12), Occupancy: 1,
	})
	require.NoError(t, err)

	require.NoError(t, catalog.DeleteHotel(f.hotel.ID))

	var cancelled models.RoomAllotment
	require.NoError(t, db.First(&cancelled, a.ID).Error)
	assert.Equal(t, models.AllotmentCancelled, cancelled.Status)

	var audits []models.AuditLog
	require.NoError(t, db.Where("entity = ? AND entity_id = ?", "room_allotment", a.ID).Find(&audits).Error)
	require.Len(t, audits, 1)
	assert.Equal(t, "force-cancel", audits[0].Action)

	var roomCount int64
	require.NoError(t, db.Model(&models.Room{}).Where("hotel_id = ?", f.hotel.ID).Count(&roomCount).Error)
	assert.Zero(t, roomCount)

	_, err = catalog.GetHotel(f.hotel.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIsDuplicateKeyError(t *testing.T) {
	assert.True(t, isDuplicateKeyError(errors.New("Error 1062 (23000): Duplicate entry 'TST' for key 'idx_hotels_short_code'")))
	assert.True(t, isDuplicateKeyError(errors.New("UNIQUE constraint failed: rooms.room_number")))

	assert.False(t, isDuplicateKeyError(nil))
	assert.False(t, isDuplicateKeyError(errors.New("NOT NULL constraint failed: rooms.room_number")))
	assert.False(t, isDuplicateKeyError(errors.New("FOREIGN KEY constraint failed")))
	assert.False(t, isDuplicateKeyError(errors.New("CHECK constraint failed: occupancy")))
}

func TestCreateHotel_DuplicateShortCode(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db, 2, 0)
	catalog := newCatalog(t, db)

	dup := models.Hotel{ShortCode: "TST", Name: "Second"}
	err := catalog.CreateHotel(&dup)
	assert.Error(t, err)
}

func TestReconcileRoomStatuses_RepairsDriftAndSkipsMaintenance(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, 1, 3)
	catalog := newCatalog(t, db)
	svc, _, _ := newTestStack(t, db, nil)

	// an allotment covering "now" fills room 1
	now := time.Now().UTC()
	_, err := svc.Create(CreateAllotmentInput{
		HotelID: f.hotel.ID, RoomID: f.rooms[0].ID, OccupantID: "V-1",
		CheckIn: now.AddDate(0, 0, -1), CheckOut: now.AddDate(0, 0, 1), Occupancy: 1,
	})
	require.NoError(t, err)

	// corrupt the caches: full room marked available, empty room marked
	// occupied, maintenance room left alone
	require.NoError(t, db.Model(&models.Room{}).Where("id = ?", f.rooms[0].ID).
		Update("status", models.RoomStatusAvailable).Error)
	require.NoError(t, db.Model(&models.Room{}).Where("id = ?", f.rooms[1].ID).
		Update("status", models.RoomStatusOccupied).Error)
	require.NoError(t, db.Model(&models.Room{}).Where("id = ?", f.rooms[2].ID).
		Update("status", models.RoomStatusMaintenance).Error)

	repaired, err := catalog.ReconcileRoomStatuses()
	require.NoError(t, err)
	assert.Equal(t, 2, repaired)

	var rooms []models.Room
	require.NoError(t, db.Order("id").Find(&rooms).Error)
	assert.Equal(t, models.RoomStatusOccupied, rooms[0].Status)
	assert.Equal(t, models.RoomStatusAvailable, rooms[1].Status)
	assert.Equal(t, models.RoomStatusMaintenance, rooms[2].Status)
}
