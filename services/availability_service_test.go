package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventops-backend/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestLoadForRoom_HalfOpenOverlap(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, 2, 1)
	svc, availability, _ := newTestStack(t, db, nil)

	_, err := svc.Create(CreateAllotmentInput{
		HotelID: f.hotel.ID, RoomID: f.rooms[0].ID, OccupantID: "V-1",
		CheckIn: date(2026, 1, 10), CheckOut: date(2026, 1, 12), Occupancy: 1,
	})
	require.NoError(t, err)

	cases := []struct {
		name     string
		in, out  time.Time
		expected int
	}{
		{"same interval", date(2026, 1, 10), date(2026, 1, 12), 1},
		{"adjacent after, same-day turnover", date(2026, 1, 12), date(2026, 1, 14), 0},
		{"adjacent before", date(2026, 1, 8), date(2026, 1, 10), 0},
		{"partial overlap tail", date(2026, 1, 11), date(2026, 1, 13), 1},
		{"containing", date(2026, 1, 9), date(2026, 1, 13), 1},
		{"disjoint", date(2026, 2, 1), date(2026, 2, 3), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			load, err := availability.LoadForRoom(db, f.rooms[0].ID, tc.in, tc.out, 0)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, load)
		})
	}
}

func TestLoadForRoom_IgnoresInactiveStatuses(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, 4, 1)
	svc, availability, _ := newTestStack(t, db, nil)

	a, err := svc.Create(CreateAllotmentInput{
		HotelID: f.hotel.ID, RoomID: f.rooms[0].ID, OccupantID: "V-1",
		CheckIn: date(2026, 1, 10), CheckOut: date(2026, 1, 12), Occupancy: 2,
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(a.ID, models.AllotmentCancelled)
	require.NoError(t, err)

	load, err := availability.LoadForRoom(db, f.rooms[0].ID, date(2026, 1, 10), date(2026, 1, 12), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, load)
}

func TestFindAvailableRooms_PartialOccupancy(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, 2, 2)
	svc, availability, _ := newTestStack(t, db, nil)

	_, err := svc.Create(CreateAllotmentInput{
		HotelID: f.hotel.ID, RoomID: f.rooms[0].ID, OccupantID: "V-1",
		CheckIn: date(2026, 1, 10), CheckOut: date(2026, 1, 12), Occupancy: 1,
	})
	require.NoError(t, err)

	rooms, err := availability.FindAvailableRooms(f.hotel.ID, date(2026, 1, 10), date(2026, 1, 12), 1)
	require.NoError(t, err)
	require.Len(t, rooms, 2)

	byID := map[uint]RoomAvailability{}
	for _, r := range rooms {
		byID[r.RoomID] = r
	}
	assert.Equal(t, 1, byID[f.rooms[0].ID].CurrentOccupancy)
	assert.Equal(t, 1, byID[f.rooms[0].ID].AvailableSlots)
	assert.Equal(t, 0, byID[f.rooms[1].ID].CurrentOccupancy)
	assert.Equal(t, 2, byID[f.rooms[1].ID].AvailableSlots)

	// party of two no longer fits the partially occupied room
	rooms, err = availability.FindAvailableRooms(f.hotel.ID, date(2026, 1, 10), date(2026, 1, 12), 2)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, f.rooms[1].ID, rooms[0].RoomID)
}

func TestFindAvailableRooms_SkipsMaintenance(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, 2, 2)
	_, availability, _ := newTestStack(t, db, nil)

	require.NoError(t, db.Model(&models.Room{}).Where("id = ?", f.rooms[0].ID).
		Update("status", models.RoomStatusMaintenance).Error)

	rooms, err := availability.FindAvailableRooms(f.hotel.ID, date(2026, 1, 10), date(2026, 1, 12), 1)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, f.rooms[1].ID, rooms[0].RoomID)
}

func TestFindAvailableRooms_UnknownHotel(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db, 2, 1)
	_, availability, _ := newTestStack(t, db, nil)

	_, err := availability.FindAvailableRooms(9999, date(2026, 1, 10), date(2026, 1, 12), 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestComputeInventoryStatus(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, 1, 3)
	svc, availability, _ := newTestStack(t, db, nil)

	require.NoError(t, db.Model(&models.Room{}).Where("id = ?", f.rooms[2].ID).
		Update("status", models.RoomStatusMaintenance).Error)

	_, err := svc.Create(CreateAllotmentInput{
		HotelID: f.hotel.ID, RoomID: f.rooms[0].ID, OccupantID: "V-1",
		CheckIn: date(2026, 1, 10), CheckOut: date(2026, 1, 12), Occupancy: 1,
	})
	require.NoError(t, err)

	status, err := availability.ComputeInventoryStatus(date(2026, 1, 10))
	require.NoError(t, err)
	require.Len(t, status, 1)
	assert.Equal(t, 3, status[0].TotalRooms)
	assert.Equal(t, 1, status[0].OccupiedRooms)
	assert.Equal(t, 1, status[0].MaintenanceRooms)
	assert.Equal(t, 1, status[0].AvailableRooms)
}
