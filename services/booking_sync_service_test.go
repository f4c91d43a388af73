package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventops-backend/models"
)

func bookingRows(t *testing.T, svc *BookingSyncService) []models.RoomBooking {
	t.Helper()
	var rows []models.RoomBooking
	require.NoError(t, svc.DB.Order("day").Find(&rows).Error)
	return rows
}

func TestApply_FansOutPerDayCheckOutExclusive(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, 2, 1)
	_, _, sync := newTestStack(t, db, nil)

	// Jan 10 -> Jan 12 covers the nights of the 10th and 11th only
	err := sync.Apply("EVT-1", f.hotel.ID, f.category.ID,
		date(2026, 1, 10), date(2026, 1, 12), 2, +1)
	require.NoError(t, err)

	rows := bookingRows(t, sync)
	require.Len(t, rows, 2)
	for i, day := range []time.Time{date(2026, 1, 10), date(2026, 1, 11)} {
		assert.True(t, rows[i].Day.Equal(day), "row %d day", i)
		assert.Equal(t, "EVT-1", rows[i].EventID)
		assert.Equal(t, f.category.ID, rows[i].CategoryID)
		assert.Equal(t, 2, rows[i].Occupancy)
		assert.Equal(t, 1, rows[i].RoomsBooked)
	}
}

func TestApply_IncrementAndDecrementAreSymmetric(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, 2, 1)
	_, _, sync := newTestStack(t, db, nil)

	in, out := date(2026, 1, 10), date(2026, 1, 12)
	require.NoError(t, sync.Apply("EVT-1", f.hotel.ID, f.category.ID, in, out, 2, +1))
	require.NoError(t, sync.Apply("EVT-1", f.hotel.ID, f.category.ID, in, out, 2, +1))

	rows := bookingRows(t, sync)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].RoomsBooked)

	require.NoError(t, sync.Apply("EVT-1", f.hotel.ID, f.category.ID, in, out, 2, -1))
	rows = bookingRows(t, sync)
	assert.Equal(t, 1, rows[0].RoomsBooked)
	assert.Equal(t, 1, rows[1].RoomsBooked)
}

func TestApply_OccupancyBucketsAreDistinctKeys(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, 2, 1)
	_, _, sync := newTestStack(t, db, nil)

	in, out := date(2026, 1, 10), date(2026, 1, 11)
	require.NoError(t, sync.Apply("EVT-1", f.hotel.ID, f.category.ID, in, out, 1, +1))
	require.NoError(t, sync.Apply("EVT-1", f.hotel.ID, f.category.ID, in, out, 2, +1))

	rows := bookingRows(t, sync)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, 1, row.RoomsBooked)
	}
}

func TestApply_DecrementNeverUnderflows(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, 2, 1)
	_, _, sync := newTestStack(t, db, nil)

	in, out := date(2026, 1, 10), date(2026, 1, 11)
	require.NoError(t, sync.Apply("EVT-1", f.hotel.ID, f.category.ID, in, out, 2, +1))
	require.NoError(t, sync.Apply("EVT-1", f.hotel.ID, f.category.ID, in, out, 2, -1))
	// second decrement hits a zero counter and is skipped, not an error
	require.NoError(t, sync.Apply("EVT-1", f.hotel.ID, f.category.ID, in, out, 2, -1))

	rows := bookingRows(t, sync)
	require.Len(t, rows, 1)
	assert.Equal(t, 0, rows[0].RoomsBooked)
}

func TestApply_RejectsBadDelta(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, 2, 1)
	_, _, sync := newTestStack(t, db, nil)

	err := sync.Apply("EVT-1", f.hotel.ID, f.category.ID,
		date(2026, 1, 10), date(2026, 1, 11), 2, 3)
	assert.Error(t, err)
}

func TestApply_EmptyEventIsNoOp(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, 2, 1)
	_, _, sync := newTestStack(t, db, nil)

	require.NoError(t, sync.Apply("", f.hotel.ID, f.category.ID,
		date(2026, 1, 10), date(2026, 1, 12), 2, +1))
	assert.Empty(t, bookingRows(t, sync))
}

func TestCreateAndCancel_DriveBookingLedger(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, 2, 1)
	resolver := &stubEventResolver{events: map[string]string{"V-1": "EVT-1"}}
	svc, _, sync := newTestStack(t, db, resolver)

	a, err := svc.Create(CreateAllotmentInput{
		HotelID: f.hotel.ID, RoomID: f.rooms[0].ID, OccupantID: "V-1",
		CheckIn: date(2026, 1, 10), CheckOut: date(2026, 1, 12), Occupancy: 2,
	})
	require.NoError(t, err)

	rows := bookingRows(t, sync)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].RoomsBooked)
	assert.Equal(t, 1, rows[1].RoomsBooked)

	_, err = svc.UpdateStatus(a.ID, models.AllotmentCancelled)
	require.NoError(t, err)

	for _, row := range bookingRows(t, sync) {
		assert.Equal(t, 0, row.RoomsBooked)
	}
}

func TestUpdate_MovesBookingLedgerDays(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, 2, 1)
	resolver := &stubEventResolver{events: map[string]string{"V-1": "EVT-1"}}
	svc, _, sync := newTestStack(t, db, resolver)

	a, err := svc.Create(CreateAllotmentInput{
		HotelID: f.hotel.ID, RoomID: f.rooms[0].ID, OccupantID: "V-1",
		CheckIn: date(2026, 1, 10), CheckOut: date(2026, 1, 12), Occupancy: 2,
	})
	require.NoError(t, err)

	newIn, newOut := date(2026, 1, 11), date(2026, 1, 13)
	_, err = svc.Update(a.ID, UpdateAllotmentInput{CheckIn: &newIn, CheckOut: &newOut})
	require.NoError(t, err)

	counts := map[string]int{}
	for _, row := range bookingRows(t, sync) {
		counts[row.Day.Format("2006-01-02")] = row.RoomsBooked
	}
	assert.Equal(t, 0, counts["2026-01-10"])
	assert.Equal(t, 1, counts["2026-01-11"])
	assert.Equal(t, 1, counts["2026-01-12"])
}

func TestRebuild_KeepsCompletedStays(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, 2, 1)
	resolver := &stubEventResolver{events: map[string]string{"V-1": "EVT-1"}}
	svc, _, sync := newTestStack(t, db, resolver)

	a, err := svc.Create(CreateAllotmentInput{
		HotelID: f.hotel.ID, RoomID: f.rooms[0].ID, OccupantID: "V-1",
		CheckIn: date(2026, 1, 10), CheckOut: date(2026, 1, 12), Occupancy: 2,
	})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(a.ID, models.AllotmentCheckedIn)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(a.ID, models.AllotmentCheckedOut)
	require.NoError(t, err)

	// check-out keeps the stay's counters; the rebuild must agree and leave
	// the history in place
	rows := bookingRows(t, sync)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].RoomsBooked)
	assert.Equal(t, 1, rows[1].RoomsBooked)

	drift, err := sync.Rebuild(context.Background(), resolver)
	require.NoError(t, err)
	assert.Equal(t, 0, drift)

	rows = bookingRows(t, sync)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].RoomsBooked)
	assert.Equal(t, 1, rows[1].RoomsBooked)
}

func TestRebuild_RepairsDrift(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, 2, 1)
	resolver := &stubEventResolver{events: map[string]string{"V-1": "EVT-1"}}
	svc, _, sync := newTestStack(t, db, resolver)

	_, err := svc.Create(CreateAllotmentInput{
		HotelID: f.hotel.ID, RoomID: f.rooms[0].ID, OccupantID: "V-1",
		CheckIn: date(2026, 1, 10), CheckOut: date(2026, 1, 12), Occupancy: 2,
	})
	require.NoError(t, err)

	// corrupt a counter and rebuild from the allotment ledger
	require.NoError(t, db.Model(&models.RoomBooking{}).
		Where("day = ?", date(2026, 1, 10)).
		Update("rooms_booked", 7).Error)

	drift, err := sync.Rebuild(context.Background(), resolver)
	require.NoError(t, err)
	assert.Equal(t, 1, drift)

	rows := bookingRows(t, sync)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].RoomsBooked)
	assert.Equal(t, 1, rows[1].RoomsBooked)

	// a second pass finds nothing to repair
	drift, err = sync.Rebuild(context.Background(), resolver)
	require.NoError(t, err)
	assert.Equal(t, 0, drift)
}

func TestRebuild_DropsStaleRows(t *testing.T) {
	db := newTestDB(t)
	f := seedCatalog(t, db, 2, 1)
	resolver := &stubEventResolver{events: map[string]string{}}
	_, _, sync := newTestStack(t, db, resolver)

	// a leftover row with no backing allotment
	require.NoError(t, db.Create(&models.RoomBooking{
		EventID: "EVT-GONE", HotelID: f.hotel.ID, CategoryID: f.category.ID,
		Day: date(2026, 1, 10), Occupancy: 2, RoomsBooked: 3,
	}).Error)

	drift, err := sync.Rebuild(context.Background(), resolver)
	require.NoError(t, err)
	assert.Equal(t, 1, drift)
	assert.Empty(t, bookingRows(t, sync))
}
