package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"eventops-backend/models"
	"eventops-backend/utils"
)

// BookingSyncService maintains the derived RoomBooking ledger: one counter
// row per (event, hotel, category, day, occupancy bucket). It is called
// symmetrically (+1 on create, -1 on cancel, -1/+1 around edits) and can be
// rebuilt from the allotment ledger whenever counters drift.
type BookingSyncService struct {
	DB     *gorm.DB
	logger *zap.Logger
}

func NewBookingSyncService(db *gorm.DB, logger *zap.Logger) *BookingSyncService {
	return &BookingSyncService{DB: db, logger: logger}
}

var bookingKeyColumns = []clause.Column{
	{Name: "event_id"},
	{Name: "hotel_id"},
	{Name: "category_id"},
	{Name: "day"},
	{Name: "occupancy"},
}

// Apply fans one allotment change out into per-day counter rows over
// [checkIn, checkOut), check-out exclusive. delta must be +1 or -1.
func (s *BookingSyncService) Apply(eventID string, hotelID, categoryID uint, checkIn, checkOut time.Time, occupancy, delta int) error {
	if eventID == "" {
		return nil
	}
	if delta != 1 && delta != -1 {
		return fmt.Errorf("booking sync delta must be +1 or -1, got %d", delta)
	}

	for _, day := range utils.DaysIn(checkIn, checkOut) {
		if delta > 0 {
			row := models.RoomBooking{
				EventID:     eventID,
				HotelID:     hotelID,
				CategoryID:  categoryID,
				Day:         day,
				Occupancy:   occupancy,
				RoomsBooked: 1,
			}
			err := s.DB.Clauses(clause.OnConflict{
				Columns:   bookingKeyColumns,
				DoUpdates: clause.Assignments(map[string]interface{}{"rooms_booked": gorm.Expr("rooms_booked + 1")}),
			}).Create(&row).Error
			if err != nil {
				return fmt.Errorf("failed to increment booking counter: %w", err)
			}
			continue
		}

		// Guarded decrement: the counter must never go negative. A miss here
		// means an asymmetric call happened somewhere; log it for the
		// reconciliation job to repair.
		res := s.DB.Model(&models.RoomBooking{}).
			Where("event_id = ? AND hotel_id = ? AND category_id = ? AND day = ? AND occupancy = ? AND rooms_booked > 0",
				eventID, hotelID, categoryID, day, occupancy).
			Update("rooms_booked", gorm.Expr("rooms_booked - 1"))
		if res.Error != nil {
			return fmt.Errorf("failed to decrement booking counter: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			s.logger.Warn("booking counter underflow, skipping decrement",
				zap.String("event_id", eventID),
				zap.Uint("hotel_id", hotelID),
				zap.Uint("category_id", categoryID),
				zap.Time("day", day),
				zap.Int("occupancy", occupancy),
			)
		}
	}
	return nil
}

type bookingKey struct {
	EventID    string
	HotelID    uint
	CategoryID uint
	Day        time.Time
	Occupancy  int
}

// Rebuild re-derives the whole RoomBooking ledger from non-cancelled
// allotments.
// This is the authoritative recovery path when counters drift. Returns the
// number of keys whose counter disagreed with the fresh aggregation.
func (s *BookingSyncService) Rebuild(ctx context.Context, events EventResolver) (int, error) {
	if events == nil {
		return 0, fmt.Errorf("event resolver required for rebuild")
	}

	// Checked-out allotments stay in scope: check-out never decremented
	// their counters, so the ledger keeps completed stays as history and
	// only cancellation erases them.
	var allotments []models.RoomAllotment
	if err := s.DB.Preload("Room").
		Where("status IN ?", models.LedgerAllotmentStatuses).
		Find(&allotments).Error; err != nil {
		return 0, fmt.Errorf("failed to scan allotments: %w", err)
	}

	fresh := make(map[bookingKey]int)
	eventCache := make(map[string]string)
	for _, a := range allotments {
		eventID, ok := eventCache[a.OccupantID]
		if !ok {
			id, err := events.ResolveEventID(ctx, a.OccupantID)
			if err != nil {
				return 0, fmt.Errorf("failed to resolve event for occupant %s: %w", a.OccupantID, err)
			}
			eventID = id
			eventCache[a.OccupantID] = id
		}
		if eventID == "" {
			continue
		}
		for _, day := range utils.DaysIn(a.CheckInDate, a.CheckOutDate) {
			fresh[bookingKey{eventID, a.HotelID, a.Room.CategoryID, day, a.Occupancy}]++
		}
	}

	var existing []models.RoomBooking
	if err := s.DB.Find(&existing).Error; err != nil {
		return 0, fmt.Errorf("failed to load booking ledger: %w", err)
	}

	drift := 0
	seen := make(map[bookingKey]bool, len(existing))
	for _, row := range existing {
		key := bookingKey{row.EventID, row.HotelID, row.CategoryID, utils.DateOnly(row.Day), row.Occupancy}
		seen[key] = true
		if fresh[key] != row.RoomsBooked {
			drift++
			s.logger.Warn("booking ledger drift detected",
				zap.String("event_id", row.EventID),
				zap.Uint("category_id", row.CategoryID),
				zap.Time("day", row.Day),
				zap.Int("stored", row.RoomsBooked),
				zap.Int("derived", fresh[key]),
			)
		}
	}
	for key := range fresh {
		if !seen[key] {
			drift++
		}
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.RoomBooking{}).Error; err != nil {
			return fmt.Errorf("failed to clear booking ledger: %w", err)
		}
		for key, count := range fresh {
			if count == 0 {
				continue
			}
			row := models.RoomBooking{
				EventID:     key.EventID,
				HotelID:     key.HotelID,
				CategoryID:  key.CategoryID,
				Day:         key.Day,
				Occupancy:   key.Occupancy,
				RoomsBooked: count,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to write rebuilt counter: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return drift, err
	}

	if drift > 0 {
		s.logger.Info("booking ledger rebuilt", zap.Int("drifted_keys", drift))
	}
	return drift, nil
}
