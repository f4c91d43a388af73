package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"eventops-backend/models"
	"eventops-backend/utils"
)

// AllotmentService owns the allotment ledger: create, edit, and the status
// state machine. Capacity validation and the insert/update run inside one
// transaction holding the room row lock, so two concurrent requests for the
// last free slot serialize instead of both passing the check.
type AllotmentService struct {
	DB           *gorm.DB
	availability *AvailabilityService
	sync         *BookingSyncService
	events       EventResolver
	occupants    OccupantResolver
	notifier     Notifier
	logger       *zap.Logger
}

func NewAllotmentService(
	db *gorm.DB,
	availability *AvailabilityService,
	sync *BookingSyncService,
	events EventResolver,
	occupants OccupantResolver,
	notifier Notifier,
	logger *zap.Logger,
) *AllotmentService {
	return &AllotmentService{
		DB:           db,
		availability: availability,
		sync:         sync,
		events:       events,
		occupants:    occupants,
		notifier:     notifier,
		logger:       logger,
	}
}

// maxStayNights bounds the allotment interval. The booking ledger fans out
// one counter row per night, so an unbounded check-out date would let a
// single request write years of rows.
const maxStayNights = 366

func stayTooLong(checkIn, checkOut time.Time) bool {
	return checkOut.Sub(checkIn) > maxStayNights*24*time.Hour
}

// lockForUpdate takes a SELECT ... FOR UPDATE row lock on MySQL. SQLite (used
// in tests) has no FOR UPDATE syntax and serializes writers natively.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "mysql" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

type CreateAllotmentInput struct {
	HotelID    uint
	RoomID     uint
	OccupantID string
	CheckIn    time.Time
	CheckOut   time.Time
	Occupancy  int
}

type UpdateAllotmentInput struct {
	RoomID    *uint
	CheckIn   *time.Time
	CheckOut  *time.Time
	Occupancy *int
}

// Create validates capacity and persists a booked allotment. The check and
// the insert share one transaction and the room row lock; never trust an
// earlier availability read.
func (s *AllotmentService) Create(input CreateAllotmentInput) (*models.RoomAllotment, error) {
	checkIn, checkOut := utils.NormalizeInterval(input.CheckIn, input.CheckOut)
	if stayTooLong(checkIn, checkOut) {
		return nil, ErrStayTooLong
	}
	occupancy := input.Occupancy
	if occupancy < 1 {
		occupancy = 1
	}

	var allotment models.RoomAllotment
	var room models.Room

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&room, input.RoomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load room: %w", err)
		}
		if room.HotelID != input.HotelID {
			return ErrHotelMismatch
		}
		if room.Status == models.RoomStatusMaintenance {
			return ErrRoomUnderMaintenance
		}

		var category models.RoomCategory
		if err := tx.First(&category, room.CategoryID).Error; err != nil {
			return fmt.Errorf("failed to load category: %w", err)
		}
		capacity := category.EffectiveCapacity()

		load, err := s.availability.LoadForRoom(tx, room.ID, checkIn, checkOut, 0)
		if err != nil {
			return err
		}
		if load+occupancy > capacity {
			return &CapacityExceededError{Current: load, Max: capacity, Requested: occupancy}
		}

		allotment = models.RoomAllotment{
			ReferenceCode: uuid.NewString(),
			HotelID:       room.HotelID,
			RoomID:        room.ID,
			OccupantID:    input.OccupantID,
			Occupancy:     occupancy,
			CheckInDate:   checkIn,
			CheckOutDate:  checkOut,
			Status:        models.AllotmentBooked,
		}
		if err := tx.Create(&allotment).Error; err != nil {
			return fmt.Errorf("failed to create allotment: %w", err)
		}

		return s.availability.ProjectRoomStatus(tx, &room, capacity, checkIn, checkOut)
	})
	if err != nil {
		return nil, err
	}

	// Fan-out and notification are best-effort: a failure degrades reporting
	// freshness or delivery, never the persisted allotment.
	if eventID := s.resolveEvent(allotment.OccupantID); eventID != "" {
		s.applySync(eventID, allotment.HotelID, room.CategoryID, checkIn, checkOut, occupancy, +1)
	}
	s.dispatchNotification(NotifyAllotmentCreated, &allotment)

	return &allotment, nil
}

// UpdateStatus applies one state-machine transition:
// booked -> {checked-in, cancelled}, checked-in -> {checked-out, cancelled};
// checked-out and cancelled are terminal.
func (s *AllotmentService) UpdateStatus(id uint, newStatus string) (*models.RoomAllotment, error) {
	var allotment models.RoomAllotment
	var room models.Room

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&allotment, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load allotment: %w", err)
		}
		if !models.CanTransition(allotment.Status, newStatus) {
			return &InvalidTransitionError{From: allotment.Status, To: newStatus}
		}

		if err := lockForUpdate(tx).First(&room, allotment.RoomID).Error; err != nil {
			return fmt.Errorf("failed to load room: %w", err)
		}
		var category models.RoomCategory
		if err := tx.First(&category, room.CategoryID).Error; err != nil {
			return fmt.Errorf("failed to load category: %w", err)
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{"status": newStatus}
		switch newStatus {
		case models.AllotmentCheckedIn:
			updates["checked_in_at"] = now
			allotment.CheckedInAt = &now
		case models.AllotmentCheckedOut:
			updates["checked_out_at"] = now
			allotment.CheckedOutAt = &now
		}
		if err := tx.Model(&allotment).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update allotment status: %w", err)
		}
		allotment.Status = newStatus

		// The load query reads the new status, so terminal allotments drop
		// out of the sum and the cache reflects the freed capacity.
		return s.availability.ProjectRoomStatus(tx, &room, category.EffectiveCapacity(),
			allotment.CheckInDate, allotment.CheckOutDate)
	})
	if err != nil {
		return nil, err
	}

	if newStatus == models.AllotmentCancelled {
		if eventID := s.resolveEvent(allotment.OccupantID); eventID != "" {
			s.applySync(eventID, allotment.HotelID, room.CategoryID,
				allotment.CheckInDate, allotment.CheckOutDate, allotment.Occupancy, -1)
		}
	}
	s.dispatchNotification(NotifyAllotmentStatus, &allotment)

	return &allotment, nil
}

// Update edits room/dates/occupancy on an existing allotment. Capacity is
// re-validated against the other overlapping allotments (excluding itself);
// a room change releases load on the old room and applies it on the new one
// inside the same transaction.
func (s *AllotmentService) Update(id uint, patch UpdateAllotmentInput) (*models.RoomAllotment, error) {
	var allotment models.RoomAllotment

	// captured for the symmetric ledger fan-out after commit
	var oldHotelID, oldCategoryID uint
	var oldCheckIn, oldCheckOut time.Time
	var oldOccupancy int
	var newRoom models.Room

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&allotment, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load allotment: %w", err)
		}
		if !allotment.IsActive() {
			return ErrAllotmentNotEditable
		}

		oldHotelID = allotment.HotelID
		oldCheckIn = allotment.CheckInDate
		oldCheckOut = allotment.CheckOutDate
		oldOccupancy = allotment.Occupancy
		oldRoomID := allotment.RoomID

		newRoomID := oldRoomID
		if patch.RoomID != nil && *patch.RoomID != 0 {
			newRoomID = *patch.RoomID
		}

		checkIn := allotment.CheckInDate
		checkOut := allotment.CheckOutDate
		if patch.CheckIn != nil {
			checkIn = *patch.CheckIn
		}
		if patch.CheckOut != nil {
			checkOut = *patch.CheckOut
		}
		checkIn, checkOut = utils.NormalizeInterval(checkIn, checkOut)
		if stayTooLong(checkIn, checkOut) {
			return ErrStayTooLong
		}

		occupancy := allotment.Occupancy
		if patch.Occupancy != nil {
			occupancy = *patch.Occupancy
			if occupancy < 1 {
				occupancy = 1
			}
		}

		// Lock touched rooms in ascending id order so two concurrent moves
		// between the same pair of rooms cannot deadlock.
		lockIDs := []uint{newRoomID}
		if newRoomID != oldRoomID {
			lockIDs = append(lockIDs, oldRoomID)
			sort.Slice(lockIDs, func(i, j int) bool { return lockIDs[i] < lockIDs[j] })
		}
		rooms := make(map[uint]*models.Room, len(lockIDs))
		for _, roomID := range lockIDs {
			var r models.Room
			if err := lockForUpdate(tx).First(&r, roomID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return fmt.Errorf("failed to load room: %w", err)
			}
			rooms[roomID] = &r
		}
		newRoom = *rooms[newRoomID]
		if newRoomID != oldRoomID && newRoom.Status == models.RoomStatusMaintenance {
			return ErrRoomUnderMaintenance
		}

		oldCategoryID = rooms[oldRoomID].CategoryID

		var newCategory models.RoomCategory
		if err := tx.First(&newCategory, newRoom.CategoryID).Error; err != nil {
			return fmt.Errorf("failed to load category: %w", err)
		}
		capacity := newCategory.EffectiveCapacity()

		load, err := s.availability.LoadForRoom(tx, newRoomID, checkIn, checkOut, allotment.ID)
		if err != nil {
			return err
		}
		if load+occupancy > capacity {
			return &CapacityExceededError{Current: load, Max: capacity, Requested: occupancy}
		}

		updates := map[string]interface{}{
			"room_id":        newRoomID,
			"hotel_id":       newRoom.HotelID,
			"check_in_date":  checkIn,
			"check_out_date": checkOut,
			"occupancy":      occupancy,
		}
		if err := tx.Model(&allotment).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update allotment: %w", err)
		}
		allotment.RoomID = newRoomID
		allotment.HotelID = newRoom.HotelID
		allotment.CheckInDate = checkIn
		allotment.CheckOutDate = checkOut
		allotment.Occupancy = occupancy

		if err := s.availability.ProjectRoomStatus(tx, rooms[newRoomID], capacity, checkIn, checkOut); err != nil {
			return err
		}
		if newRoomID != oldRoomID {
			var releasedCategory models.RoomCategory
			if err := tx.First(&releasedCategory, rooms[oldRoomID].CategoryID).Error; err != nil {
				return fmt.Errorf("failed to load category: %w", err)
			}
			if err := s.availability.ProjectRoomStatus(tx, rooms[oldRoomID],
				releasedCategory.EffectiveCapacity(), oldCheckIn, oldCheckOut); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// (-1 old range, +1 new range) so day counters move with the edit.
	if eventID := s.resolveEvent(allotment.OccupantID); eventID != "" {
		s.applySync(eventID, oldHotelID, oldCategoryID, oldCheckIn, oldCheckOut, oldOccupancy, -1)
		s.applySync(eventID, allotment.HotelID, newRoom.CategoryID,
			allotment.CheckInDate, allotment.CheckOutDate, allotment.Occupancy, +1)
	}
	s.dispatchNotification(NotifyAllotmentUpdated, &allotment)

	return &allotment, nil
}

func (s *AllotmentService) Get(id uint) (*models.RoomAllotment, error) {
	var allotment models.RoomAllotment
	if err := s.DB.Preload("Room.Category").First(&allotment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load allotment: %w", err)
	}
	return &allotment, nil
}

type AllotmentFilter struct {
	HotelID    uint
	RoomID     uint
	OccupantID string
	Status     string
}

func (s *AllotmentService) List(filter AllotmentFilter) ([]models.RoomAllotment, error) {
	q := s.DB.Preload("Room.Category").Order("check_in_date DESC, id DESC")
	if filter.HotelID != 0 {
		q = q.Where("hotel_id = ?", filter.HotelID)
	}
	if filter.RoomID != 0 {
		q = q.Where("room_id = ?", filter.RoomID)
	}
	if filter.OccupantID != "" {
		q = q.Where("occupant_id = ?", filter.OccupantID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var list []models.RoomAllotment
	if err := q.Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list allotments: %w", err)
	}
	return list, nil
}

func (s *AllotmentService) resolveEvent(occupantID string) string {
	if s.events == nil || s.sync == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	eventID, err := s.events.ResolveEventID(ctx, occupantID)
	if err != nil {
		s.logger.Debug("event resolution failed, skipping booking sync",
			zap.String("occupant_id", occupantID), zap.Error(err))
		return ""
	}
	return eventID
}

func (s *AllotmentService) applySync(eventID string, hotelID, categoryID uint, checkIn, checkOut time.Time, occupancy, delta int) {
	if err := s.sync.Apply(eventID, hotelID, categoryID, checkIn, checkOut, occupancy, delta); err != nil {
		s.logger.Warn("booking report sync failed",
			zap.String("event_id", eventID),
			zap.Uint("hotel_id", hotelID),
			zap.Int("delta", delta),
			zap.Error(err),
		)
	}
}

func (s *AllotmentService) dispatchNotification(event string, a *models.RoomAllotment) {
	if s.notifier == nil {
		return
	}

	note := Notification{
		Event:         event,
		ReferenceCode: a.ReferenceCode,
		HotelID:       a.HotelID,
		RoomID:        a.RoomID,
		OccupantID:    a.OccupantID,
		Occupancy:     a.Occupancy,
		CheckInDate:   a.CheckInDate,
		CheckOutDate:  a.CheckOutDate,
		Status:        a.Status,
	}
	if s.occupants != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if info, err := s.occupants.Resolve(ctx, a.OccupantID); err == nil {
			note.OccupantName = info.Name
			note.OccupantPhone = info.Contact
		}
	}
	var hotel models.Hotel
	if err := s.DB.First(&hotel, a.HotelID).Error; err == nil {
		note.HotelContact = hotel.Email
	}

	s.notifier.Dispatch(note)
}
