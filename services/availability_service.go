package services

import (
	"errors"
	"fmt"
	"time"

	"eventops-backend/models"

	"gorm.io/gorm"
)

// AvailabilityService owns the load computation: the sum of occupancy across
// all active allotments overlapping an interval. It never mutates the
// allotment ledger itself.
type AvailabilityService struct {
	DB *gorm.DB
}

func NewAvailabilityService(db *gorm.DB) *AvailabilityService {
	return &AvailabilityService{DB: db}
}

// RoomAvailability is one row of the available-rooms listing. A partially
// occupied room still appears here with the remaining slots.
type RoomAvailability struct {
	RoomID           uint   `json:"roomId"`
	RoomNumber       string `json:"roomNumber"`
	CategoryID       uint   `json:"categoryId"`
	CategoryName     string `json:"categoryName"`
	Capacity         int    `json:"capacity"`
	CurrentOccupancy int    `json:"currentOccupancy"`
	AvailableSlots   int    `json:"availableSlots"`
}

// InventoryStatus is the per-hotel coarse occupancy rollup.
type InventoryStatus struct {
	HotelID          uint   `json:"hotelId"`
	HotelName        string `json:"hotelName"`
	TotalRooms       int    `json:"totalRooms"`
	OccupiedRooms    int    `json:"occupiedRooms"`
	MaintenanceRooms int    `json:"maintenanceRooms"`
	AvailableRooms   int    `json:"availableRooms"`
}

// overlapScoped filters active allotments to those overlapping [checkIn,
// checkOut). A zero interval means "covering now" (the instant query used by
// the status projector and non-dated listings). Equal boundaries never
// overlap: checkout day == next checkin day is same-day turnover.
func overlapScoped(q *gorm.DB, checkIn, checkOut time.Time) *gorm.DB {
	q = q.Where("status IN ?", models.ActiveAllotmentStatuses)
	if checkIn.IsZero() {
		now := time.Now().UTC()
		return q.Where("check_in_date <= ? AND check_out_date > ?", now, now)
	}
	return q.Where("check_in_date < ? AND check_out_date > ?", checkOut, checkIn)
}

// LoadForRoom computes the occupancy sum for one room over an interval,
// optionally excluding one allotment (used when re-validating edits against
// the *other* overlapping allotments). Runs on the given handle so callers
// can evaluate it inside a locking transaction.
func (s *AvailabilityService) LoadForRoom(tx *gorm.DB, roomID uint, checkIn, checkOut time.Time, excludeID uint) (int, error) {
	q := overlapScoped(tx.Model(&models.RoomAllotment{}).Where("room_id = ?", roomID), checkIn, checkOut)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var total int
	if err := q.Select("COALESCE(SUM(occupancy), 0)").Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to compute room load: %w", err)
	}
	return total, nil
}

// roomLoads returns occupancy sums grouped by room. hotelID 0 means all
// hotels.
func (s *AvailabilityService) roomLoads(tx *gorm.DB, hotelID uint, checkIn, checkOut time.Time) (map[uint]int, error) {
	q := overlapScoped(tx.Model(&models.RoomAllotment{}), checkIn, checkOut)
	if hotelID != 0 {
		q = q.Where("hotel_id = ?", hotelID)
	}

	var rows []struct {
		RoomID uint
		Total  int
	}
	if err := q.Select("room_id, COALESCE(SUM(occupancy), 0) AS total").
		Group("room_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to compute room loads: %w", err)
	}

	loads := make(map[uint]int, len(rows))
	for _, r := range rows {
		loads[r.RoomID] = r.Total
	}
	return loads, nil
}

// FindAvailableRooms lists rooms of a hotel that can take `requested` more
// occupants over the interval. Maintenance rooms are skipped; partially
// occupied rooms are returned with their remaining slots.
func (s *AvailabilityService) FindAvailableRooms(hotelID uint, checkIn, checkOut time.Time, requested int) ([]RoomAvailability, error) {
	var hotel models.Hotel
	if err := s.DB.First(&hotel, hotelID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load hotel: %w", err)
	}

	if requested < 1 {
		requested = 1
	}

	var rooms []models.Room
	if err := s.DB.Preload("Category").
		Where("hotel_id = ? AND status <> ?", hotelID, models.RoomStatusMaintenance).
		Order("room_number").
		Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("failed to load rooms: %w", err)
	}

	loads, err := s.roomLoads(s.DB, hotelID, checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	result := make([]RoomAvailability, 0, len(rooms))
	for _, room := range rooms {
		capacity := room.Category.EffectiveCapacity()
		current := loads[room.ID]
		slots := capacity - current
		if slots < requested {
			continue
		}
		result = append(result, RoomAvailability{
			RoomID:           room.ID,
			RoomNumber:       room.RoomNumber,
			CategoryID:       room.CategoryID,
			CategoryName:     room.Category.Name,
			Capacity:         capacity,
			CurrentOccupancy: current,
			AvailableSlots:   slots,
		})
	}
	return result, nil
}

// ProjectRoomStatus recomputes the room's advisory status cache from the
// ledger over the given interval (the interval of whichever allotment just
// changed). Operator-set maintenance is never overwritten.
func (s *AvailabilityService) ProjectRoomStatus(tx *gorm.DB, room *models.Room, capacity int, checkIn, checkOut time.Time) error {
	if room.Status == models.RoomStatusMaintenance {
		return nil
	}

	load, err := s.LoadForRoom(tx, room.ID, checkIn, checkOut, 0)
	if err != nil {
		return err
	}

	status := models.RoomStatusAvailable
	if load >= capacity {
		status = models.RoomStatusOccupied
	}
	if status == room.Status {
		return nil
	}
	if err := tx.Model(&models.Room{}).Where("id = ?", room.ID).Update("status", status).Error; err != nil {
		return fmt.Errorf("failed to update room status: %w", err)
	}
	room.Status = status
	return nil
}

// ComputeInventoryStatus rolls up per-hotel totals for the given date (zero
// date means today).
func (s *AvailabilityService) ComputeInventoryStatus(date time.Time) ([]InventoryStatus, error) {
	var checkIn, checkOut time.Time
	if !date.IsZero() {
		checkIn = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
		checkOut = checkIn.AddDate(0, 0, 1)
	}

	var hotels []models.Hotel
	if err := s.DB.Order("id").Find(&hotels).Error; err != nil {
		return nil, fmt.Errorf("failed to load hotels: %w", err)
	}

	var rooms []models.Room
	if err := s.DB.Preload("Category").Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("failed to load rooms: %w", err)
	}

	loads, err := s.roomLoads(s.DB, 0, checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	byHotel := make(map[uint]*InventoryStatus, len(hotels))
	result := make([]InventoryStatus, 0, len(hotels))
	for _, h := range hotels {
		result = append(result, InventoryStatus{HotelID: h.ID, HotelName: h.Name})
	}
	for i := range result {
		byHotel[result[i].HotelID] = &result[i]
	}

	for _, room := range rooms {
		st, ok := byHotel[room.HotelID]
		if !ok {
			continue
		}
		st.TotalRooms++
		if room.Status == models.RoomStatusMaintenance {
			st.MaintenanceRooms++
			continue
		}
		if loads[room.ID] >= room.Category.EffectiveCapacity() {
			st.OccupiedRooms++
		}
	}
	for i := range result {
		result[i].AvailableRooms = result[i].TotalRooms - result[i].OccupiedRooms - result[i].MaintenanceRooms
	}
	return result, nil
}
