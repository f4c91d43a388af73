package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"eventops-backend/models"
)

// CatalogService manages the static inventory: hotels, categories and the
// room roster, including the cached per-category room count.
type CatalogService struct {
	DB           *gorm.DB
	availability *AvailabilityService
	logger       *zap.Logger
}

func NewCatalogService(db *gorm.DB, availability *AvailabilityService, logger *zap.Logger) *CatalogService {
	return &CatalogService{DB: db, availability: availability, logger: logger}
}

func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	// MySQL 1062 and SQLite respectively. Nothing broader: NOT NULL or FK
	// violations must not read as duplicates.
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// ---- Hotels ----

func (s *CatalogService) ListHotels(activeOnly bool) ([]models.Hotel, error) {
	q := s.DB.Order("id")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var hotels []models.Hotel
	if err := q.Find(&hotels).Error; err != nil {
		return nil, fmt.Errorf("failed to list hotels: %w", err)
	}
	return hotels, nil
}

func (s *CatalogService) GetHotel(id uint) (*models.Hotel, error) {
	var hotel models.Hotel
	if err := s.DB.First(&hotel, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load hotel: %w", err)
	}
	return &hotel, nil
}

func (s *CatalogService) CreateHotel(hotel *models.Hotel) error {
	hotel.ShortCode = strings.ToUpper(strings.TrimSpace(hotel.ShortCode))
	hotel.Name = strings.TrimSpace(hotel.Name)
	if err := s.DB.Create(hotel).Error; err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("hotel short code %q already exists: %w", hotel.ShortCode, err)
		}
		return fmt.Errorf("failed to create hotel: %w", err)
	}
	return nil
}

func (s *CatalogService) UpdateHotel(id uint, patch map[string]interface{}) error {
	delete(patch, "id")
	delete(patch, "created_at")
	delete(patch, "updated_at")
	delete(patch, "deleted_at")

	res := s.DB.Model(&models.Hotel{}).Where("id = ?", id).Updates(patch)
	if res.Error != nil {
		return fmt.Errorf("failed to update hotel: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteHotel cascades: active allotments are force-cancelled with an audit
// trail, the booking ledger rows for the hotel are dropped, then categories
// and rooms go with the hotel.
func (s *CatalogService) DeleteHotel(id uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var hotel models.Hotel
		if err := tx.First(&hotel, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load hotel: %w", err)
		}

		var active []models.RoomAllotment
		if err := tx.Where("hotel_id = ? AND status IN ?", id, models.ActiveAllotmentStatuses).
			Find(&active).Error; err != nil {
			return fmt.Errorf("failed to scan active allotments: %w", err)
		}
		for _, a := range active {
			if err := tx.Model(&models.RoomAllotment{}).Where("id = ?", a.ID).
				Update("status", models.AllotmentCancelled).Error; err != nil {
				return fmt.Errorf("failed to cancel allotment %d: %w", a.ID, err)
			}
			detail, _ := json.Marshal(map[string]interface{}{
				"reason":        "hotel_deleted",
				"hotelId":       id,
				"referenceCode": a.ReferenceCode,
				"occupantId":    a.OccupantID,
				"priorStatus":   a.Status,
			})
			audit := models.AuditLog{
				Action:   "force-cancel",
				Entity:   "room_allotment",
				EntityID: a.ID,
				Detail:   datatypes.JSON(detail),
			}
			if err := tx.Create(&audit).Error; err != nil {
				return fmt.Errorf("failed to write audit log: %w", err)
			}
		}

		if err := tx.Where("hotel_id = ?", id).Delete(&models.RoomBooking{}).Error; err != nil {
			return fmt.Errorf("failed to clear booking ledger: %w", err)
		}
		if err := tx.Where("hotel_id = ?", id).Delete(&models.Room{}).Error; err != nil {
			return fmt.Errorf("failed to delete rooms: %w", err)
		}
		if err := tx.Where("hotel_id = ?", id).Delete(&models.RoomCategory{}).Error; err != nil {
			return fmt.Errorf("failed to delete categories: %w", err)
		}
		if err := tx.Delete(&hotel).Error; err != nil {
			return fmt.Errorf("failed to delete hotel: %w", err)
		}

		if len(active) > 0 {
			s.logger.Info("hotel deleted with force-cancelled allotments",
				zap.Uint("hotel_id", id), zap.Int("cancelled", len(active)))
		}
		return nil
	})
}

// ---- Categories ----

// GetCategoriesWithRooms returns the hotel's categories with their room
// rosters, the contract consumed by availability listings.
func (s *CatalogService) GetCategoriesWithRooms(hotelID uint) ([]models.RoomCategory, error) {
	var categories []models.RoomCategory
	if err := s.DB.Preload("Rooms").
		Where("hotel_id = ?", hotelID).
		Order("name").
		Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	return categories, nil
}

func (s *CatalogService) CreateCategory(category *models.RoomCategory) error {
	category.Name = strings.TrimSpace(category.Name)
	if category.Capacity <= 0 {
		category.Capacity = 1
	}

	var hotel models.Hotel
	if err := s.DB.First(&hotel, category.HotelID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load hotel: %w", err)
	}

	if err := s.DB.Create(category).Error; err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("category %q already exists for hotel %d: %w", category.Name, category.HotelID, err)
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (s *CatalogService) UpdateCategory(id uint, patch map[string]interface{}) error {
	delete(patch, "id")
	delete(patch, "hotel_id")
	delete(patch, "room_count")
	delete(patch, "created_at")
	delete(patch, "updated_at")
	delete(patch, "deleted_at")

	res := s.DB.Model(&models.RoomCategory{}).Where("id = ?", id).Updates(patch)
	if res.Error != nil {
		return fmt.Errorf("failed to update category: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *CatalogService) DeleteCategory(id uint) error {
	var roomCount int64
	if err := s.DB.Model(&models.Room{}).Where("category_id = ?", id).Count(&roomCount).Error; err != nil {
		return fmt.Errorf("failed to count rooms: %w", err)
	}
	if roomCount > 0 {
		return ErrCategoryNotEmpty
	}

	res := s.DB.Delete(&models.RoomCategory{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete category: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ---- Rooms ----

// CreateRoom inserts the room and bumps the category's cached room count in
// the same transaction. Room numbers are unique within (hotel, category).
func (s *CatalogService) CreateRoom(room *models.Room) error {
	room.RoomNumber = strings.TrimSpace(room.RoomNumber)
	if room.Status == "" {
		room.Status = models.RoomStatusAvailable
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		var category models.RoomCategory
		if err := tx.Where("id = ? AND hotel_id = ?", room.CategoryID, room.HotelID).
			First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load category: %w", err)
		}

		if err := tx.Create(room).Error; err != nil {
			if isDuplicateKeyError(err) {
				return ErrDuplicateRoomNumber
			}
			return fmt.Errorf("failed to create room: %w", err)
		}

		if err := tx.Model(&models.RoomCategory{}).Where("id = ?", category.ID).
			Update("room_count", gorm.Expr("room_count + 1")).Error; err != nil {
			return fmt.Errorf("failed to bump room count: %w", err)
		}
		return nil
	})
}

func (s *CatalogService) UpdateRoom(id uint, patch map[string]interface{}) error {
	// category moves are not supported; the room count cache and allotment
	// capacity math both key off the category
	delete(patch, "id")
	delete(patch, "hotel_id")
	delete(patch, "category_id")
	delete(patch, "created_at")
	delete(patch, "updated_at")
	delete(patch, "deleted_at")

	if raw, ok := patch["status"]; ok {
		status, _ := raw.(string)
		switch status {
		case models.RoomStatusAvailable, models.RoomStatusOccupied, models.RoomStatusMaintenance:
		default:
			return fmt.Errorf("invalid room status %q", status)
		}
	}

	res := s.DB.Model(&models.Room{}).Where("id = ?", id).Updates(patch)
	if res.Error != nil {
		if isDuplicateKeyError(res.Error) {
			return ErrDuplicateRoomNumber
		}
		return fmt.Errorf("failed to update room: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRoom is blocked while active allotments reference the room; the
// caller must cancel or move them first.
func (s *CatalogService) DeleteRoom(id uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := tx.First(&room, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load room: %w", err)
		}

		var activeCount int64
		if err := tx.Model(&models.RoomAllotment{}).
			Where("room_id = ? AND status IN ?", id, models.ActiveAllotmentStatuses).
			Count(&activeCount).Error; err != nil {
			return fmt.Errorf("failed to count active allotments: %w", err)
		}
		if activeCount > 0 {
			return ErrRoomHasActiveAllotments
		}

		if err := tx.Delete(&room).Error; err != nil {
			return fmt.Errorf("failed to delete room: %w", err)
		}
		if err := tx.Model(&models.RoomCategory{}).
			Where("id = ? AND room_count > 0", room.CategoryID).
			Update("room_count", gorm.Expr("room_count - 1")).Error; err != nil {
			return fmt.Errorf("failed to drop room count: %w", err)
		}
		return nil
	})
}

func (s *CatalogService) ListRooms(hotelID uint) ([]models.Room, error) {
	q := s.DB.Preload("Category").Order("room_number")
	if hotelID != 0 {
		q = q.Where("hotel_id = ?", hotelID)
	}
	var rooms []models.Room
	if err := q.Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

// ReconcileRoomStatuses recomputes every cached room status from the live
// ledger ("now" point load), healing drift from any missed mutation path.
// Returns the number of rooms whose cache was corrected.
func (s *CatalogService) ReconcileRoomStatuses() (int, error) {
	var rooms []models.Room
	if err := s.DB.Preload("Category").Find(&rooms).Error; err != nil {
		return 0, fmt.Errorf("failed to load rooms: %w", err)
	}

	loads, err := s.availability.roomLoads(s.DB, 0, time.Time{}, time.Time{})
	if err != nil {
		return 0, err
	}

	repaired := 0
	for _, room := range rooms {
		if room.Status == models.RoomStatusMaintenance {
			continue
		}
		want := models.RoomStatusAvailable
		if loads[room.ID] >= room.Category.EffectiveCapacity() {
			want = models.RoomStatusOccupied
		}
		if want == room.Status {
			continue
		}
		if err := s.DB.Model(&models.Room{}).Where("id = ?", room.ID).
			Update("status", want).Error; err != nil {
			return repaired, fmt.Errorf("failed to repair room %d status: %w", room.ID, err)
		}
		repaired++
		s.logger.Warn("room status cache drift repaired",
			zap.Uint("room_id", room.ID),
			zap.String("was", room.Status),
			zap.String("now", want),
		)
	}
	return repaired, nil
}
