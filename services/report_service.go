package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"eventops-backend/models"
	"eventops-backend/utils"
)

// ReportScope selects the data source for a report: event-scoped reports
// read the derived RoomBooking ledger; the general scope re-aggregates the
// live allotment ledger, since RoomBooking rows only exist for occupants
// with an event association.
type ReportScope struct {
	EventID string
}

func (s ReportScope) IsGeneral() bool { return s.EventID == "" }

// ParseReportScope maps the path token: the literal "general" (or empty)
// means the live-ledger scope, anything else is an event id.
func ParseReportScope(raw string) ReportScope {
	if raw == "" || raw == "general" {
		return ReportScope{}
	}
	return ReportScope{EventID: raw}
}

type CategorySummaryRow struct {
	HotelID      uint   `json:"hotelId"`
	HotelName    string `json:"hotelName"`
	CategoryID   uint   `json:"categoryId"`
	CategoryName string `json:"categoryName"`
	TotalRooms   int    `json:"totalRooms"`
	RoomsFull    int    `json:"roomsFull"`
}

type PaxSummaryRow struct {
	HotelID   uint   `json:"hotelId"`
	HotelName string `json:"hotelName"`
	Occupancy int    `json:"occupancy"`
	Rooms     int    `json:"rooms"`
}

type HotelSummaryRow struct {
	HotelID    uint   `json:"hotelId"`
	HotelName  string `json:"hotelName"`
	TotalRooms int    `json:"totalRooms"`
	FullRooms  int    `json:"fullRooms"`
	InHand     int    `json:"inHand"`
}

// DateSummary pivots per-category usage into a date-indexed table.
type DateSummary struct {
	Days       []string                  `json:"days"`
	Categories []string                  `json:"categories"`
	Cells      map[string]map[string]int `json:"cells"`
}

// ReportService composes read-only rollups over the catalog plus either the
// RoomBooking ledger (event scope) or the live allotment ledger (general).
type ReportService struct {
	DB           *gorm.DB
	availability *AvailabilityService
}

func NewReportService(db *gorm.DB, availability *AvailabilityService) *ReportService {
	return &ReportService{DB: db, availability: availability}
}

func reportDay(date time.Time) (time.Time, time.Time) {
	if date.IsZero() {
		date = time.Now().UTC()
	}
	day := utils.DateOnly(date)
	return day, day.AddDate(0, 0, 1)
}

func (s *ReportService) hotelNames() (map[uint]string, error) {
	var hotels []models.Hotel
	if err := s.DB.Find(&hotels).Error; err != nil {
		return nil, fmt.Errorf("failed to load hotels: %w", err)
	}
	names := make(map[uint]string, len(hotels))
	for _, h := range hotels {
		names[h.ID] = h.Name
	}
	return names, nil
}

// CategorySummary reports, per hotel and category, the room total and how
// many rooms are full on the given day.
func (s *ReportService) CategorySummary(scope ReportScope, date time.Time) ([]CategorySummaryRow, error) {
	day, next := reportDay(date)

	names, err := s.hotelNames()
	if err != nil {
		return nil, err
	}

	var categories []models.RoomCategory
	if err := s.DB.Order("hotel_id, name").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	full := make(map[uint]int, len(categories))
	if scope.IsGeneral() {
		fullByCategory, err := s.generalFullRooms(day, next)
		if err != nil {
			return nil, err
		}
		full = fullByCategory
	} else {
		var rows []struct {
			CategoryID uint
			Total      int
		}
		if err := s.DB.Model(&models.RoomBooking{}).
			Select("category_id, COALESCE(SUM(rooms_booked), 0) AS total").
			Where("event_id = ? AND day = ?", scope.EventID, day).
			Group("category_id").
			Scan(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to aggregate booking ledger: %w", err)
		}
		for _, r := range rows {
			full[r.CategoryID] = r.Total
		}
	}

	result := make([]CategorySummaryRow, 0, len(categories))
	for _, cat := range categories {
		result = append(result, CategorySummaryRow{
			HotelID:      cat.HotelID,
			HotelName:    names[cat.HotelID],
			CategoryID:   cat.ID,
			CategoryName: cat.Name,
			TotalRooms:   cat.RoomCount,
			RoomsFull:    full[cat.ID],
		})
	}
	return result, nil
}

// generalFullRooms counts, per category, rooms whose summed live occupancy
// reaches category capacity on the day.
func (s *ReportService) generalFullRooms(day, next time.Time) (map[uint]int, error) {
	var rooms []models.Room
	if err := s.DB.Preload("Category").Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("failed to load rooms: %w", err)
	}
	loads, err := s.availability.roomLoads(s.DB, 0, day, next)
	if err != nil {
		return nil, err
	}

	full := make(map[uint]int)
	for _, room := range rooms {
		if loads[room.ID] >= room.Category.EffectiveCapacity() {
			full[room.CategoryID]++
		}
	}
	return full, nil
}

// PaxSummary reports, per hotel and occupancy bucket, the count of rooms
// holding a party of that size on the day.
func (s *ReportService) PaxSummary(scope ReportScope, date time.Time) ([]PaxSummaryRow, error) {
	day, next := reportDay(date)

	names, err := s.hotelNames()
	if err != nil {
		return nil, err
	}

	var rows []struct {
		HotelID   uint
		Occupancy int
		Total     int
	}
	if scope.IsGeneral() {
		q := overlapScoped(s.DB.Model(&models.RoomAllotment{}), day, next)
		if err := q.Select("hotel_id, occupancy, COUNT(*) AS total").
			Group("hotel_id, occupancy").
			Order("hotel_id, occupancy").
			Scan(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to aggregate allotments: %w", err)
		}
	} else {
		if err := s.DB.Model(&models.RoomBooking{}).
			Select("hotel_id, occupancy, COALESCE(SUM(rooms_booked), 0) AS total").
			Where("event_id = ? AND day = ?", scope.EventID, day).
			Group("hotel_id, occupancy").
			Order("hotel_id, occupancy").
			Scan(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to aggregate booking ledger: %w", err)
		}
	}

	result := make([]PaxSummaryRow, 0, len(rows))
	for _, r := range rows {
		result = append(result, PaxSummaryRow{
			HotelID:   r.HotelID,
			HotelName: names[r.HotelID],
			Occupancy: r.Occupancy,
			Rooms:     r.Total,
		})
	}
	return result, nil
}

// HotelSummary reports per-hotel totals: all rooms, full rooms, and rooms in
// hand (total minus full).
func (s *ReportService) HotelSummary(scope ReportScope, date time.Time) ([]HotelSummaryRow, error) {
	day, next := reportDay(date)

	var hotels []models.Hotel
	if err := s.DB.Order("id").Find(&hotels).Error; err != nil {
		return nil, fmt.Errorf("failed to load hotels: %w", err)
	}

	totals := make(map[uint]int)
	var countRows []struct {
		HotelID uint
		Total   int
	}
	if err := s.DB.Model(&models.Room{}).
		Select("hotel_id, COUNT(*) AS total").
		Group("hotel_id").
		Scan(&countRows).Error; err != nil {
		return nil, fmt.Errorf("failed to count rooms: %w", err)
	}
	for _, r := range countRows {
		totals[r.HotelID] = r.Total
	}

	full := make(map[uint]int)
	if scope.IsGeneral() {
		var rooms []models.Room
		if err := s.DB.Preload("Category").Find(&rooms).Error; err != nil {
			return nil, fmt.Errorf("failed to load rooms: %w", err)
		}
		loads, err := s.availability.roomLoads(s.DB, 0, day, next)
		if err != nil {
			return nil, err
		}
		for _, room := range rooms {
			if loads[room.ID] >= room.Category.EffectiveCapacity() {
				full[room.HotelID]++
			}
		}
	} else {
		var rows []struct {
			HotelID uint
			Total   int
		}
		if err := s.DB.Model(&models.RoomBooking{}).
			Select("hotel_id, COALESCE(SUM(rooms_booked), 0) AS total").
			Where("event_id = ? AND day = ?", scope.EventID, day).
			Group("hotel_id").
			Scan(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to aggregate booking ledger: %w", err)
		}
		for _, r := range rows {
			full[r.HotelID] = r.Total
		}
	}

	result := make([]HotelSummaryRow, 0, len(hotels))
	for _, h := range hotels {
		row := HotelSummaryRow{
			HotelID:    h.ID,
			HotelName:  h.Name,
			TotalRooms: totals[h.ID],
			FullRooms:  full[h.ID],
		}
		row.InHand = row.TotalRooms - row.FullRooms
		if row.InHand < 0 {
			row.InHand = 0
		}
		result = append(result, row)
	}
	return result, nil
}

// DateSummary pivots per-category usage counts over [from, to) into a
// date-indexed table.
func (s *ReportService) DateSummary(scope ReportScope, from, to time.Time) (*DateSummary, error) {
	if from.IsZero() {
		from = time.Now().UTC()
	}
	from = utils.DateOnly(from)
	// truncate before comparing, so a same-day "to" with a clock component
	// falls back to the default window instead of an empty range
	to = utils.DateOnly(to)
	if !to.After(from) {
		to = from.AddDate(0, 0, 7)
	}

	var categories []models.RoomCategory
	if err := s.DB.Order("hotel_id, name").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	categoryNames := make(map[uint]string, len(categories))
	nameSet := make([]string, 0, len(categories))
	seenNames := make(map[string]bool)
	for _, cat := range categories {
		categoryNames[cat.ID] = cat.Name
		if !seenNames[cat.Name] {
			seenNames[cat.Name] = true
			nameSet = append(nameSet, cat.Name)
		}
	}

	summary := &DateSummary{
		Categories: nameSet,
		Cells:      make(map[string]map[string]int),
	}
	for _, day := range utils.DaysIn(from, to) {
		key := day.Format("2006-01-02")
		summary.Days = append(summary.Days, key)
		summary.Cells[key] = make(map[string]int)
	}

	if scope.IsGeneral() {
		var allotments []models.RoomAllotment
		q := overlapScoped(s.DB.Preload("Room"), from, to)
		if err := q.Find(&allotments).Error; err != nil {
			return nil, fmt.Errorf("failed to scan allotments: %w", err)
		}
		for _, a := range allotments {
			name := categoryNames[a.Room.CategoryID]
			for _, day := range utils.DaysIn(a.CheckInDate, a.CheckOutDate) {
				if day.Before(from) || !day.Before(to) {
					continue
				}
				summary.Cells[day.Format("2006-01-02")][name]++
			}
		}
	} else {
		var rows []models.RoomBooking
		if err := s.DB.Where("event_id = ? AND day >= ? AND day < ?", scope.EventID, from, to).
			Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to scan booking ledger: %w", err)
		}
		for _, row := range rows {
			name := categoryNames[row.CategoryID]
			key := utils.DateOnly(row.Day).Format("2006-01-02")
			if cell, ok := summary.Cells[key]; ok {
				cell[name] += row.RoomsBooked
			}
		}
	}

	return summary, nil
}
