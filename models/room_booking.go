package models

import "time"

// RoomBooking is the derived per-day booking ledger used by event-scoped
// reporting: one row per (event, hotel, category, day, occupancy bucket)
// holding a counter of booked rooms. It is incrementally maintained and
// never authoritative; the reconciliation job can rebuild it from the
// allotment ledger at any time.
type RoomBooking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	EventID    string    `json:"eventId" gorm:"column:event_id;type:varchar(64);uniqueIndex:idx_booking_key"`
	HotelID    uint      `json:"hotelId" gorm:"column:hotel_id;uniqueIndex:idx_booking_key"`
	CategoryID uint      `json:"categoryId" gorm:"column:category_id;uniqueIndex:idx_booking_key"`
	Day        time.Time `json:"day" gorm:"column:day;uniqueIndex:idx_booking_key"`
	Occupancy  int       `json:"occupancy" gorm:"uniqueIndex:idx_booking_key"`

	RoomsBooked int `json:"roomsBooked" gorm:"column:rooms_booked;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
