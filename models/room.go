package models

import (
	"gorm.io/gorm"
)

const (
	RoomStatusAvailable   = "available"
	RoomStatusOccupied    = "occupied"
	RoomStatusMaintenance = "maintenance"
)

// Room.Status is a derived, advisory field. The allotment ledger is the
// source of truth for occupancy; the status cache exists so list endpoints
// don't re-scan allotments.
type Room struct {
	gorm.Model

	HotelID    uint `json:"hotelId" gorm:"column:hotel_id;index;uniqueIndex:idx_room_number"`
	CategoryID uint `json:"categoryId" gorm:"column:category_id;index;uniqueIndex:idx_room_number"`

	RoomNumber string `json:"roomNumber" gorm:"column:room_number;type:varchar(50);uniqueIndex:idx_room_number"`
	Status     string `json:"status" gorm:"type:varchar(32);default:available"`

	Category RoomCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
