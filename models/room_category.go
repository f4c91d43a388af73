package models

import (
	"gorm.io/gorm"
)

type RoomCategory struct {
	gorm.Model

	HotelID uint   `json:"hotelId" gorm:"column:hotel_id;index;uniqueIndex:idx_category_hotel_name"`
	Name    string `json:"name" gorm:"type:varchar(100);uniqueIndex:idx_category_hotel_name"`

	// Maximum simultaneous occupants per room in this category.
	Capacity int `json:"capacity" gorm:"default:1"`

	// Cached count of rooms referencing this category, maintained by the
	// catalog service on room create/delete.
	RoomCount int `json:"roomCount" gorm:"column:room_count;default:0"`

	Rooms []Room `gorm:"foreignKey:CategoryID" json:"rooms,omitempty"`
}

// EffectiveCapacity returns the capacity with the defensive default applied:
// an unset or non-positive capacity counts as 1.
func (c *RoomCategory) EffectiveCapacity() int {
	if c.Capacity <= 0 {
		return 1
	}
	return c.Capacity
}
