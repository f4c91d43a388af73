package models

import (
	"gorm.io/gorm"
)

type Hotel struct {
	gorm.Model

	ShortCode string `json:"shortCode" gorm:"column:short_code;uniqueIndex;type:varchar(16)"`
	Name      string `json:"name" gorm:"size:255"`
	Phone     string `json:"phone" gorm:"size:50"`
	Email     string `json:"email" gorm:"size:150"`
	Active    bool   `json:"active" gorm:"default:true"`

	Categories []RoomCategory `gorm:"foreignKey:HotelID" json:"categories,omitempty"`
	Rooms      []Room         `gorm:"foreignKey:HotelID" json:"rooms,omitempty"`
}
