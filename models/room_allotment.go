package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	AllotmentBooked     = "booked"
	AllotmentCheckedIn  = "checked-in"
	AllotmentCheckedOut = "checked-out"
	AllotmentCancelled  = "cancelled"
)

// ActiveAllotmentStatuses are the statuses that count toward a room's load.
var ActiveAllotmentStatuses = []string{AllotmentBooked, AllotmentCheckedIn}

// LedgerAllotmentStatuses are the statuses backing the booking ledger:
// cancellation erases an allotment's counters, check-out keeps them as
// history.
var LedgerAllotmentStatuses = []string{AllotmentBooked, AllotmentCheckedIn, AllotmentCheckedOut}

// allotmentTransitions is the allowed status state machine. Checked-out and
// cancelled are terminal.
var allotmentTransitions = map[string][]string{
	AllotmentBooked:    {AllotmentCheckedIn, AllotmentCancelled},
	AllotmentCheckedIn: {AllotmentCheckedOut, AllotmentCancelled},
}

func CanTransition(from, to string) bool {
	for _, next := range allotmentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// RoomAllotment reserves a party of Occupancy people in a room for the
// half-open interval [CheckInDate, CheckOutDate). OccupantID is a loose
// reference into the external occupant directory, never a foreign key.
type RoomAllotment struct {
	gorm.Model

	ReferenceCode string `json:"referenceCode" gorm:"column:reference_code;type:varchar(64);uniqueIndex"`

	HotelID    uint   `json:"hotelId" gorm:"column:hotel_id;index"`
	RoomID     uint   `json:"roomId" gorm:"column:room_id;index"`
	OccupantID string `json:"occupantId" gorm:"column:occupant_id;type:varchar(64);index"`

	Occupancy    int       `json:"occupancy" gorm:"default:1"`
	CheckInDate  time.Time `json:"checkInDate" gorm:"column:check_in_date"`
	CheckOutDate time.Time `json:"checkOutDate" gorm:"column:check_out_date"`

	Status       string     `json:"status" gorm:"type:varchar(32);index"`
	CheckedInAt  *time.Time `json:"checkedInAt,omitempty" gorm:"column:checked_in_at"`
	CheckedOutAt *time.Time `json:"checkedOutAt,omitempty" gorm:"column:checked_out_at"`

	Room Room `gorm:"foreignKey:RoomID;references:ID" json:"room,omitempty"`
}

func (a *RoomAllotment) IsActive() bool {
	return a.Status == AllotmentBooked || a.Status == AllotmentCheckedIn
}

// Overlaps reports whether the allotment intersects [qIn, qOut). Equal
// boundaries do not overlap, so same-day turnover is allowed.
func (a *RoomAllotment) Overlaps(qIn, qOut time.Time) bool {
	return a.CheckInDate.Before(qOut) && a.CheckOutDate.After(qIn)
}
