package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound                = errors.New("not_found")
	ErrDuplicateRoomNumber     = errors.New("duplicate_room_number")
	ErrRoomHasActiveAllotments = errors.New("room_has_active_allotments")
	ErrCategoryNotEmpty        = errors.New("category_not_empty")
	ErrHotelMismatch           = errors.New("room_does_not_belong_to_hotel")
	ErrRoomUnderMaintenance    = errors.New("room_under_maintenance")
	ErrAllotmentNotEditable    = errors.New("allotment_not_editable")
	ErrStayTooLong             = errors.New("stay_too_long")
)

// CapacityExceededError is user-correctable: the requested occupancy would
// overshoot category capacity for the interval. Current/Max are surfaced so
// the caller can retry with a different room or smaller party.
type CapacityExceededError struct {
	Current   int
	Max       int
	Requested int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("capacity exceeded: current %d + requested %d > max %d", e.Current, e.Requested, e.Max)
}

// InvalidTransitionError reports an illegal allotment status transition.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}
