package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"eventops-backend/services"
	"eventops-backend/utils"
)

// respondServiceError maps the service error taxonomy to typed 4xx
// responses. Capacity and state errors carry the conflicting numbers so the
// caller can pick a different room or date; nothing here is retried
// automatically.
func respondServiceError(c *gin.Context, err error) {
	var capErr *services.CapacityExceededError
	var transErr *services.InvalidTransitionError

	switch {
	case errors.As(err, &capErr):
		utils.JSONErrorDetail(c, http.StatusBadRequest, "capacity_exceeded", gin.H{
			"current":   capErr.Current,
			"max":       capErr.Max,
			"requested": capErr.Requested,
		})
	case errors.As(err, &transErr):
		utils.JSONErrorDetail(c, http.StatusConflict, "invalid_status_transition", gin.H{
			"from": transErr.From,
			"to":   transErr.To,
		})
	case errors.Is(err, services.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "not_found")
	case errors.Is(err, services.ErrDuplicateRoomNumber):
		utils.JSONError(c, http.StatusConflict, "duplicate_room_number")
	case errors.Is(err, services.ErrRoomHasActiveAllotments):
		utils.JSONError(c, http.StatusConflict, "room_has_active_allotments")
	case errors.Is(err, services.ErrCategoryNotEmpty):
		utils.JSONError(c, http.StatusConflict, "category_not_empty")
	case errors.Is(err, services.ErrRoomUnderMaintenance):
		utils.JSONError(c, http.StatusConflict, "room_under_maintenance")
	case errors.Is(err, services.ErrAllotmentNotEditable):
		utils.JSONError(c, http.StatusConflict, "allotment_not_editable")
	case errors.Is(err, services.ErrHotelMismatch):
		utils.JSONError(c, http.StatusBadRequest, "room_does_not_belong_to_hotel")
	case errors.Is(err, services.ErrStayTooLong):
		utils.JSONError(c, http.StatusBadRequest, "stay_too_long")
	default:
		utils.JSONError(c, http.StatusInternalServerError, "internal_error")
	}
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		utils.JSONError(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return uint(id), true
}
