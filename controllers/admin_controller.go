package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eventops-backend/services"
	"eventops-backend/utils"
)

// AdminController exposes the reconciliation/repair jobs: the authoritative
// recovery path when derived data (booking counters, room status cache)
// drifts from the allotment ledger.
type AdminController struct {
	sync    *services.BookingSyncService
	catalog *services.CatalogService
	events  services.EventResolver
}

func NewAdminController(sync *services.BookingSyncService, catalog *services.CatalogService, events services.EventResolver) *AdminController {
	return &AdminController{sync: sync, catalog: catalog, events: events}
}

// POST /api/admin/reconcile/bookings
func (ac *AdminController) ReconcileBookings(c *gin.Context) {
	if ac.events == nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "event resolver not configured")
		return
	}
	drift, err := ac.sync.Rebuild(c.Request.Context(), ac.events)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"driftedKeys": drift})
}

// POST /api/admin/reconcile/room-status
func (ac *AdminController) ReconcileRoomStatuses(c *gin.Context) {
	repaired, err := ac.catalog.ReconcileRoomStatuses()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"repairedRooms": repaired})
}
