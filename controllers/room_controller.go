package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"eventops-backend/models"
	"eventops-backend/services"
	"eventops-backend/utils"
)

type RoomController struct {
	catalog      *services.CatalogService
	availability *services.AvailabilityService
}

func NewRoomController(catalog *services.CatalogService, availability *services.AvailabilityService) *RoomController {
	return &RoomController{catalog: catalog, availability: availability}
}

// POST /api/hotels/:id/categories
func (rc *RoomController) CreateCategory(c *gin.Context) {
	hotelID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var category models.RoomCategory
	if err := c.ShouldBindJSON(&category); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	if category.Name == "" {
		utils.JSONError(c, http.StatusBadRequest, "category name is required")
		return
	}
	category.HotelID = hotelID
	if err := rc.catalog.CreateCategory(&category); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, category)
}

// PATCH /api/categories/:id
func (rc *RoomController) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var patch map[string]interface{}
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := rc.catalog.UpdateCategory(id, patch); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"updated": true})
}

// DELETE /api/categories/:id
func (rc *RoomController) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := rc.catalog.DeleteCategory(id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"deleted": true})
}

// GET /api/rooms?hotelId=
func (rc *RoomController) GetRooms(c *gin.Context) {
	var hotelID uint
	if raw := c.Query("hotelId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid hotelId")
			return
		}
		hotelID = uint(id)
	}
	rooms, err := rc.catalog.ListRooms(hotelID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rooms)
}

// POST /api/hotels/:id/rooms
func (rc *RoomController) CreateRoom(c *gin.Context) {
	hotelID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var room models.Room
	if err := c.ShouldBindJSON(&room); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	if room.RoomNumber == "" {
		utils.JSONError(c, http.StatusBadRequest, "roomNumber is required")
		return
	}
	if room.CategoryID == 0 {
		utils.JSONError(c, http.StatusBadRequest, "categoryId is required")
		return
	}
	room.HotelID = hotelID
	if err := rc.catalog.CreateRoom(&room); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, room)
}

// PATCH /api/rooms/:id — room number edits and the maintenance toggle.
func (rc *RoomController) UpdateRoom(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var patch map[string]interface{}
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := rc.catalog.UpdateRoom(id, patch); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"updated": true})
}

// DELETE /api/rooms/:id — blocked while active allotments reference it.
func (rc *RoomController) DeleteRoom(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := rc.catalog.DeleteRoom(id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"deleted": true})
}

// GET /api/hotels/:id/available-rooms?checkIn=&checkOut=&occupancy=
func (rc *RoomController) GetAvailableRooms(c *gin.Context) {
	hotelID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var checkIn, checkOut time.Time
	if raw := c.Query("checkIn"); raw != "" {
		t, err := utils.ParseDate(raw)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, err.Error())
			return
		}
		var outRaw time.Time
		if rawOut := c.Query("checkOut"); rawOut != "" {
			outRaw, err = utils.ParseDate(rawOut)
			if err != nil {
				utils.JSONError(c, http.StatusBadRequest, err.Error())
				return
			}
		}
		checkIn, checkOut = utils.NormalizeInterval(t, outRaw)
	}

	occupancy := utils.NormalizeOccupancy(c.Query("occupancy"))

	rooms, err := rc.availability.FindAvailableRooms(hotelID, checkIn, checkOut, occupancy)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rooms)
}

// GET /api/inventory-status?date=
func (rc *RoomController) GetInventoryStatus(c *gin.Context) {
	var date time.Time
	if raw := c.Query("date"); raw != "" {
		t, err := utils.ParseDate(raw)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, err.Error())
			return
		}
		date = t
	}
	status, err := rc.availability.ComputeInventoryStatus(date)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, status)
}
