package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eventops-backend/models"
	"eventops-backend/services"
	"eventops-backend/utils"
)

type HotelController struct {
	catalog *services.CatalogService
}

func NewHotelController(catalog *services.CatalogService) *HotelController {
	return &HotelController{catalog: catalog}
}

// GET /api/hotels?active=true
func (hc *HotelController) GetHotels(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	hotels, err := hc.catalog.ListHotels(activeOnly)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, hotels)
}

// GET /api/hotels/:id/categories
func (hc *HotelController) GetCategoriesWithRooms(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if _, err := hc.catalog.GetHotel(id); err != nil {
		respondServiceError(c, err)
		return
	}
	categories, err := hc.catalog.GetCategoriesWithRooms(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, categories)
}

// POST /api/hotels
func (hc *HotelController) CreateHotel(c *gin.Context) {
	var hotel models.Hotel
	if err := c.ShouldBindJSON(&hotel); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	if hotel.Name == "" || hotel.ShortCode == "" {
		utils.JSONError(c, http.StatusBadRequest, "name and shortCode are required")
		return
	}
	if err := hc.catalog.CreateHotel(&hotel); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, hotel)
}

// PATCH /api/hotels/:id
func (hc *HotelController) UpdateHotel(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var patch map[string]interface{}
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := hc.catalog.UpdateHotel(id, patch); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"updated": true})
}

// DELETE /api/hotels/:id — cascades; active allotments are force-cancelled
// with an audit trail.
func (hc *HotelController) DeleteHotel(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := hc.catalog.DeleteHotel(id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"deleted": true})
}
