package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"eventops-backend/services"
	"eventops-backend/utils"
)

type AllotmentController struct {
	allotments *services.AllotmentService
}

func NewAllotmentController(allotments *services.AllotmentService) *AllotmentController {
	return &AllotmentController{allotments: allotments}
}

type createAllotmentRequest struct {
	HotelID    uint        `json:"hotelId" binding:"required"`
	RoomID     uint        `json:"roomId" binding:"required"`
	OccupantID string      `json:"occupantId" binding:"required"`
	CheckIn    string      `json:"checkIn" binding:"required"`
	CheckOut   string      `json:"checkOut"`
	Occupancy  interface{} `json:"occupancy"`
}

// POST /api/allotments
func (ac *AllotmentController) CreateAllotment(c *gin.Context) {
	var req createAllotmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	checkIn, err := utils.ParseDate(req.CheckIn)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid checkIn: "+err.Error())
		return
	}
	var checkOut time.Time
	if req.CheckOut != "" {
		checkOut, err = utils.ParseDate(req.CheckOut)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid checkOut: "+err.Error())
			return
		}
	}

	allotment, err := ac.allotments.Create(services.CreateAllotmentInput{
		HotelID:    req.HotelID,
		RoomID:     req.RoomID,
		OccupantID: req.OccupantID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Occupancy:  utils.NormalizeOccupancy(req.Occupancy),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, allotment)
}

// GET /api/allotments?hotelId=&roomId=&occupantId=&status=
func (ac *AllotmentController) GetAllotments(c *gin.Context) {
	filter := services.AllotmentFilter{
		OccupantID: c.Query("occupantId"),
		Status:     c.Query("status"),
	}
	if raw := c.Query("hotelId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid hotelId")
			return
		}
		filter.HotelID = uint(id)
	}
	if raw := c.Query("roomId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid roomId")
			return
		}
		filter.RoomID = uint(id)
	}

	list, err := ac.allotments.List(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

// GET /api/allotments/:id
func (ac *AllotmentController) GetAllotment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	allotment, err := ac.allotments.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, allotment)
}

type updateAllotmentRequest struct {
	RoomID    *uint       `json:"roomId"`
	CheckIn   *string     `json:"checkIn"`
	CheckOut  *string     `json:"checkOut"`
	Occupancy interface{} `json:"occupancy"`
}

// PATCH /api/allotments/:id — room/date/occupancy edits, re-validated
// against the other overlapping allotments.
func (ac *AllotmentController) UpdateAllotment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req updateAllotmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	patch := services.UpdateAllotmentInput{RoomID: req.RoomID}
	if req.CheckIn != nil {
		t, err := utils.ParseDate(*req.CheckIn)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid checkIn: "+err.Error())
			return
		}
		patch.CheckIn = &t
	}
	if req.CheckOut != nil {
		t, err := utils.ParseDate(*req.CheckOut)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid checkOut: "+err.Error())
			return
		}
		patch.CheckOut = &t
	}
	if req.Occupancy != nil {
		occ := utils.NormalizeOccupancy(req.Occupancy)
		patch.Occupancy = &occ
	}

	allotment, err := ac.allotments.Update(id, patch)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, allotment)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PATCH /api/allotments/:id/status
func (ac *AllotmentController) UpdateAllotmentStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "status is required")
		return
	}

	allotment, err := ac.allotments.UpdateStatus(id, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, allotment)
}
