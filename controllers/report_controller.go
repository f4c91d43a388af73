package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"eventops-backend/services"
	"eventops-backend/utils"
)

type ReportController struct {
	reports *services.ReportService
}

func NewReportController(reports *services.ReportService) *ReportController {
	return &ReportController{reports: reports}
}

func (rc *ReportController) scopeAndDate(c *gin.Context) (services.ReportScope, time.Time, bool) {
	scope := services.ParseReportScope(c.Param("scope"))
	var date time.Time
	if raw := c.Query("date"); raw != "" {
		t, err := utils.ParseDate(raw)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, err.Error())
			return scope, date, false
		}
		date = t
	}
	return scope, date, true
}

// GET /api/reports/:scope/categories?date=
func (rc *ReportController) CategorySummary(c *gin.Context) {
	scope, date, ok := rc.scopeAndDate(c)
	if !ok {
		return
	}
	rows, err := rc.reports.CategorySummary(scope, date)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rows)
}

// GET /api/reports/:scope/pax?date=
func (rc *ReportController) PaxSummary(c *gin.Context) {
	scope, date, ok := rc.scopeAndDate(c)
	if !ok {
		return
	}
	rows, err := rc.reports.PaxSummary(scope, date)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rows)
}

// GET /api/reports/:scope/hotels?date=
func (rc *ReportController) HotelSummary(c *gin.Context) {
	scope, date, ok := rc.scopeAndDate(c)
	if !ok {
		return
	}
	rows, err := rc.reports.HotelSummary(scope, date)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rows)
}

// GET /api/reports/:scope/dates?from=&to=
func (rc *ReportController) DateSummary(c *gin.Context) {
	scope := services.ParseReportScope(c.Param("scope"))

	var from, to time.Time
	if raw := c.Query("from"); raw != "" {
		t, err := utils.ParseDate(raw)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, err.Error())
			return
		}
		from = t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := utils.ParseDate(raw)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, err.Error())
			return
		}
		to = t
	}

	summary, err := rc.reports.DateSummary(scope, from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, summary)
}
