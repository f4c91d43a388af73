package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"eventops-backend/controllers"
	"eventops-backend/middleware"
)

func parseCorsOrigins() []string {
	raw := strings.TrimSpace(os.Getenv("CORS_ORIGINS"))
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func SetupRouter(
	hc *controllers.HotelController,
	rc *controllers.RoomController,
	ac *controllers.AllotmentController,
	repc *controllers.ReportController,
	admc *controllers.AdminController,
	logger *zap.Logger,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger))

	origins := parseCorsOrigins()
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		hotels := api.Group("/hotels")
		{
			hotels.GET("", hc.GetHotels)
			hotels.POST("", hc.CreateHotel)
			hotels.PATCH("/:id", hc.UpdateHotel)
			hotels.DELETE("/:id", hc.DeleteHotel)

			hotels.GET("/:id/categories", hc.GetCategoriesWithRooms)
			hotels.POST("/:id/categories", rc.CreateCategory)
			hotels.POST("/:id/rooms", rc.CreateRoom)
			hotels.GET("/:id/available-rooms", rc.GetAvailableRooms)
		}

		categories := api.Group("/categories")
		{
			categories.PATCH("/:id", rc.UpdateCategory)
			categories.DELETE("/:id", rc.DeleteCategory)
		}

		rooms := api.Group("/rooms")
		{
			rooms.GET("", rc.GetRooms)
			rooms.PATCH("/:id", rc.UpdateRoom)
			rooms.PUT("/:id", rc.UpdateRoom)
			rooms.DELETE("/:id", rc.DeleteRoom)
		}

		allotments := api.Group("/allotments")
		{
			allotments.GET("", ac.GetAllotments)
			allotments.POST("", ac.CreateAllotment)
			allotments.GET("/:id", ac.GetAllotment)
			allotments.PATCH("/:id", ac.UpdateAllotment)
			allotments.PATCH("/:id/status", ac.UpdateAllotmentStatus)
		}

		api.GET("/inventory-status", rc.GetInventoryStatus)

		// scope is an event id or the literal "general"
		reports := api.Group("/reports/:scope")
		{
			reports.GET("/categories", repc.CategorySummary)
			reports.GET("/pax", repc.PaxSummary)
			reports.GET("/hotels", repc.HotelSummary)
			reports.GET("/dates", repc.DateSummary)
		}

		admin := api.Group("/admin")
		{
			admin.POST("/reconcile/bookings", admc.ReconcileBookings)
			admin.POST("/reconcile/room-status", admc.ReconcileRoomStatuses)
		}
	}

	return r
}
