package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"eventops-backend/config"
	"eventops-backend/controllers"
	"eventops-backend/routes"
	"eventops-backend/services"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println(".env not found or couldn't load it; continuing with environment variables")
	}

	logger := config.NewLogger()
	defer logger.Sync()

	if err := config.ConnectDatabase(); err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}
	db := config.DB
	logger.Info("database connection established, migrations applied")

	// External collaborators: occupant directory + event association over
	// HTTP, notifications over Kafka. Both optional; the engine runs without
	// them, it just skips the fan-outs.
	var directory *services.DirectoryClient
	var events services.EventResolver
	var occupants services.OccupantResolver
	if baseURL := strings.TrimSpace(os.Getenv("DIRECTORY_BASE_URL")); baseURL != "" {
		directory = services.NewDirectoryClient(baseURL, logger)
		events = directory
		occupants = directory
		logger.Info("occupant directory configured", zap.String("base_url", baseURL))
	} else {
		logger.Warn("DIRECTORY_BASE_URL not set; booking report sync disabled")
	}

	var notifier services.Notifier
	if brokers := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); brokers != "" {
		topic := os.Getenv("KAFKA_NOTIFY_TOPIC")
		if topic == "" {
			topic = "allotment-notifications"
		}
		kn := services.NewKafkaNotifier(strings.Split(brokers, ","), topic, logger)
		defer kn.Close()
		notifier = kn
		logger.Info("kafka notifier configured", zap.String("topic", topic))
	} else {
		logger.Warn("KAFKA_BROKERS not set; notifications disabled")
	}

	// Services
	availabilityService := services.NewAvailabilityService(db)
	bookingSyncService := services.NewBookingSyncService(db, logger)
	catalogService := services.NewCatalogService(db, availabilityService, logger)
	allotmentService := services.NewAllotmentService(db, availabilityService, bookingSyncService, events, occupants, notifier, logger)
	reportService := services.NewReportService(db, availabilityService)

	// Controllers
	hotelController := controllers.NewHotelController(catalogService)
	roomController := controllers.NewRoomController(catalogService, availabilityService)
	allotmentController := controllers.NewAllotmentController(allotmentService)
	reportController := controllers.NewReportController(reportService)
	adminController := controllers.NewAdminController(bookingSyncService, catalogService, events)

	router := routes.SetupRouter(hotelController, roomController, allotmentController, reportController, adminController, logger)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := ":" + port

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown signal received, draining")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
