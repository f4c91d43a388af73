package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"eventops-backend/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func envOrDefault(key, def string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	return value
}

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	if q.Get("loc") == "" {
		q.Set("loc", "Local")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode()), nil
}

func resolveMySQLDSN() (string, error) {
	raw := strings.TrimSpace(os.Getenv("MYSQL_URL"))
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}

	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, nil
	}

	user := envOrDefault("DB_USER", "root")
	pass := envOrDefault("DB_PASS", "")
	host := envOrDefault("DB_HOST", "127.0.0.1")
	port := envOrDefault("DB_PORT", "3306")
	dbName := envOrDefault("DB_NAME", "eventops_db")

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, pass, host, port, dbName,
	)
	return dsn, nil
}

// SeedDatabase seeds a demo hotel with categories and rooms when the catalog
// is empty, so a fresh environment has something to allot against.
func SeedDatabase() {
	var hotelCount int64
	DB.Model(&models.Hotel{}).Count(&hotelCount)
	if hotelCount > 0 {
		return
	}

	hotel := models.Hotel{
		ShortCode: "GRAND",
		Name:      "Grand Plaza",
		Phone:     "+66-2-000-0000",
		Email:     "frontdesk@grandplaza.local",
		Active:    true,
	}
	if err := DB.Create(&hotel).Error; err != nil {
		log.Printf("warning: failed to seed demo hotel: %v", err)
		return
	}

	categories := []models.RoomCategory{
		{HotelID: hotel.ID, Name: "Standard", Capacity: 2},
		{HotelID: hotel.ID, Name: "Superior", Capacity: 3},
		{HotelID: hotel.ID, Name: "Deluxe", Capacity: 4},
	}
	if err := DB.Create(&categories).Error; err != nil {
		log.Printf("warning: failed to seed demo categories: %v", err)
		return
	}

	rooms := make([]models.Room, 0, len(categories)*3)
	for i, cat := range categories {
		for n := 1; n <= 3; n++ {
			rooms = append(rooms, models.Room{
				HotelID:    hotel.ID,
				CategoryID: cat.ID,
				RoomNumber: fmt.Sprintf("%d0%d", i+1, n),
				Status:     models.RoomStatusAvailable,
			})
		}
	}
	if err := DB.Create(&rooms).Error; err != nil {
		log.Printf("warning: failed to seed demo rooms: %v", err)
		return
	}

	for i := range categories {
		DB.Model(&categories[i]).Update("room_count", 3)
	}

	log.Println("Demo catalog seeded")
}

func ConnectDatabase() error {
	dsn, err := resolveMySQLDSN()
	if err != nil {
		return err
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Warn,
			Colorful:      true,
		},
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: newLogger})
	if err != nil {
		return err
	}

	DB = db

	// AutoMigrate in parent->child order
	if err := DB.AutoMigrate(
		&models.Hotel{},
		&models.RoomCategory{},
		&models.Room{},
		&models.RoomAllotment{},
		&models.RoomBooking{},
		&models.AuditLog{},
	); err != nil {
		return err
	}

	SeedDatabase()
	return nil
}
