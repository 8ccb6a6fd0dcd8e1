package database

import (
	"log"

	"uat-portal-api/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDB initializes the database connection and runs migrations
func InitDB(path string) {
	var err error

	// Using glebarez/sqlite which is a pure Go implementation (no CGO required)
	DB, err = gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.TaskStep{},
		&models.Comment{},
		&models.CommentRead{},
		&models.Activity{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database: ", err)
	}

	log.Println("Database connected and migrated")
}

// GetDB returns the database connection
func GetDB() *gorm.DB {
	return DB
}

// SeedAdmin creates the initial admin account when no users exist yet.
func SeedAdmin(username, password string) {
	var count int64
	if err := DB.Model(&models.User{}).Count(&count).Error; err != nil {
		log.Fatal("Failed to count users: ", err)
	}
	if count > 0 {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash admin password: ", err)
	}
	admin := models.User{
		ID:       uuid.NewString(),
		Username: username,
		Password: string(hash),
		Role:     models.RoleAdmin,
	}
	if err := DB.Create(&admin).Error; err != nil {
		log.Fatal("Failed to seed admin user: ", err)
	}
	log.Printf("Seeded initial admin user %q", username)
}
