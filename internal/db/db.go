// Package db provides database connection and management functionality
package db

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"resellcorner/internal/models"
)

// Setup initializes the PostgreSQL connection and runs migrations. It reads
// configuration from environment variables using viper, performs
// auto-migrations and ensures a settings row exists. Returns a configured
// *gorm.DB instance or exits on fatal errors.
func Setup() *gorm.DB {
	host := viper.GetString("DB_HOST")
	user := viper.GetString("DB_USER")
	password := viper.GetString("DB_PASSWORD")
	dbname := viper.GetString("DB_NAME")
	port := viper.GetString("DB_PORT")

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		host, user, password, dbname, port)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	if err := db.AutoMigrate(
		&models.Product{},
		&models.Supplier{},
		&models.Favorite{},
		&models.Alert{},
		&models.PriceLog{},
		&models.SearchHistory{},
		&models.Settings{},
	); err != nil {
		logrus.WithError(err).Fatal("Failed to migrate database schema")
	}

	// API credentials live in a single settings row, created empty on first
	// start and filled in through the settings endpoints.
	var count int64
	db.Model(&models.Settings{}).Count(&count)
	if count == 0 {
		db.Create(&models.Settings{GoogleSearchMode: "custom_search"})
		logrus.Info("Created default settings row")
	}

	logrus.Info("Database initialized successfully")
	return db
}
