package persistence

import (
	"os"
	"path/filepath"

	"einvoice-tracker/internal/interface/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewSQLiteDB opens the embedded catalog database and migrates its schema
func NewSQLiteDB(path string) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&repository.Airlines{}); err != nil {
		return nil, err
	}

	return db, nil
}

// SeedAirlines inserts the known invoice issuers if the catalog is empty
func SeedAirlines(db *gorm.DB) error {
	var count int64
	if err := db.Model(&repository.Airlines{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	seed := []repository.Airlines{
		{Code: "TG", Name: "Thai Airways International", Marker: "THAI AIRWAYS"},
		{Code: "AI", Name: "Air India", Marker: "AIR INDIA"},
		{Code: "6E", Name: "IndiGo", Marker: "INDIGO"},
		{Code: "SG", Name: "SpiceJet", Marker: "SPICEJET"},
		{Code: "UK", Name: "Vistara", Marker: "VISTARA"},
	}
	return db.Create(&seed).Error
}
