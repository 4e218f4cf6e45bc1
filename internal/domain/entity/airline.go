package entity

import (
	"time"

	"gorm.io/gorm"
)

// Airline represents a known invoice issuer. Marker is the literal brand
// string the extraction engine looks for in document text to attribute an
// invoice to this airline.
type Airline struct {
	ID        uint
	Code      string
	Name      string
	Marker    string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt
}
