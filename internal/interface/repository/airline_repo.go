package repository

import (
	"context"
	"time"

	"einvoice-tracker/internal/domain/entity"
	"einvoice-tracker/internal/domain/repository"

	"gorm.io/gorm"
)

// GormAirlineRepository implements the AirlineRepository interface
type GormAirlineRepository struct {
	db *gorm.DB
}

// NewGormAirlineRepository creates a new GORM airline repository
func NewGormAirlineRepository(db *gorm.DB) repository.AirlineRepository {
	return &GormAirlineRepository{
		db: db,
	}
}

// Airlines GORM model for database mapping
type Airlines struct {
	ID        uint           `gorm:"primaryKey"`
	Code      string         `gorm:"column:code;unique"`
	Name      string         `gorm:"column:name;unique"`
	Marker    string         `gorm:"column:marker"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the default table name
func (Airlines) TableName() string {
	return "m_airlines"
}

func toEntity(a Airlines) *entity.Airline {
	return &entity.Airline{
		ID:        a.ID,
		Code:      a.Code,
		Name:      a.Name,
		Marker:    a.Marker,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
		DeletedAt: a.DeletedAt,
	}
}

// GetByCode finds an airline by code
func (r *GormAirlineRepository) GetByCode(ctx context.Context, code string) (*entity.Airline, error) {
	var airline Airlines
	result := r.db.WithContext(ctx).Where("code = ?", code).First(&airline)

	if result.Error != nil {
		return nil, result.Error
	}

	return toEntity(airline), nil
}

// GetAll lists the full issuer catalog
func (r *GormAirlineRepository) GetAll(ctx context.Context) ([]*entity.Airline, error) {
	var airlines []Airlines
	result := r.db.WithContext(ctx).Order("id").Find(&airlines)
	if result.Error != nil {
		return nil, result.Error
	}

	out := make([]*entity.Airline, 0, len(airlines))
	for _, a := range airlines {
		out = append(out, toEntity(a))
	}
	return out, nil
}
