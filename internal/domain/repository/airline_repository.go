package repository

import (
	"context"

	"einvoice-tracker/internal/domain/entity"
)

// AirlineRepository defines the interface for the known-issuer catalog
type AirlineRepository interface {
	GetByCode(ctx context.Context, code string) (*entity.Airline, error)
	GetAll(ctx context.Context) ([]*entity.Airline, error)
}
