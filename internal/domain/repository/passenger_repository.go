package repository

import (
	"context"
	"errors"

	"einvoice-tracker/internal/domain/entity"
)

// ErrPassengerNotFound is returned by GetByID for an unknown id. It is a
// lookup miss, distinct from a store-level failure.
var ErrPassengerNotFound = errors.New("passenger not found")

// PassengerRepository defines the interface for the passenger entity store
type PassengerRepository interface {
	GetAll(ctx context.Context) ([]*entity.Passenger, error)
	GetByID(ctx context.Context, id string) (*entity.Passenger, error)
	Save(ctx context.Context, passenger *entity.Passenger) error
}
