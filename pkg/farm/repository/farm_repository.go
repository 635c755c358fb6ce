package repository

import (
	"context"

	"mlimi/entities"
)

type FarmRepository interface {
	Create(ctx context.Context, f *entities.Farm) error
	Save(ctx context.Context, f *entities.Farm) error
	// FindOwned matches on both id and owner.
	FindOwned(ctx context.Context, id, farmerID string) (*entities.Farm, error)
	ListByOwner(ctx context.Context, farmerID string) ([]entities.Farm, error)
}
