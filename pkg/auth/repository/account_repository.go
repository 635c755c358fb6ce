package repository

import (
	"context"

	"mlimi/entities"
)

type AccountRepository interface {
	// CreateWithProfile writes both rows in one transaction.
	CreateWithProfile(ctx context.Context, a *entities.Account, p *entities.Profile) error
	FindByEmail(ctx context.Context, email string) (*entities.Account, error)
}
