package repository

import (
	"context"

	"mlimi/entities"
)

type RoleCounts struct {
	Farmers             int64
	Consultants         int64
	PendingConsultants  int64
	ApprovedConsultants int64
}

type ProfileRepository interface {
	FindByID(ctx context.Context, id string) (*entities.Profile, error)
	List(ctx context.Context) ([]entities.Profile, error)
	SetApproved(ctx context.Context, id string, approved bool) error
	Save(ctx context.Context, p *entities.Profile) error
	Counts(ctx context.Context) (RoleCounts, error)
}
