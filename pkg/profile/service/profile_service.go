package service

import (
	"context"

	"mlimi/entities"
)

type Stats struct {
	Farmers             int64 `json:"farmers"`
	Consultants         int64 `json:"consultants"`
	PendingApprovals    int64 `json:"pending_approvals"`
	ApprovedConsultants int64 `json:"approved_consultants"`
}

// ProfilePatch lets a user edit their own contact details.
type ProfilePatch struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

type ProfileService interface {
	Get(ctx context.Context, id string) (*entities.Profile, error)
	List(ctx context.Context) ([]entities.Profile, error)
	SetApproval(ctx context.Context, id string, approved bool) (*entities.Profile, error)
	Stats(ctx context.Context) (Stats, error)
	UpdateOwn(ctx context.Context, id string, patch ProfilePatch) (*entities.Profile, error)
}
