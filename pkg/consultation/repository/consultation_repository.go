package repository

import (
	"context"
	"time"

	"mlimi/entities"
)

// Scope restricts a listing to one farmer, one consultant, or nothing.
type Scope struct {
	FarmerID     string
	ConsultantID string
}

type Filter struct {
	Status entities.ConsultationStatus // empty means any
	Query  string                      // issue text or farmer name, case-insensitive
	Limit  int
}

type StatusCounts struct {
	Total   int64 `json:"total"`
	Pending int64 `json:"pending"`
	Active  int64 `json:"active"`
	Closed  int64 `json:"closed"`
}

type ConsultationRepository interface {
	Create(ctx context.Context, c *entities.Consultation) error
	// FindByID loads the row with its farmer profile and farm.
	FindByID(ctx context.Context, id string) (*entities.Consultation, error)
	List(ctx context.Context, scope Scope, f Filter) ([]entities.Consultation, error)
	// RecentlyUpdated orders by updated_at instead of created_at.
	RecentlyUpdated(ctx context.Context, scope Scope, limit int) ([]entities.Consultation, error)
	Unassigned(ctx context.Context) ([]entities.Consultation, error)
	Counts(ctx context.Context, scope Scope) (StatusCounts, error)
	// UpdateStatus writes u in one statement, only for rows whose current
	// status is in from (any status when from is empty). It returns the
	// number of rows written.
	UpdateStatus(ctx context.Context, id string, from []entities.ConsultationStatus, u StatusUpdate) (int64, error)
}

type StatusUpdate struct {
	Status         entities.ConsultationStatus
	Recommendation *string // left untouched when nil
	UpdatedAt      time.Time
	// AssignConsultant fills consultant_id when it is still empty.
	AssignConsultant string
}
