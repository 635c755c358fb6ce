package service

import (
	"context"
	"time"

	"mlimi/entities"
	"mlimi/pkg/consultation/repository"
)

type CreateInput struct {
	FarmID           string `json:"farm_id"`
	IssueDescription string `json:"issue_description"`
}

type ListFilter struct {
	Status string // pending|active|closed, or "all"/empty
	Query  string
}

type ListResult struct {
	Items []View                  `json:"items"`
	Stats repository.StatusCounts `json:"stats"`
}

// Activity is one line of the farmer's recent activity feed.
type Activity struct {
	ID          string                      `json:"id"`
	Type        string                      `json:"type"`
	Title       string                      `json:"title"`
	Description string                      `json:"description"`
	Status      entities.ConsultationStatus `json:"status"`
	Timestamp   time.Time                   `json:"timestamp"`
}

const (
	ActivityResponse = "consultation_response"
	ActivityPending  = "consultation_pending"
)

type ConsultationService interface {
	Create(ctx context.Context, farmerID string, in CreateInput) (*View, error)
	List(ctx context.Context, viewer *entities.Profile, f ListFilter) (*ListResult, error)
	Get(ctx context.Context, viewer *entities.Profile, id string) (*View, error)
	// Queue lists pending requests no consultant has picked up yet.
	Queue(ctx context.Context, viewer *entities.Profile) ([]View, error)
	MarkActive(ctx context.Context, actor *entities.Profile, id string) (*View, error)
	AddRecommendation(ctx context.Context, actor *entities.Profile, id, text string) (*View, error)
	Recent(ctx context.Context, farmerID string, limit int) ([]View, error)
	Activity(ctx context.Context, farmerID string, limit int) ([]Activity, error)
}
