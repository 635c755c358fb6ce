package serviceImp

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"mlimi/entities"
	"mlimi/pkg/apperr"
	repo "mlimi/pkg/profile/repository"
	"mlimi/pkg/profile/service"
)

// Invalidator is told whenever a profile changes so cached sessions reload.
type Invalidator interface {
	InvalidateProfile(accountID string)
}

type profileSvc struct {
	r   repo.ProfileRepository
	inv Invalidator
	log *zap.Logger
}

func NewProfileService(r repo.ProfileRepository, inv Invalidator, log *zap.Logger) service.ProfileService {
	if log == nil {
		log = zap.NewNop()
	}
	return &profileSvc{r: r, inv: inv, log: log}
}

func (s *profileSvc) Get(ctx context.Context, id string) (*entities.Profile, error) {
	return s.r.FindByID(ctx, id)
}

func (s *profileSvc) List(ctx context.Context) ([]entities.Profile, error) {
	return s.r.List(ctx)
}

func (s *profileSvc) SetApproval(ctx context.Context, id string, approved bool) (*entities.Profile, error) {
	if err := s.r.SetApproved(ctx, id, approved); err != nil {
		s.log.Error("Failed changing approval", zap.String("profileId", id), zap.Error(err))
		return nil, err
	}
	s.changed(id)
	return s.r.FindByID(ctx, id)
}

func (s *profileSvc) Stats(ctx context.Context) (service.Stats, error) {
	c, err := s.r.Counts(ctx)
	if err != nil {
		return service.Stats{}, err
	}
	return service.Stats{
		Farmers:             c.Farmers,
		Consultants:         c.Consultants,
		PendingApprovals:    c.PendingConsultants,
		ApprovedConsultants: c.ApprovedConsultants,
	}, nil
}

func (s *profileSvc) UpdateOwn(ctx context.Context, id string, p service.ProfilePatch) (*entities.Profile, error) {
	cur, err := s.r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return nil, apperr.Validation("Name is required")
		}
		cur.Name = name
	}
	if p.Phone != nil {
		phone := strings.TrimSpace(*p.Phone)
		if phone == "" {
			cur.Phone = nil
		} else {
			cur.Phone = &phone
		}
	}
	if err := s.r.Save(ctx, cur); err != nil {
		return nil, err
	}
	s.changed(id)
	return cur, nil
}

func (s *profileSvc) changed(id string) {
	if s.inv != nil {
		s.inv.InvalidateProfile(id)
	}
}
