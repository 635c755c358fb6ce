package serviceImp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"mlimi/entities"
	"mlimi/pkg/apperr"
	repo "mlimi/pkg/consultation/repository"
	"mlimi/pkg/consultation/service"
	"mlimi/pkg/metrics"
)

// FarmLookup confirms a farm belongs to the farmer.
type FarmLookup interface {
	FindOwned(ctx context.Context, id, farmerID string) (*entities.Farm, error)
}

type Options struct {
	// Strict rejects writes the transition table does not allow. Off, any
	// status may be rewritten, closed rows included.
	Strict bool
	Now    func() time.Time
	Log    *zap.Logger
}

type consultationSvc struct {
	r      repo.ConsultationRepository
	farms  FarmLookup
	strict bool
	now    func() time.Time
	log    *zap.Logger
}

func NewConsultationService(r repo.ConsultationRepository, farms FarmLookup, opt Options) service.ConsultationService {
	s := &consultationSvc{r: r, farms: farms, strict: opt.Strict, now: opt.Now, log: opt.Log}
	if s.now == nil {
		s.now = time.Now
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

func (s *consultationSvc) Create(ctx context.Context, farmerID string, in service.CreateInput) (*service.View, error) {
	farmID := strings.TrimSpace(in.FarmID)
	issue := strings.TrimSpace(in.IssueDescription)
	if farmID == "" || issue == "" {
		return nil, apperr.Validation("Please select a farm and describe your issue")
	}
	if _, err := s.farms.FindOwned(ctx, farmID, farmerID); err != nil {
		return nil, err
	}
	c := &entities.Consultation{
		FarmerID:         farmerID,
		FarmID:           &farmID,
		IssueDescription: issue,
		Status:           entities.StatusPending,
	}
	if err := s.r.Create(ctx, c); err != nil {
		s.log.Error("Failed creating consultation", zap.String("farmerId", farmerID), zap.Error(err))
		return nil, err
	}
	return s.load(ctx, c.ID, entities.RoleFarmer)
}

// scopeFor maps the viewer's role onto the rows they may see.
func scopeFor(viewer *entities.Profile) (repo.Scope, error) {
	if viewer == nil {
		return repo.Scope{}, apperr.Forbidden("authentication required")
	}
	switch viewer.Role {
	case entities.RoleAdmin:
		return repo.Scope{}, nil
	case entities.RoleConsultant:
		return repo.Scope{ConsultantID: viewer.ID}, nil
	default:
		return repo.Scope{FarmerID: viewer.ID}, nil
	}
}

func parseStatus(raw string) (entities.ConsultationStatus, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" || raw == "all" {
		return "", nil
	}
	st := entities.ConsultationStatus(raw)
	if !st.Valid() {
		return "", apperr.Validation("Invalid status filter")
	}
	return st, nil
}

func (s *consultationSvc) List(ctx context.Context, viewer *entities.Profile, f service.ListFilter) (*service.ListResult, error) {
	scope, err := scopeFor(viewer)
	if err != nil {
		return nil, err
	}
	st, err := parseStatus(f.Status)
	if err != nil {
		return nil, err
	}
	list, err := s.r.List(ctx, scope, repo.Filter{Status: st, Query: f.Query})
	if err != nil {
		s.log.Error("Failed listing consultations", zap.String("userId", viewer.ID), zap.Error(err))
		return nil, err
	}
	counts, err := s.r.Counts(ctx, scope)
	if err != nil {
		return nil, err
	}
	return &service.ListResult{Items: service.NewViews(list, viewer.Role), Stats: counts}, nil
}

func (s *consultationSvc) Get(ctx context.Context, viewer *entities.Profile, id string) (*service.View, error) {
	if viewer == nil {
		return nil, apperr.Forbidden("authentication required")
	}
	c, err := s.r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visible(c, viewer) {
		return nil, apperr.NotFound("Consultation not found")
	}
	v := service.NewView(c, viewer.Role)
	return &v, nil
}

func visible(c *entities.Consultation, viewer *entities.Profile) bool {
	switch viewer.Role {
	case entities.RoleAdmin:
		return true
	case entities.RoleConsultant:
		if c.ConsultantID == nil {
			return c.Status == entities.StatusPending
		}
		return *c.ConsultantID == viewer.ID
	default:
		return c.FarmerID == viewer.ID
	}
}

func (s *consultationSvc) Queue(ctx context.Context, viewer *entities.Profile) ([]service.View, error) {
	list, err := s.r.Unassigned(ctx)
	if err != nil {
		return nil, err
	}
	role := entities.RoleConsultant
	if viewer != nil {
		role = viewer.Role
	}
	return service.NewViews(list, role), nil
}

func (s *consultationSvc) MarkActive(ctx context.Context, actor *entities.Profile, id string) (*service.View, error) {
	return s.transition(ctx, actor, id, repo.StatusUpdate{Status: entities.StatusActive})
}

func (s *consultationSvc) AddRecommendation(ctx context.Context, actor *entities.Profile, id, text string) (*service.View, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation("Please enter a recommendation")
	}
	return s.transition(ctx, actor, id, repo.StatusUpdate{Status: entities.StatusClosed, Recommendation: &text})
}

// transition writes the new status with a fresh updated_at in a single
// statement. A consultant acting on an unassigned row takes it over.
func (s *consultationSvc) transition(ctx context.Context, actor *entities.Profile, id string, u repo.StatusUpdate) (*service.View, error) {
	if actor == nil || (actor.Role != entities.RoleConsultant && actor.Role != entities.RoleAdmin) {
		return nil, apperr.Forbidden("Access denied. Consultant role required.")
	}
	u.UpdatedAt = s.now().UTC()
	if actor.Role == entities.RoleConsultant {
		u.AssignConsultant = actor.ID
	}
	var from []entities.ConsultationStatus
	if s.strict {
		from = service.Sources(u.Status)
	}

	n, err := s.r.UpdateStatus(ctx, id, from, u)
	if err != nil {
		s.log.Error("Failed updating consultation", zap.String("consultationId", id),
			zap.String("status", string(u.Status)), zap.Error(err))
		return nil, err
	}
	if n == 0 {
		cur, err := s.r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s -> %s", apperr.ErrInvalidTransition, cur.Status, u.Status)
	}
	metrics.Transitions.WithLabelValues(string(u.Status)).Inc()
	return s.load(ctx, id, actor.Role)
}

func (s *consultationSvc) load(ctx context.Context, id string, role entities.Role) (*service.View, error) {
	c, err := s.r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v := service.NewView(c, role)
	return &v, nil
}

func (s *consultationSvc) Recent(ctx context.Context, farmerID string, limit int) ([]service.View, error) {
	list, err := s.r.List(ctx, repo.Scope{FarmerID: farmerID}, repo.Filter{Limit: limit})
	if err != nil {
		return nil, err
	}
	return service.NewViews(list, entities.RoleFarmer), nil
}

func (s *consultationSvc) Activity(ctx context.Context, farmerID string, limit int) ([]service.Activity, error) {
	list, err := s.r.RecentlyUpdated(ctx, repo.Scope{FarmerID: farmerID}, limit)
	if err != nil {
		return nil, err
	}
	out := make([]service.Activity, 0, len(list))
	for _, c := range list {
		a := service.Activity{
			ID:          c.ID,
			Type:        service.ActivityPending,
			Title:       "Consultation request submitted",
			Description: truncate(c.IssueDescription, 100),
			Status:      c.Status,
			Timestamp:   c.UpdatedAt,
		}
		if c.Status == entities.StatusClosed {
			a.Type = service.ActivityResponse
			a.Title = "Consultation response received"
		}
		out = append(out, a)
	}
	return out, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
