package repositoryImp

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mlimi/entities"
	"mlimi/pkg/apperr"
	"mlimi/pkg/consultation/repository"
)

type consultationRepo struct{ db *gorm.DB }

// likeEscaper makes search terms match literally under ESCAPE '!'.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func New(db *gorm.DB) repository.ConsultationRepository { return &consultationRepo{db} }

func (r *consultationRepo) Create(ctx context.Context, c *entities.Consultation) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error
}

func (r *consultationRepo) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&entities.Consultation{}).
		Preload("Farmer").
		Preload("Farm")
}

func scoped(q *gorm.DB, s repository.Scope) *gorm.DB {
	if s.FarmerID != "" {
		q = q.Where("consultations.farmer_id = ?", s.FarmerID)
	}
	if s.ConsultantID != "" {
		q = q.Where("consultations.consultant_id = ?", s.ConsultantID)
	}
	return q
}

func (r *consultationRepo) FindByID(ctx context.Context, id string) (*entities.Consultation, error) {
	var c entities.Consultation
	if err := r.withRelations(ctx).Where("consultations.id = ?", id).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Consultation not found")
		}
		return nil, err
	}
	return &c, nil
}

func (r *consultationRepo) List(ctx context.Context, s repository.Scope, f repository.Filter) ([]entities.Consultation, error) {
	q := scoped(r.withRelations(ctx), s)
	if f.Status != "" {
		q = q.Where("consultations.status = ?", f.Status)
	}
	if term := strings.ToLower(strings.TrimSpace(f.Query)); term != "" {
		like := "%" + likeEscaper.Replace(term) + "%"
		q = q.Joins("LEFT JOIN profiles AS farmer_profiles ON farmer_profiles.id = consultations.farmer_id").
			Where("LOWER(consultations.issue_description) LIKE ? ESCAPE '!' OR LOWER(farmer_profiles.name) LIKE ? ESCAPE '!'", like, like)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	out := []entities.Consultation{}
	return out, q.Order("consultations.created_at DESC").Find(&out).Error
}

func (r *consultationRepo) RecentlyUpdated(ctx context.Context, s repository.Scope, limit int) ([]entities.Consultation, error) {
	out := []entities.Consultation{}
	err := scoped(r.withRelations(ctx), s).Order("consultations.updated_at DESC").Limit(limit).Find(&out).Error
	return out, err
}

func (r *consultationRepo) Unassigned(ctx context.Context) ([]entities.Consultation, error) {
	out := []entities.Consultation{}
	err := r.withRelations(ctx).
		Where("consultations.consultant_id IS NULL AND consultations.status = ?", entities.StatusPending).
		Order("consultations.created_at ASC").
		Find(&out).Error
	return out, err
}

func (r *consultationRepo) Counts(ctx context.Context, s repository.Scope) (repository.StatusCounts, error) {
	var rows []struct {
		Status entities.ConsultationStatus
		N      int64
	}
	err := scoped(r.db.WithContext(ctx).Model(&entities.Consultation{}), s).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return repository.StatusCounts{}, err
	}
	var c repository.StatusCounts
	for _, row := range rows {
		c.Total += row.N
		switch row.Status {
		case entities.StatusPending:
			c.Pending = row.N
		case entities.StatusActive:
			c.Active = row.N
		case entities.StatusClosed:
			c.Closed = row.N
		}
	}
	return c, nil
}

func (r *consultationRepo) UpdateStatus(ctx context.Context, id string, from []entities.ConsultationStatus, u repository.StatusUpdate) (int64, error) {
	fields := map[string]any{
		"status":     u.Status,
		"updated_at": u.UpdatedAt,
	}
	if u.Recommendation != nil {
		fields["recommendation"] = *u.Recommendation
	}
	if u.AssignConsultant != "" {
		fields["consultant_id"] = gorm.Expr("COALESCE(consultant_id, ?)", u.AssignConsultant)
	}
	q := r.db.WithContext(ctx).Model(&entities.Consultation{}).Where("id = ?", id)
	if len(from) > 0 {
		q = q.Where("status IN ?", from)
	}
	res := q.Updates(fields)
	return res.RowsAffected, res.Error
}
