package repositoryImp

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"mlimi/entities"
	"mlimi/pkg/apperr"
	"mlimi/pkg/profile/repository"
)

type profileRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.ProfileRepository { return &profileRepo{db} }

func (r *profileRepo) FindByID(ctx context.Context, id string) (*entities.Profile, error) {
	var p entities.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *profileRepo) List(ctx context.Context) ([]entities.Profile, error) {
	out := []entities.Profile{}
	return out, r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error
}

func (r *profileRepo) SetApproved(ctx context.Context, id string, approved bool) error {
	res := r.db.WithContext(ctx).Model(&entities.Profile{}).Where("id = ?", id).
		Update("is_approved", approved)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *profileRepo) Save(ctx context.Context, p *entities.Profile) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *profileRepo) Counts(ctx context.Context) (repository.RoleCounts, error) {
	var rows []struct {
		Role       entities.Role
		IsApproved bool
		N          int64
	}
	err := r.db.WithContext(ctx).Model(&entities.Profile{}).
		Select("role, is_approved, COUNT(*) AS n").
		Group("role, is_approved").
		Scan(&rows).Error
	if err != nil {
		return repository.RoleCounts{}, err
	}
	var c repository.RoleCounts
	for _, row := range rows {
		switch row.Role {
		case entities.RoleFarmer:
			c.Farmers += row.N
		case entities.RoleConsultant:
			c.Consultants += row.N
			if row.IsApproved {
				c.ApprovedConsultants += row.N
			} else {
				c.PendingConsultants += row.N
			}
		}
	}
	return c, nil
}
