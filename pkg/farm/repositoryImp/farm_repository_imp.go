package repositoryImp

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"mlimi/entities"
	"mlimi/pkg/apperr"
	"mlimi/pkg/farm/repository"
)

type farmRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.FarmRepository { return &farmRepo{db} }

func (r *farmRepo) Create(ctx context.Context, f *entities.Farm) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *farmRepo) Save(ctx context.Context, f *entities.Farm) error {
	return r.db.WithContext(ctx).Save(f).Error
}

func (r *farmRepo) FindOwned(ctx context.Context, id, farmerID string) (*entities.Farm, error) {
	var f entities.Farm
	err := r.db.WithContext(ctx).Where("id = ? AND farmer_id = ?", id, farmerID).First(&f).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Farm not found")
		}
		return nil, err
	}
	return &f, nil
}

func (r *farmRepo) ListByOwner(ctx context.Context, farmerID string) ([]entities.Farm, error) {
	out := []entities.Farm{}
	err := r.db.WithContext(ctx).Where("farmer_id = ?", farmerID).Order("created_at DESC").Find(&out).Error
	return out, err
}
