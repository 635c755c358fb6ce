package repositoryImp

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"mlimi/entities"
	"mlimi/pkg/apperr"
	"mlimi/pkg/auth/repository"
	"mlimi/pkg/realtime"
)

const emailTaken = "An account with this email already exists"

type accountRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.AccountRepository { return &accountRepo{db} }

func (r *accountRepo) CreateWithProfile(ctx context.Context, a *entities.Account, p *entities.Profile) error {
	err := realtime.Transaction(ctx, r.db, func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&entities.Account{}).Where("email = ?", a.Email).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return apperr.Conflict(emailTaken)
		}
		if err := tx.Create(a).Error; err != nil {
			return err
		}
		p.ID = a.ID
		return tx.Create(p).Error
	})
	// a concurrent sign-up can pass the count and lose on the unique index
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict(emailTaken)
	}
	return err
}

func (r *accountRepo) FindByEmail(ctx context.Context, email string) (*entities.Account, error) {
	var a entities.Account
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
