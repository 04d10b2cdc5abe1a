package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"orderhub/pkg/apperr"
	"orderhub/services/auth/internal/models"
)

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) UsernameOrEmailTaken(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.AuthUser{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateUser relies on the unique indexes as the concurrency backstop; the
// friendly duplicate check happens in the service before the remote phase.
func (r *GormRepo) CreateUser(ctx context.Context, u *models.AuthUser) error {
	if err := r.DB.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.ErrDuplicateResource.WithCause(err)
		}
		return err
	}
	return nil
}

func (r *GormRepo) FindByUsername(ctx context.Context, username string) (*models.AuthUser, error) {
	var user models.AuthUser
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) FindByID(ctx context.Context, id uint) (*models.AuthUser, error) {
	var user models.AuthUser
	if err := r.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound.WithMessage("user not found")
		}
		return nil, err
	}
	return &user, nil
}
