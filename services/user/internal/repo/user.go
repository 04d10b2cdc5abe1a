package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"orderhub/pkg/apperr"
	"orderhub/services/user/internal/models"
)

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) Create(ctx context.Context, u *models.User) error {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", u.Email).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return apperr.ErrDuplicateResource.WithMessage("email already registered")
	}
	return r.DB.WithContext(ctx).Create(u).Error
}

func (r *GormRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound.WithMessage("user not found")
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound.WithMessage("user not found")
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) ExistsByID(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) Save(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Save(u).Error
}

func (r *GormRepo) Delete(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound.WithMessage("user not found")
	}
	return nil
}

type ListFilter struct {
	Status string
	Query  string
	Limit  int
	Offset int
}

func (r *GormRepo) List(ctx context.Context, f ListFilter) ([]models.User, error) {
	q := r.DB.WithContext(ctx).Model(&models.User{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Query != "" {
		like := "%" + strings.ToLower(f.Query) + "%"
		q = q.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?",
			like, like, like,
		)
	}

	var users []models.User
	err := q.Order("id ASC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
