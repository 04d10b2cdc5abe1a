package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"orderhub/pkg/apperr"
	"orderhub/services/auth/internal/models"
)

func (r *GormRepo) StoreRefresh(ctx context.Context, tokenHash string, userID uint, expiresAt time.Time) error {
	row := models.RefreshToken{
		TokenHash: tokenHash,
		UserID:    userID,
		ExpiresAt: expiresAt.Unix(),
	}
	return r.DB.WithContext(ctx).Create(&row).Error
}

func (r *GormRepo) FindRefreshByHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	var row models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrInvalidToken
		}
		return nil, err
	}
	return &row, nil
}

// RevokeAllForUser enforces the single-active-session policy: every login
// invalidates all previously issued refresh tokens of that user.
func (r *GormRepo) RevokeAllForUser(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).Error
}

// Rotate atomically revokes the presented token and inserts its replacement.
// The revocation is a conditional single-row UPDATE on revoked = false, so
// when the same token is presented concurrently exactly one transaction wins;
// the loser observes TOKEN_EXPIRED.
func (r *GormRepo) Rotate(ctx context.Context, presentedHash, newHash string, newExpiresAt time.Time) (uint, error) {
	var userID uint

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.RefreshToken
		if err := tx.Where("token_hash = ?", presentedHash).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrInvalidToken
			}
			return err
		}

		if row.ExpiredOrRevoked(time.Now().UTC()) {
			return apperr.ErrTokenExpired
		}

		res := tx.Model(&models.RefreshToken{}).
			Where("id = ? AND revoked = ?", row.ID, false).
			Update("revoked", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.ErrTokenExpired
		}

		userID = row.UserID
		next := models.RefreshToken{
			TokenHash: newHash,
			UserID:    row.UserID,
			ExpiresAt: newExpiresAt.Unix(),
		}
		return tx.Create(&next).Error
	})
	if err != nil {
		return 0, err
	}
	return userID, nil
}
