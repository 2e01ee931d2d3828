package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domainerrors "ether-wallet.backend/internal/domain/errors"
	"ether-wallet.backend/internal/infrastructure/models"
)

// resetTokenTTL bounds how long an issued token stays redeemable.
const resetTokenTTL = time.Hour

// PasswordResetRepository implements reset-token data operations
type PasswordResetRepository struct {
	db *gorm.DB
}

// NewPasswordResetRepository creates a new password reset repository
func NewPasswordResetRepository(db *gorm.DB) *PasswordResetRepository {
	return &PasswordResetRepository{db: db}
}

// Create stores a new reset token for a user
func (r *PasswordResetRepository) Create(ctx context.Context, userID uuid.UUID, token string) error {
	m := &models.PasswordReset{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: time.Now().Add(resetTokenTTL),
		CreatedAt: time.Now(),
	}
	return r.db.WithContext(ctx).Create(m).Error
}

// Consume marks a live token as used and returns its owner
func (r *PasswordResetRepository) Consume(ctx context.Context, token string) (uuid.UUID, error) {
	var m models.PasswordReset
	err := r.db.WithContext(ctx).
		Where("token = ? AND used_at IS NULL AND expires_at > ?", token, time.Now()).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, domainerrors.ErrNotFound
		}
		return uuid.Nil, err
	}

	now := time.Now()
	result := r.db.WithContext(ctx).Model(&models.PasswordReset{}).
		Where("id = ? AND used_at IS NULL", m.ID).
		Update("used_at", now)
	if result.Error != nil {
		return uuid.Nil, result.Error
	}
	if result.RowsAffected == 0 {
		// raced with another consumer
		return uuid.Nil, domainerrors.ErrNotFound
	}

	return m.UserID, nil
}
