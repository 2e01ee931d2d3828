package repositories

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ether-wallet.backend/internal/domain/entities"
	domainerrors "ether-wallet.backend/internal/domain/errors"
	"ether-wallet.backend/internal/infrastructure/models"
)

// WalletRepository implements wallet data operations. The unique index on
// user_id keeps the one-wallet-per-user invariant at the storage layer.
type WalletRepository struct {
	db *gorm.DB
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// GetByUserID gets the wallet owned by a user
func (r *WalletRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error) {
	var m models.Wallet
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrWalletNotFound
		}
		return nil, err
	}
	return r.toEntity(&m)
}

// Upsert creates the wallet or replaces the existing row for the same
// user, mirroring INSERT ... ON CONFLICT (user_id) DO UPDATE.
func (r *WalletRepository) Upsert(ctx context.Context, wallet *entities.Wallet) (*entities.Wallet, error) {
	if wallet.ID == uuid.Nil {
		wallet.ID = uuid.New()
	}
	now := time.Now()

	m := &models.Wallet{
		ID:                  wallet.ID,
		UserID:              wallet.UserID,
		EncryptedPrivateKey: wallet.EncryptedPrivateKey,
		Address:             wallet.Address,
		Balance:             wallet.Balance,
		Salt:                base64.StdEncoding.EncodeToString(wallet.Salt),
		TokenDecimals:       wallet.TokenDecimals,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if wallet.LastSyncedAt.Valid {
		t := wallet.LastSyncedAt.Time
		m.LastSyncedAt = &t
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"encrypted_private_key", "address", "balance", "salt", "token_decimals", "updated_at",
		}),
	}).Create(m).Error
	if err != nil {
		return nil, err
	}

	return r.GetByUserID(ctx, wallet.UserID)
}

// UpdateBalance refreshes the cached balance for a user's wallet
func (r *WalletRepository) UpdateBalance(ctx context.Context, userID uuid.UUID, balance decimal.Decimal) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&models.Wallet{}).Where("user_id = ?", userID).Updates(map[string]interface{}{
		"balance":        balance,
		"last_synced_at": now,
		"updated_at":     now,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrWalletNotFound
	}
	return nil
}

// ListAll lists every wallet (used by the balance refresh job)
func (r *WalletRepository) ListAll(ctx context.Context) ([]*entities.Wallet, error) {
	var ms []models.Wallet
	if err := r.db.WithContext(ctx).Find(&ms).Error; err != nil {
		return nil, err
	}

	wallets := make([]*entities.Wallet, 0, len(ms))
	for i := range ms {
		w, err := r.toEntity(&ms[i])
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, w)
	}
	return wallets, nil
}

func (r *WalletRepository) toEntity(m *models.Wallet) (*entities.Wallet, error) {
	salt, err := base64.StdEncoding.DecodeString(m.Salt)
	if err != nil {
		return nil, domainerrors.NewError("stored salt is not valid base64", err)
	}

	w := &entities.Wallet{
		ID:                  m.ID,
		UserID:              m.UserID,
		EncryptedPrivateKey: m.EncryptedPrivateKey,
		Address:             m.Address,
		Balance:             m.Balance,
		Salt:                salt,
		TokenDecimals:       m.TokenDecimals,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
	if m.LastSyncedAt != nil {
		w.LastSyncedAt.SetValid(*m.LastSyncedAt)
	}
	return w, nil
}
