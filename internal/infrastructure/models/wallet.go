package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Wallet struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"` // one wallet per user
	// Ciphertext and salt are stored base64 encoded, never plaintext.
	EncryptedPrivateKey string          `gorm:"type:text;not null"`
	Address             string          `gorm:"type:varchar(64);not null;index"`
	Balance             decimal.Decimal `gorm:"type:numeric(38,18);not null;default:0"`
	Salt                string          `gorm:"type:varchar(64);not null"`
	TokenDecimals       int16           `gorm:"not null;default:18"`
	LastSyncedAt        *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
	DeletedAt           gorm.DeletedAt `gorm:"index"`
}
