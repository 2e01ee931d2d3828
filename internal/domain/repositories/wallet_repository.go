package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ether-wallet.backend/internal/domain/entities"
)

// WalletRepository defines wallet data operations. A user has at most one
// wallet; Upsert replaces on conflict.
type WalletRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error)
	Upsert(ctx context.Context, wallet *entities.Wallet) (*entities.Wallet, error)
	UpdateBalance(ctx context.Context, userID uuid.UUID, balance decimal.Decimal) error
	ListAll(ctx context.Context) ([]*entities.Wallet, error)
}
