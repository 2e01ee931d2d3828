package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// Wallet represents a user's wallet. At most one wallet exists per user;
// re-running setup replaces it. The chain, not the stored balance, is the
// source of truth; Balance is a display cache refreshed on demand.
type Wallet struct {
	ID uuid.UUID `json:"id"`
	// UserID owns the wallet, enforced unique at the persistence layer.
	UserID uuid.UUID `json:"userId"`
	// EncryptedPrivateKey is the vault ciphertext, base64 encoded.
	// Plaintext key material never appears on this type.
	EncryptedPrivateKey string `json:"encryptedPrivateKey"`
	// Address is the EIP-55 checksummed account address, immutable once set.
	Address string          `json:"address"`
	Balance decimal.Decimal `json:"balance"`
	// Salt feeds key derivation only; the cipher IV travels inside the
	// ciphertext.
	Salt          []byte    `json:"salt"`
	TokenDecimals int16     `json:"tokenDecimals"`
	LastSyncedAt  null.Time `json:"lastSyncedAt,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// GenerateWalletInput commits a mnemonic and encryption password.
type GenerateWalletInput struct {
	Mnemonic string `json:"mnemonic" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// SendTransactionInput requests a transfer. Amount is a base-10 integer
// in the smallest unit (wei).
type SendTransactionInput struct {
	To       string `json:"to" binding:"required"`
	Amount   string `json:"amount" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// WalletError is the store's last-error surface shown to the UI.
type WalletError struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
