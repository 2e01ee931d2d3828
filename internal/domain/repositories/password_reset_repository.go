package repositories

import (
	"context"

	"github.com/google/uuid"
)

// PasswordResetRepository defines reset-token data operations
type PasswordResetRepository interface {
	Create(ctx context.Context, userID uuid.UUID, token string) error
	// Consume marks an unexpired, unused token as used and returns its
	// owner. Expired, unknown or already-used tokens return ErrNotFound.
	Consume(ctx context.Context, token string) (uuid.UUID, error)
}
