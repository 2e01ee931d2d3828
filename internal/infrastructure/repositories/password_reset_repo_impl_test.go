package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "ether-wallet.backend/internal/domain/errors"
)

func TestPasswordResetRepository_CreateAndConsume(t *testing.T) {
	db := newTestDB(t)
	createPasswordResetTable(t, db)
	repo := NewPasswordResetRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	require.NoError(t, repo.Create(ctx, userID, "tok-1"))

	owner, err := repo.Consume(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, userID, owner)

	// a token is single use
	_, err = repo.Consume(ctx, "tok-1")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestPasswordResetRepository_UnknownToken(t *testing.T) {
	db := newTestDB(t)
	createPasswordResetTable(t, db)
	repo := NewPasswordResetRepository(db)

	_, err := repo.Consume(context.Background(), "never-issued")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestPasswordResetRepository_ExpiredToken(t *testing.T) {
	db := newTestDB(t)
	createPasswordResetTable(t, db)
	repo := NewPasswordResetRepository(db)
	ctx := context.Background()

	mustExec(t, db, `INSERT INTO password_resets (id, user_id, token, expires_at, created_at)
		VALUES (?, ?, 'tok-old', ?, ?)`,
		uuid.New().String(), uuid.New().String(),
		time.Now().Add(-time.Minute), time.Now().Add(-2*time.Hour))

	_, err := repo.Consume(ctx, "tok-old")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}
