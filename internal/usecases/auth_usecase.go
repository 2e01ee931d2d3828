package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ether-wallet.backend/internal/domain/entities"
	domainerrors "ether-wallet.backend/internal/domain/errors"
	"ether-wallet.backend/internal/domain/repositories"
	"ether-wallet.backend/pkg/crypto"
	"ether-wallet.backend/pkg/jwt"
	"ether-wallet.backend/pkg/logger"
	"ether-wallet.backend/pkg/redis"
)

const sessionIDLength = 32

// AuthUsecase handles registration, session login and the password
// reset workflow.
type AuthUsecase struct {
	userRepo   repositories.UserRepository
	resetRepo  repositories.PasswordResetRepository
	jwtService *jwt.JWTService
	sessions   *redis.SessionStore
	sessionTTL time.Duration
}

// NewAuthUsecase creates a new auth usecase
func NewAuthUsecase(
	userRepo repositories.UserRepository,
	resetRepo repositories.PasswordResetRepository,
	jwtService *jwt.JWTService,
	sessions *redis.SessionStore,
	sessionTTL time.Duration,
) *AuthUsecase {
	return &AuthUsecase{
		userRepo:   userRepo,
		resetRepo:  resetRepo,
		jwtService: jwtService,
		sessions:   sessions,
		sessionTTL: sessionTTL,
	}
}

// Register creates a new user account
func (u *AuthUsecase) Register(ctx context.Context, input *entities.CreateUserInput) (*entities.User, error) {
	_, err := u.userRepo.GetByEmail(ctx, input.Email)
	if err == nil {
		return nil, domainerrors.ErrAlreadyExists
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	passwordHash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: passwordHash,
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login authenticates a user and opens a session
func (u *AuthUsecase) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
	user, err := u.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !crypto.CheckPassword(input.Password, user.PasswordHash) {
		return nil, domainerrors.ErrInvalidCredentials
	}

	tokenPair, err := u.jwtService.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	sessionID, err := crypto.GenerateRandomToken(sessionIDLength)
	if err != nil {
		return nil, err
	}

	data := &redis.SessionData{
		UserID:       user.ID.String(),
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
	}
	if err := u.sessions.CreateSession(ctx, sessionID, data, u.sessionTTL); err != nil {
		return nil, err
	}

	return &entities.AuthResponse{
		SessionID: sessionID,
		User:      user,
	}, nil
}

// Logout closes a session. Unknown sessions are not an error.
func (u *AuthUsecase) Logout(ctx context.Context, sessionID string) error {
	return u.sessions.DeleteSession(ctx, sessionID)
}

// Authenticate resolves a session id to its user. Used by the auth
// middleware on every protected request.
func (u *AuthUsecase) Authenticate(ctx context.Context, sessionID string) (*entities.User, error) {
	data, err := u.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, domainerrors.ErrUnauthorized
	}

	claims, err := u.jwtService.ValidateToken(data.AccessToken)
	if err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			return nil, domainerrors.ErrTokenExpired
		}
		return nil, domainerrors.ErrUnauthorized
	}

	user, err := u.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, domainerrors.ErrUnauthorized
	}
	return user, nil
}

// GetUserByID gets a user by ID
func (u *AuthUsecase) GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	return u.userRepo.GetByID(ctx, id)
}

// RequestPasswordReset issues a reset token for the account. The token
// is returned to the caller for delivery; the response to the client
// never reveals whether the email exists.
func (u *AuthUsecase) RequestPasswordReset(ctx context.Context, input *entities.RequestPasswordResetInput) (string, error) {
	user, err := u.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			logger.Info(ctx, "password reset requested for unknown email")
			return "", nil
		}
		return "", err
	}

	token, err := crypto.GenerateResetToken()
	if err != nil {
		return "", err
	}

	if err := u.resetRepo.Create(ctx, user.ID, token); err != nil {
		return "", err
	}

	logger.Info(ctx, "password reset token issued", zap.String("user_id", user.ID.String()))
	return token, nil
}

// ResetPassword consumes a reset token and sets the new password.
func (u *AuthUsecase) ResetPassword(ctx context.Context, input *entities.ResetPasswordInput) error {
	userID, err := u.resetRepo.Consume(ctx, input.Token)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.NewError("invalid or expired reset token", domainerrors.ErrTokenExpired)
		}
		return err
	}

	passwordHash, err := crypto.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}
	return u.userRepo.UpdatePassword(ctx, userID, passwordHash)
}
