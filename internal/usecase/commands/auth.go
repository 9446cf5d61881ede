package commands

import (
	"context"
	"log/slog"

	"tablebook/internal/domain/user"
	reqdto "tablebook/internal/handler/dto/request"
	"tablebook/internal/pkg/errs"
	"tablebook/internal/pkg/jwt"
	"tablebook/internal/pkg/password"
	"tablebook/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound         = errs.New("user not found")
	ErrInvalidCredentials   = errs.New("invalid credentials")
	ErrUserInactive         = errs.New("user inactive")
	ErrAuthenticationFailed = errs.New("authentication failed")
	ErrTokenGeneration      = errs.New("token generation failed")
	ErrTokenValidation      = errs.New("token validation failed")
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type LoginResult struct {
	UserID       uuid.UUID
	RestaurantID uuid.UUID
	Role         string
	TokenPair    *TokenPair
}

type AuthCommands interface {
	Login(ctx context.Context, req reqdto.LoginRequest) (*LoginResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
}

type authCommandsImpl struct {
	uow        shared.UnitOfWork
	jwtService *jwt.Service
	logger     *slog.Logger
}

func NewAuthCommands(uow shared.UnitOfWork, jwtService *jwt.Service, logger *slog.Logger) AuthCommands {
	return &authCommandsImpl{
		uow:        uow,
		jwtService: jwtService,
		logger:     logger,
	}
}

func (a *authCommandsImpl) Login(ctx context.Context, req reqdto.LoginRequest) (*LoginResult, error) {
	email, err := user.NewEmail(req.Email)
	if err != nil {
		return nil, errs.Mark(err, ErrAuthenticationFailed)
	}

	account, err := a.validateUser(ctx, email, req.Password)
	if err != nil {
		return nil, err
	}

	accessToken, err := a.jwtService.GenerateAccessToken(account.ID(), account.RestaurantID(), account.Role())
	if err != nil {
		return nil, errs.Mark(err, ErrTokenGeneration)
	}
	refreshToken, err := a.jwtService.GenerateRefreshToken(account.ID(), account.RestaurantID(), account.Role())
	if err != nil {
		return nil, errs.Mark(err, ErrTokenGeneration)
	}

	err = a.uow.Within(ctx, func(ctx context.Context, tx shared.Tx, _ func(shared.AfterCommit)) error {
		return tx.Users().UpdateLastLogin(ctx, account.ID())
	})
	if err != nil {
		// not critical, login already succeeded
		a.logger.Warn("failed to update last login", "user_id", account.ID(), "error", err)
	}

	return &LoginResult{
		UserID:       account.ID(),
		RestaurantID: account.RestaurantID(),
		Role:         account.Role().String(),
		TokenPair: &TokenPair{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
		},
	}, nil
}

func (a *authCommandsImpl) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := a.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return nil, errs.Mark(err, ErrTokenValidation)
	}
	if claims.TokenType != "refresh" {
		return nil, ErrTokenValidation
	}

	var account *user.User
	err = a.uow.Within(ctx, func(ctx context.Context, tx shared.Tx, _ func(shared.AfterCommit)) error {
		found, findErr := tx.Users().FindByID(ctx, claims.UserID)
		if findErr != nil {
			return findErr
		}
		account = found
		return nil
	})
	if err != nil {
		return nil, ErrUserNotFound
	}
	if !account.IsActive() {
		return nil, ErrUserInactive
	}

	accessToken, err := a.jwtService.GenerateAccessToken(account.ID(), account.RestaurantID(), account.Role())
	if err != nil {
		return nil, errs.Mark(err, ErrTokenGeneration)
	}
	newRefreshToken, err := a.jwtService.GenerateRefreshToken(account.ID(), account.RestaurantID(), account.Role())
	if err != nil {
		return nil, errs.Mark(err, ErrTokenGeneration)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
	}, nil
}

func (a *authCommandsImpl) validateUser(ctx context.Context, email user.Email, plainPassword string) (*user.User, error) {
	var account *user.User
	err := a.uow.Within(ctx, func(ctx context.Context, tx shared.Tx, _ func(shared.AfterCommit)) error {
		found, findErr := tx.Users().FindByEmail(ctx, email)
		if findErr != nil {
			return findErr
		}
		account = found
		return nil
	})
	if err != nil {
		// same error as a password mismatch to avoid user enumeration
		return nil, ErrInvalidCredentials
	}

	if !account.IsActive() {
		return nil, ErrUserInactive
	}
	if err := password.ComparePassword(account.PasswordHash(), plainPassword); err != nil {
		return nil, ErrInvalidCredentials
	}
	return account, nil
}
