package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/blackrent/backoffice/internal/auth"
	"github.com/blackrent/backoffice/internal/repository"
)

// AuthService authenticates back-office operators
type AuthService interface {
	Signup(ctx context.Context, email string, password string) (auth.User, error)
	Login(ctx context.Context, email string, password string, fingerprint string, at time.Time) (auth.Jwt, auth.RefreshToken, error)
	Logout(ctx context.Context, tokenID string) error
	Refresh(ctx context.Context, tokenID string, fingerprint string, at time.Time) (auth.Jwt, auth.RefreshToken, error)
}

type authService struct {
	jwtIssuer      *auth.JwtIssuer
	rfrTokenIssuer *auth.RefreshTokenIssuer
	userRps        repository.UserRepository
	rfrTokenRps    repository.RefreshTokenRepository
}

// NewAuthService builds new AuthService
func NewAuthService(
	jwtIssuer *auth.JwtIssuer,
	rfrTokenIssuer *auth.RefreshTokenIssuer,
	userRps repository.UserRepository,
	rfrTokenRps repository.RefreshTokenRepository,
) AuthService {
	return &authService{
		jwtIssuer:      jwtIssuer,
		rfrTokenIssuer: rfrTokenIssuer,
		userRps:        userRps,
		rfrTokenRps:    rfrTokenRps,
	}
}

func (s *authService) Signup(ctx context.Context, email string, password string) (auth.User, error) {
	existing, err := s.userRps.FindByEmail(ctx, email)
	if err != nil {
		return auth.User{}, err
	}
	if existing.ID != "" {
		return auth.User{}, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("user with email %s already exists", email))
	}

	hash, err := auth.GeneratePasswordHash(password)
	if err != nil {
		return auth.User{}, err
	}

	u := auth.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
	}

	if err := s.userRps.Create(ctx, u); err != nil {
		return auth.User{}, err
	}
	return u, nil
}

func (s *authService) Login(ctx context.Context, email string, password string, fingerprint string, at time.Time) (auth.Jwt, auth.RefreshToken, error) {
	user, err := s.userRps.FindByEmail(ctx, email)
	if err != nil {
		return auth.Jwt{}, auth.RefreshToken{}, err
	}

	if user.ID == "" {
		return auth.Jwt{}, auth.RefreshToken{}, echo.NewHTTPError(http.StatusUnauthorized, fmt.Sprintf("unknown user with email %s", email))
	}

	if err := user.VerifyPassword(password); err != nil {
		return auth.Jwt{}, auth.RefreshToken{}, echo.NewHTTPError(http.StatusUnauthorized, "password is incorrect")
	}

	jwtToken, err := s.jwtIssuer.Sign(user.Email, at)
	if err != nil {
		return auth.Jwt{}, auth.RefreshToken{}, err
	}

	rfrToken := s.rfrTokenIssuer.Sign(user.ID, fingerprint, at)

	userTokens, err := s.rfrTokenRps.FindTokensByUserID(ctx, user.ID)
	if err != nil {
		return auth.Jwt{}, auth.RefreshToken{}, err
	}

	if len(userTokens) >= s.rfrTokenIssuer.TokensMaxCount() {
		if err := s.rfrTokenRps.DeleteByUserID(ctx, user.ID); err != nil {
			return auth.Jwt{}, auth.RefreshToken{}, err
		}
	}

	if err := s.rfrTokenRps.Create(ctx, rfrToken); err != nil {
		return auth.Jwt{}, auth.RefreshToken{}, err
	}
	return jwtToken, rfrToken, nil
}

func (s *authService) Refresh(ctx context.Context, tokenID string, fingerprint string, at time.Time) (auth.Jwt, auth.RefreshToken, error) {
	rfrToken, err := s.rfrTokenRps.FindByID(ctx, tokenID)
	if err != nil {
		return auth.Jwt{}, auth.RefreshToken{}, err
	}

	if rfrToken.ID == "" {
		return auth.Jwt{}, auth.RefreshToken{}, echo.NewHTTPError(http.StatusUnauthorized, "non-existent refresh token provided")
	}

	if err := s.rfrTokenRps.DeleteByID(ctx, rfrToken.ID); err != nil {
		return auth.Jwt{}, auth.RefreshToken{}, err
	}

	if err := rfrToken.Verify(fingerprint, at); err != nil {
		return auth.Jwt{}, auth.RefreshToken{}, echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	user, err := s.userRps.FindByID(ctx, rfrToken.UserID)
	if err != nil {
		return auth.Jwt{}, auth.RefreshToken{}, err
	}

	jwtToken, err := s.jwtIssuer.Sign(user.Email, at)
	if err != nil {
		return auth.Jwt{}, auth.RefreshToken{}, err
	}

	newRfrToken := s.rfrTokenIssuer.Sign(user.ID, fingerprint, at)
	if err := s.rfrTokenRps.Create(ctx, newRfrToken); err != nil {
		return auth.Jwt{}, auth.RefreshToken{}, err
	}

	return jwtToken, newRfrToken, nil
}

func (s *authService) Logout(ctx context.Context, tokenID string) error {
	if err := s.rfrTokenRps.DeleteByID(ctx, tokenID); err != nil {
		return err
	}
	return nil
}
