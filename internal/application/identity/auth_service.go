// Package identity implements account registration, authentication and profile use cases.
package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/identity"
	"github.com/groupbuy/backend/internal/domain/shared"
	"github.com/groupbuy/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// Errors raised by registration and token handling
var (
	ErrEmailTaken    = shared.NewDomainError("CONFLICT", "Email is already registered")
	ErrUsernameTaken = shared.NewDomainError("CONFLICT", "Username is already taken")
	ErrTokenExpired  = shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	ErrTokenInvalid  = shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	ErrTokenRevoked  = shared.NewDomainError("TOKEN_REVOKED", "Refresh token has been revoked")
)

// AuthService handles sign-up, sign-in, sign-out and token refresh
type AuthService struct {
	profileRepo identity.ProfileRepository
	jwtService  *auth.JWTService
	blacklist   auth.TokenBlacklist
	logger      *zap.Logger
	now         func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	profileRepo identity.ProfileRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		profileRepo: profileRepo,
		jwtService:  jwtService,
		blacklist:   blacklist,
		logger:      logger,
		now:         time.Now,
	}
}

// SignUp registers a new account with an empty wallet and signs it in
func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	taken, err := s.profileRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}
	taken, err = s.profileRepo.ExistsByUsername(ctx, strings.TrimSpace(input.Username), nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	profile, err := identity.NewProfile(email, input.Password, input.Username, input.FullName)
	if err != nil {
		return nil, err
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		// lost a race with a concurrent sign-up
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.logger.Info("Account registered",
		zap.String("user_id", profile.ID.String()),
		zap.String("username", profile.Username),
	)
	return s.issue(profile)
}

// SignIn verifies the password and returns a token pair
func (s *AuthService) SignIn(ctx context.Context, input SignInInput) (*Session, error) {
	profile, err := s.profileRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Sign-in for unknown email")
			return nil, identity.ErrInvalidCredentials
		}
		return nil, err
	}
	if !profile.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("user_id", profile.ID.String()))
		return nil, identity.ErrInvalidCredentials
	}
	if !profile.CanSignIn() {
		s.logger.Warn("Sign-in attempt for disabled account", zap.String("user_id", profile.ID.String()))
		return nil, identity.ErrAccountDisabled
	}

	s.logger.Info("User signed in", zap.String("user_id", profile.ID.String()))
	return s.issue(profile)
}

// SignOut revokes the access token until it would have expired.
// A refresh token, when given, is revoked as well.
func (s *AuthService) SignOut(ctx context.Context, input SignOutInput) error {
	if input.TokenJTI != "" {
		if err := s.blacklist.AddToBlacklist(ctx, input.TokenJTI, input.TokenTTL); err != nil {
			s.logger.Error("Failed to revoke access token", zap.Error(err))
			return err
		}
	}
	if input.RefreshToken != "" {
		claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
		if err == nil && claims.ID != "" {
			if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.RemainingTTL(s.now())); err != nil {
				s.logger.Error("Failed to revoke refresh token", zap.Error(err))
				return err
			}
		}
	}
	s.logger.Info("User signed out", zap.String("user_id", input.UserID.String()))
	return nil
}

// Refresh rotates a refresh token into a new pair. The old refresh token is revoked.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, mapTokenError(err)
	}
	if claims.ID != "" {
		revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, ErrTokenInvalid
	}
	profile, err := s.profileRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, identity.ErrProfileNotFound
		}
		return nil, err
	}
	if !profile.CanSignIn() {
		return nil, identity.ErrAccountDisabled
	}

	pair, err := s.jwtService.RefreshTokenPair(refreshToken, profile.Username, string(profile.Role))
	if err != nil {
		s.logger.Warn("Token refresh failed", zap.Error(err))
		return nil, mapTokenError(err)
	}
	if claims.ID != "" {
		if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.RemainingTTL(s.now())); err != nil {
			s.logger.Warn("Failed to revoke rotated refresh token", zap.Error(err))
		}
	}

	s.logger.Info("Token refreshed", zap.String("user_id", userID.String()))
	return newSession(pair, nil), nil
}

// GetCurrentUser returns the signed-in user's own profile
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*UserProfile, error) {
	profile, err := s.profileRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, identity.ErrProfileNotFound
		}
		return nil, err
	}
	return ToUserProfile(profile), nil
}

func (s *AuthService) issue(profile *identity.Profile) (*Session, error) {
	pair, err := s.jwtService.GenerateTokenPair(auth.Subject{
		UserID:   profile.ID,
		Username: profile.Username,
		Role:     string(profile.Role),
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}
	return newSession(pair, profile), nil
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return ErrTokenExpired
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please sign in again")
	default:
		return ErrTokenInvalid
	}
}
