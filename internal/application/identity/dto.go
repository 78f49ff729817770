package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/identity"
	"github.com/groupbuy/backend/internal/infrastructure/auth"
	"github.com/shopspring/decimal"
)

// SignUpInput contains the input for account registration
type SignUpInput struct {
	Email    string
	Password string
	FullName string
	Username string
}

// SignInInput contains the input for sign-in
type SignInInput struct {
	Email    string
	Password string
}

// SignOutInput identifies the access token being revoked
type SignOutInput struct {
	UserID   uuid.UUID
	TokenJTI string
	// TokenTTL is how long the token would otherwise stay valid
	TokenTTL time.Duration
	// RefreshToken is revoked too when present
	RefreshToken string
}

// Session is returned after sign-up, sign-in and refresh
type Session struct {
	AccessToken           string       `json:"access_token"`
	RefreshToken          string       `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time    `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time    `json:"refresh_token_expires_at"`
	TokenType             string       `json:"token_type"`
	User                  *UserProfile `json:"user,omitempty"`
}

func newSession(pair *auth.TokenPair, p *identity.Profile) *Session {
	s := &Session{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
	}
	if p != nil {
		s.User = ToUserProfile(p)
	}
	return s
}

// UserProfile is the caller's own view of their account
type UserProfile struct {
	ID            uuid.UUID       `json:"id"`
	Email         string          `json:"email"`
	Username      string          `json:"username"`
	FullName      string          `json:"full_name"`
	AvatarURL     string          `json:"avatar_url,omitempty"`
	Phone         string          `json:"phone,omitempty"`
	WalletBalance decimal.Decimal `json:"wallet_balance"`
	Rating        decimal.Decimal `json:"rating"`
	Role          string          `json:"role"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ToUserProfile converts the aggregate for its owner
func ToUserProfile(p *identity.Profile) *UserProfile {
	return &UserProfile{
		ID:            p.ID,
		Email:         p.Email,
		Username:      p.Username,
		FullName:      p.FullName,
		AvatarURL:     p.AvatarURL,
		Phone:         p.Phone,
		WalletBalance: p.WalletBalance,
		Rating:        p.Rating,
		Role:          string(p.Role),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// PublicProfile is what other users see. It never includes email or balance.
type PublicProfile struct {
	ID        uuid.UUID       `json:"id"`
	Username  string          `json:"username"`
	FullName  string          `json:"full_name"`
	AvatarURL string          `json:"avatar_url,omitempty"`
	Rating    decimal.Decimal `json:"rating"`
	CreatedAt time.Time       `json:"created_at"`
}

// ToPublicProfile converts the aggregate for other users
func ToPublicProfile(p *identity.Profile) *PublicProfile {
	return &PublicProfile{
		ID:        p.ID,
		Username:  p.Username,
		FullName:  p.FullName,
		AvatarURL: p.AvatarURL,
		Rating:    p.Rating,
		CreatedAt: p.CreatedAt,
	}
}

// UpdateProfileInput carries optional profile edits
type UpdateProfileInput struct {
	Username  *string
	FullName  *string
	AvatarURL *string
	Phone     *string
}
