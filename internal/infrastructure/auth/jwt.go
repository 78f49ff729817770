package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/infrastructure/config"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

const roleAdmin = "admin"

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrInvalidTokenType   = errors.New("wrong token type")
	ErrMaxRefreshExceeded = errors.New("refresh limit reached, sign in again")
	ErrTokenBlacklisted   = errors.New("token has been revoked")
)

// Claims is the payload of both token kinds. Refresh tokens leave Username
// and Role empty; they are re-read from the profile on rotation.
type Claims struct {
	jwt.RegisteredClaims
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	Role         string    `json:"role,omitempty"`
	TokenType    TokenType `json:"token_type"`
	RefreshCount int       `json:"refresh_count,omitempty"`
}

func (c *Claims) GetUserUUID() (uuid.UUID, error) { return uuid.Parse(c.UserID) }

func (c *Claims) IsAdmin() bool { return c.Role == roleAdmin }

// RemainingTTL is how long the token stays valid after now, never negative.
// The blacklist keeps a revoked jti exactly that long.
func (c *Claims) RemainingTTL(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return max(c.ExpiresAt.Sub(now), 0)
}

type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// Subject is the profile a pair is issued to.
type Subject struct {
	UserID   uuid.UUID
	Username string
	Role     string
}

// JWTService signs and verifies HS256 tokens. Refresh tokens are signed with
// RefreshSecret when it is set and with Secret otherwise.
type JWTService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	maxRefresh    int
	now           func() time.Time
}

func NewJWTService(cfg config.JWTConfig) *JWTService {
	refresh := cfg.RefreshSecret
	if refresh == "" {
		refresh = cfg.Secret
	}
	return &JWTService{
		accessSecret:  []byte(cfg.Secret),
		refreshSecret: []byte(refresh),
		accessTTL:     cfg.AccessTokenExpiration,
		refreshTTL:    cfg.RefreshTokenExpiration,
		issuer:        cfg.Issuer,
		maxRefresh:    cfg.MaxRefreshCount,
		now:           time.Now,
	}
}

func (s *JWTService) AccessTokenExpiration() time.Duration { return s.accessTTL }

func (s *JWTService) GenerateTokenPair(sub Subject) (*TokenPair, error) {
	return s.issue(sub, 0)
}

// RefreshTokenPair trades a refresh token for a new pair. username and role
// come from the current profile, not from the old token, so a promotion or
// rename takes effect on the next rotation.
func (s *JWTService) RefreshTokenPair(refreshToken, username, role string) (*TokenPair, error) {
	old, err := s.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if s.maxRefresh > 0 && old.RefreshCount >= s.maxRefresh {
		return nil, ErrMaxRefreshExceeded
	}
	id, err := old.GetUserUUID()
	if err != nil {
		return nil, ErrInvalidToken
	}
	return s.issue(Subject{UserID: id, Username: username, Role: role}, old.RefreshCount+1)
}

func (s *JWTService) issue(sub Subject, generation int) (*TokenPair, error) {
	now := s.now()
	pair := &TokenPair{
		AccessTokenExpiresAt:  now.Add(s.accessTTL),
		RefreshTokenExpiresAt: now.Add(s.refreshTTL),
		TokenType:             "Bearer",
	}

	access := s.claims(sub.UserID, TokenTypeAccess, now, pair.AccessTokenExpiresAt)
	access.Username, access.Role = sub.Username, sub.Role

	refresh := s.claims(sub.UserID, TokenTypeRefresh, now, pair.RefreshTokenExpiresAt)
	refresh.RefreshCount = generation

	var err error
	if pair.AccessToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, access).SignedString(s.accessSecret); err != nil {
		return nil, err
	}
	if pair.RefreshToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, refresh).SignedString(s.refreshSecret); err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *JWTService) claims(userID uuid.UUID, typ TokenType, now, exp time.Time) *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{s.issuer},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		UserID:    userID.String(),
		TokenType: typ,
	}
}

func (s *JWTService) ValidateAccessToken(raw string) (*Claims, error) {
	return s.parse(raw, s.accessSecret, TokenTypeAccess)
}

func (s *JWTService) ValidateRefreshToken(raw string) (*Claims, error) {
	return s.parse(raw, s.refreshSecret, TokenTypeRefresh)
}

// parse accepts only HS256-family signatures from our issuer. Every failure
// other than expiry collapses into ErrInvalidToken.
func (s *JWTService) parse(raw string, secret []byte, want TokenType) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, ErrInvalidToken
	case claims.TokenType != want:
		return nil, ErrInvalidTokenType
	case claims.UserID == "":
		return nil, ErrInvalidToken
	}
	return claims, nil
}
