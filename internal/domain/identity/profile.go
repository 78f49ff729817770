package identity

import (
	"regexp"
	"strings"

	"github.com/groupbuy/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// Role is the authorization role of an account
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsValid reports whether the role is known
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// ProfileStatus represents whether an account may sign in
type ProfileStatus string

const (
	ProfileStatusActive   ProfileStatus = "active"
	ProfileStatusDisabled ProfileStatus = "disabled"
)

// PasswordCost is the bcrypt cost used for new password hashes
var PasswordCost = 12

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// Errors shared by services that look up accounts
var (
	ErrProfileNotFound    = shared.NewDomainError("USER_NOT_FOUND", "User profile not found")
	ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	ErrAccountDisabled    = shared.NewDomainError("ACCOUNT_DISABLED", "Account has been disabled")
)

// DefaultRating is the rating every new account starts with
var DefaultRating = decimal.NewFromInt(5)

// Profile is a marketplace account together with its wallet balance.
// It is the aggregate root for everything that mutates the balance.
type Profile struct {
	shared.BaseAggregateRoot
	Email         string
	PasswordHash  string
	Username      string
	FullName      string
	AvatarURL     string
	Phone         string
	WalletBalance decimal.Decimal
	Rating        decimal.Decimal
	Role          Role
	Status        ProfileStatus
}

// NewProfile registers a new account with an empty wallet
func NewProfile(email, password, username, fullName string) (*Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	fullName = strings.TrimSpace(fullName)
	if len(fullName) > 100 {
		return nil, shared.NewDomainError("INVALID_FULL_NAME", "Full name cannot exceed 100 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	return &Profile{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		PasswordHash:      string(hash),
		Username:          strings.TrimSpace(username),
		FullName:          fullName,
		WalletBalance:     decimal.Zero,
		Rating:            DefaultRating,
		Role:              RoleUser,
		Status:            ProfileStatusActive,
	}, nil
}

// VerifyPassword checks a plaintext password against the stored hash
func (p *Profile) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) == nil
}

// CanSignIn reports whether the account is allowed to authenticate
func (p *Profile) CanSignIn() bool {
	return p.Status == ProfileStatusActive
}

// IsAdmin reports whether the account has the admin role
func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// ProfileUpdate carries optional profile fields; nil means unchanged
type ProfileUpdate struct {
	Username  *string
	FullName  *string
	AvatarURL *string
	Phone     *string
}

// ApplyUpdate validates and applies a partial update
func (p *Profile) ApplyUpdate(u ProfileUpdate) error {
	if u.Username != nil {
		if err := validateUsername(*u.Username); err != nil {
			return err
		}
		p.Username = strings.TrimSpace(*u.Username)
	}
	if u.FullName != nil {
		name := strings.TrimSpace(*u.FullName)
		if len(name) > 100 {
			return shared.NewDomainError("INVALID_FULL_NAME", "Full name cannot exceed 100 characters")
		}
		p.FullName = name
	}
	if u.AvatarURL != nil {
		if len(*u.AvatarURL) > 500 {
			return shared.NewDomainError("INVALID_AVATAR", "Avatar URL cannot exceed 500 characters")
		}
		p.AvatarURL = strings.TrimSpace(*u.AvatarURL)
	}
	if u.Phone != nil {
		if len(*u.Phone) > 30 {
			return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 30 characters")
		}
		p.Phone = strings.TrimSpace(*u.Phone)
	}
	p.Touch()
	return nil
}

// Credit adds amount to the wallet and returns the balances around the change
func (p *Profile) Credit(amount decimal.Decimal) (before, after decimal.Decimal, err error) {
	if !amount.IsPositive() {
		return decimal.Zero, decimal.Zero, shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	before = p.WalletBalance
	p.WalletBalance = before.Add(amount)
	p.Touch()
	return before, p.WalletBalance, nil
}

// Debit removes amount from the wallet. The balance never goes negative.
func (p *Profile) Debit(amount decimal.Decimal) (before, after decimal.Decimal, err error) {
	if !amount.IsPositive() {
		return decimal.Zero, decimal.Zero, shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	if p.WalletBalance.LessThan(amount) {
		return decimal.Zero, decimal.Zero, shared.ErrInsufficientBalance
	}
	before = p.WalletBalance
	p.WalletBalance = before.Sub(amount)
	p.Touch()
	return before, p.WalletBalance, nil
}

func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	if len(username) < 3 {
		return shared.NewDomainError("INVALID_USERNAME", "Username must be at least 3 characters")
	}
	if len(username) > 30 {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot exceed 30 characters")
	}
	if !usernameRegex.MatchString(username) {
		return shared.NewDomainError("INVALID_USERNAME", "Username can only contain letters, numbers, underscores, hyphens, and dots")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	// bcrypt ignores input past 72 bytes
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}
