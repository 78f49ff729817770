package models

import (
	"github.com/groupbuy/backend/internal/domain/identity"
	"github.com/shopspring/decimal"
)

// ProfileModel is the persistence model for the Profile aggregate
type ProfileModel struct {
	AggregateModel
	Email         string                 `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash  string                 `gorm:"type:varchar(255);not null"`
	Username      string                 `gorm:"type:varchar(30);not null;uniqueIndex"`
	FullName      string                 `gorm:"type:varchar(100)"`
	AvatarURL     string                 `gorm:"type:varchar(500)"`
	Phone         string                 `gorm:"type:varchar(30)"`
	WalletBalance decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	Rating        decimal.Decimal        `gorm:"type:decimal(3,2);not null;default:5"`
	Role          identity.Role          `gorm:"type:varchar(20);not null;default:'user'"`
	Status        identity.ProfileStatus `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (ProfileModel) TableName() string {
	return "profiles"
}

// ToDomain converts the persistence model to a domain Profile
func (m *ProfileModel) ToDomain() *identity.Profile {
	return &identity.Profile{
		BaseAggregateRoot: m.Aggregate(),
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		Username:          m.Username,
		FullName:          m.FullName,
		AvatarURL:         m.AvatarURL,
		Phone:             m.Phone,
		WalletBalance:     m.WalletBalance,
		Rating:            m.Rating,
		Role:              m.Role,
		Status:            m.Status,
	}
}

// FromDomain populates the persistence model from a domain Profile
func (m *ProfileModel) FromDomain(p *identity.Profile) {
	m.SetAggregate(p.BaseAggregateRoot)
	m.Email = p.Email
	m.PasswordHash = p.PasswordHash
	m.Username = p.Username
	m.FullName = p.FullName
	m.AvatarURL = p.AvatarURL
	m.Phone = p.Phone
	m.WalletBalance = p.WalletBalance
	m.Rating = p.Rating
	m.Role = p.Role
	m.Status = p.Status
}

// ProfileModelFromDomain creates a new persistence model from a domain Profile
func ProfileModelFromDomain(p *identity.Profile) *ProfileModel {
	m := &ProfileModel{}
	m.FromDomain(p)
	return m
}
