package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/groupbuy"
	"github.com/shopspring/decimal"
)

// GroupBuyModel is the persistence model for the GroupBuy aggregate
type GroupBuyModel struct {
	AggregateModel
	OrganizerID         uuid.UUID        `gorm:"type:uuid;not null;index"`
	Title               string           `gorm:"type:varchar(100);not null"`
	Description         string           `gorm:"type:text"`
	Category            string           `gorm:"type:varchar(50);not null;index:idx_group_buys_status_category,priority:2"`
	ImageURL            string           `gorm:"type:varchar(500)"`
	Price               decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	OriginalPrice       *decimal.Decimal `gorm:"type:decimal(18,4)"`
	CurrentParticipants int              `gorm:"not null;default:0"`
	MinParticipants     int              `gorm:"not null"`
	MaxParticipants     int              `gorm:"not null"`
	Location            string           `gorm:"type:varchar(200)"`
	PickupLocationID    *uuid.UUID       `gorm:"type:uuid"`
	ExpiresAt           time.Time        `gorm:"not null;index:idx_group_buys_status_expires,priority:2"`
	Status              groupbuy.Status  `gorm:"type:varchar(20);not null;default:'ACTIVE';index:idx_group_buys_status_expires,priority:1;index:idx_group_buys_status_category,priority:1"`
	SettledAt           *time.Time
}

// TableName returns the table name for GORM
func (GroupBuyModel) TableName() string {
	return "group_buys"
}

// ToDomain converts the persistence model to a domain GroupBuy
func (m *GroupBuyModel) ToDomain() *groupbuy.GroupBuy {
	return &groupbuy.GroupBuy{
		BaseAggregateRoot:   m.Aggregate(),
		OrganizerID:         m.OrganizerID,
		Title:               m.Title,
		Description:         m.Description,
		Category:            m.Category,
		ImageURL:            m.ImageURL,
		Price:               m.Price,
		OriginalPrice:       m.OriginalPrice,
		CurrentParticipants: m.CurrentParticipants,
		MinParticipants:     m.MinParticipants,
		MaxParticipants:     m.MaxParticipants,
		Location:            m.Location,
		PickupLocationID:    m.PickupLocationID,
		ExpiresAt:           m.ExpiresAt,
		Status:              m.Status,
		SettledAt:           m.SettledAt,
	}
}

// FromDomain populates the persistence model from a domain GroupBuy
func (m *GroupBuyModel) FromDomain(g *groupbuy.GroupBuy) {
	m.SetAggregate(g.BaseAggregateRoot)
	m.OrganizerID = g.OrganizerID
	m.Title = g.Title
	m.Description = g.Description
	m.Category = g.Category
	m.ImageURL = g.ImageURL
	m.Price = g.Price
	m.OriginalPrice = g.OriginalPrice
	m.CurrentParticipants = g.CurrentParticipants
	m.MinParticipants = g.MinParticipants
	m.MaxParticipants = g.MaxParticipants
	m.Location = g.Location
	m.PickupLocationID = g.PickupLocationID
	m.ExpiresAt = g.ExpiresAt
	m.Status = g.Status
	m.SettledAt = g.SettledAt
}

// GroupBuyModelFromDomain creates a new persistence model from a domain GroupBuy
func GroupBuyModelFromDomain(g *groupbuy.GroupBuy) *GroupBuyModel {
	m := &GroupBuyModel{}
	m.FromDomain(g)
	return m
}

// ParticipantModel is the persistence model for participations.
// A user holds at most one PENDING or CONFIRMED participation per group buy.
type ParticipantModel struct {
	BaseModel
	GroupBuyID  uuid.UUID                  `gorm:"type:uuid;not null;index;uniqueIndex:idx_participants_holding,priority:1,where:status = 'PENDING' OR status = 'CONFIRMED'"`
	UserID      uuid.UUID                  `gorm:"type:uuid;not null;index;uniqueIndex:idx_participants_holding,priority:2"`
	Quantity    int                        `gorm:"not null"`
	UnitPrice   decimal.Decimal            `gorm:"type:decimal(18,4);not null"`
	TotalAmount decimal.Decimal            `gorm:"type:decimal(18,4);not null"`
	Status      groupbuy.ParticipantStatus `gorm:"type:varchar(20);not null"`
	JoinedAt    time.Time                  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ParticipantModel) TableName() string {
	return "participants"
}

// ToDomain converts the persistence model to a domain Participant
func (m *ParticipantModel) ToDomain() *groupbuy.Participant {
	return &groupbuy.Participant{
		BaseEntity:  m.Entity(),
		GroupBuyID:  m.GroupBuyID,
		UserID:      m.UserID,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		TotalAmount: m.TotalAmount,
		Status:      m.Status,
		JoinedAt:    m.JoinedAt,
	}
}

// ParticipantModelFromDomain creates a new persistence model from a domain Participant
func ParticipantModelFromDomain(p *groupbuy.Participant) *ParticipantModel {
	m := &ParticipantModel{
		GroupBuyID:  p.GroupBuyID,
		UserID:      p.UserID,
		Quantity:    p.Quantity,
		UnitPrice:   p.UnitPrice,
		TotalAmount: p.TotalAmount,
		Status:      p.Status,
		JoinedAt:    p.JoinedAt,
	}
	m.SetEntity(p.BaseEntity)
	return m
}
