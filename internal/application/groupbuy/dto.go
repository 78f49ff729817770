package groupbuy

import (
	"time"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/groupbuy"
	"github.com/groupbuy/backend/internal/domain/identity"
	"github.com/shopspring/decimal"
)

// UserSummary is the public part of a profile embedded in listings
type UserSummary struct {
	ID        uuid.UUID       `json:"id"`
	Username  string          `json:"username"`
	FullName  string          `json:"full_name"`
	AvatarURL string          `json:"avatar_url,omitempty"`
	Rating    decimal.Decimal `json:"rating"`
}

func toUserSummary(p *identity.Profile) *UserSummary {
	if p == nil {
		return nil
	}
	return &UserSummary{
		ID:        p.ID,
		Username:  p.Username,
		FullName:  p.FullName,
		AvatarURL: p.AvatarURL,
		Rating:    p.Rating,
	}
}

// GroupBuyResponse represents a group buy with its organizer
type GroupBuyResponse struct {
	ID                  uuid.UUID        `json:"id"`
	OrganizerID         uuid.UUID        `json:"organizer_id"`
	Title               string           `json:"title"`
	Description         string           `json:"description"`
	Category            string           `json:"category"`
	ImageURL            string           `json:"image_url,omitempty"`
	Price               decimal.Decimal  `json:"price"`
	OriginalPrice       *decimal.Decimal `json:"original_price,omitempty"`
	CurrentParticipants int              `json:"current_participants"`
	MinParticipants     int              `json:"min_participants"`
	MaxParticipants     int              `json:"max_participants"`
	RemainingSlots      int              `json:"remaining_slots"`
	Location            string           `json:"location,omitempty"`
	PickupLocationID    *uuid.UUID       `json:"pickup_location_id,omitempty"`
	ExpiresAt           time.Time        `json:"expires_at"`
	Status              string           `json:"status"`
	SettledAt           *time.Time       `json:"settled_at,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
	Organizer           *UserSummary     `json:"organizer,omitempty"`
}

// ToGroupBuyResponse converts the aggregate, embedding organizer when known
func ToGroupBuyResponse(g *groupbuy.GroupBuy, organizer *identity.Profile) GroupBuyResponse {
	return GroupBuyResponse{
		ID:                  g.ID,
		OrganizerID:         g.OrganizerID,
		Title:               g.Title,
		Description:         g.Description,
		Category:            g.Category,
		ImageURL:            g.ImageURL,
		Price:               g.Price,
		OriginalPrice:       g.OriginalPrice,
		CurrentParticipants: g.CurrentParticipants,
		MinParticipants:     g.MinParticipants,
		MaxParticipants:     g.MaxParticipants,
		RemainingSlots:      g.RemainingSlots(),
		Location:            g.Location,
		PickupLocationID:    g.PickupLocationID,
		ExpiresAt:           g.ExpiresAt,
		Status:              g.Status.String(),
		SettledAt:           g.SettledAt,
		CreatedAt:           g.CreatedAt,
		UpdatedAt:           g.UpdatedAt,
		Organizer:           toUserSummary(organizer),
	}
}

// ParticipantResponse represents one participation
type ParticipantResponse struct {
	ID          uuid.UUID       `json:"id"`
	GroupBuyID  uuid.UUID       `json:"group_buy_id"`
	UserID      uuid.UUID       `json:"user_id"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      string          `json:"status"`
	JoinedAt    time.Time       `json:"joined_at"`
	User        *UserSummary    `json:"user,omitempty"`
}

// ToParticipantResponse converts a participation, embedding user when known
func ToParticipantResponse(p *groupbuy.Participant, user *identity.Profile) ParticipantResponse {
	return ParticipantResponse{
		ID:          p.ID,
		GroupBuyID:  p.GroupBuyID,
		UserID:      p.UserID,
		Quantity:    p.Quantity,
		UnitPrice:   p.UnitPrice,
		TotalAmount: p.TotalAmount,
		Status:      p.Status.String(),
		JoinedAt:    p.JoinedAt,
		User:        toUserSummary(user),
	}
}

// OrderResponse is a participation seen from the participant's side
type OrderResponse struct {
	ParticipantResponse
	GroupBuy *GroupBuyResponse `json:"group_buy,omitempty"`
}

// JoinResult is returned after a successful join
type JoinResult struct {
	Participant ParticipantResponse `json:"participant"`
	GroupBuy    GroupBuyResponse    `json:"group_buy"`
}

// CreateGroupBuyInput is the organizer's input for a new listing
type CreateGroupBuyInput struct {
	Title            string
	Description      string
	Category         string
	ImageURL         string
	Price            decimal.Decimal
	OriginalPrice    *decimal.Decimal
	MinParticipants  int
	MaxParticipants  int
	Location         string
	PickupLocationID *uuid.UUID
	ExpiresAt        time.Time
}

// UpdateGroupBuyInput carries optional edits; nil fields are unchanged
type UpdateGroupBuyInput struct {
	Title            *string
	Description      *string
	ImageURL         *string
	Price            *decimal.Decimal
	OriginalPrice    *decimal.Decimal
	MinParticipants  *int
	MaxParticipants  *int
	Location         *string
	PickupLocationID *uuid.UUID
	ExpiresAt        *time.Time
}

// ListInput filters open listings
type ListInput struct {
	Query    string
	Category string
	Page     int
	PageSize int
}

// ImageUploadInput describes an image the client wants to upload
type ImageUploadInput struct {
	Filename    string
	ContentType string
}

// ImageUploadResult tells the client where to PUT the image and which URL to store
type ImageUploadResult struct {
	UploadURL  string    `json:"upload_url"`
	PublicURL  string    `json:"public_url"`
	StorageKey string    `json:"storage_key"`
	ExpiresAt  time.Time `json:"expires_at"`
}
