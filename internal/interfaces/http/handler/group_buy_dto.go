package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// CreateGroupBuyRequest is the body for a new listing
// @Description Request body for creating a group buy
type CreateGroupBuyRequest struct {
	Title            string           `json:"title" binding:"required,min=3,max=100" example:"Bulk oat milk, 12 x 1L"`
	Description      string           `json:"description" binding:"max=5000"`
	Category         string           `json:"category" binding:"required,max=50" example:"food"`
	ImageURL         string           `json:"image_url" binding:"omitempty,url,max=500"`
	Price            decimal.Decimal  `json:"price" binding:"required,money" swaggertype:"string" example:"2.50"`
	OriginalPrice    *decimal.Decimal `json:"original_price" binding:"omitempty,money" swaggertype:"string" example:"3.20"`
	MinParticipants  int              `json:"min_participants" binding:"required,min=1" example:"5"`
	MaxParticipants  int              `json:"max_participants" binding:"required,min=1,gtefield=MinParticipants" example:"20"`
	Location         string           `json:"location" binding:"max=200"`
	PickupLocationID *uuid.UUID       `json:"pickup_location_id"`
	ExpiresAt        time.Time        `json:"expires_at" binding:"required,future"`
}

// UpdateGroupBuyRequest edits an open listing; omitted fields are unchanged
// @Description Request body for updating a group buy
type UpdateGroupBuyRequest struct {
	Title            *string          `json:"title" binding:"omitempty,min=3,max=100"`
	Description      *string          `json:"description" binding:"omitempty,max=5000"`
	ImageURL         *string          `json:"image_url" binding:"omitempty,url,max=500"`
	Price            *decimal.Decimal `json:"price" binding:"omitempty,money" swaggertype:"string"`
	OriginalPrice    *decimal.Decimal `json:"original_price" binding:"omitempty,money" swaggertype:"string"`
	MinParticipants  *int             `json:"min_participants" binding:"omitempty,min=1"`
	MaxParticipants  *int             `json:"max_participants" binding:"omitempty,min=1"`
	Location         *string          `json:"location" binding:"omitempty,max=200"`
	PickupLocationID *uuid.UUID       `json:"pickup_location_id"`
	ExpiresAt        *time.Time       `json:"expires_at" binding:"omitempty,future"`
}

// JoinGroupBuyRequest sets how many units to reserve; defaults to one
type JoinGroupBuyRequest struct {
	Quantity int `json:"quantity" binding:"omitempty,min=1,max=100" example:"1"`
}

// ListGroupBuysQuery filters the open listings
type ListGroupBuysQuery struct {
	dto.PageQuery
	Q        string `form:"q" binding:"max=100"`
	Category string `form:"category" binding:"max=50"`
}

// ImageUploadRequest describes the image a client is about to upload
type ImageUploadRequest struct {
	Filename    string `json:"filename" binding:"required,max=255" example:"milk.jpg"`
	ContentType string `json:"content_type" binding:"required" example:"image/jpeg"`
}
