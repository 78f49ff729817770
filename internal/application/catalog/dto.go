package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/catalog"
)

// CreateCategoryRequest represents a request to create a new category
type CreateCategoryRequest struct {
	Code      string `json:"code" binding:"required,min=1,max=50"`
	Name      string `json:"name" binding:"required,min=1,max=100"`
	NameEn    string `json:"name_en" binding:"max=100"`
	Icon      string `json:"icon" binding:"max=50"`
	Color     string `json:"color" binding:"omitempty,hexcolor"`
	SortOrder int    `json:"sort_order"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	NameEn    string    `json:"name_en,omitempty"`
	Icon      string    `json:"icon,omitempty"`
	Color     string    `json:"color,omitempty"`
	SortOrder int       `json:"sort_order"`
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID,
		Code:      c.Code,
		Name:      c.Name,
		NameEn:    c.NameEn,
		Icon:      c.Icon,
		Color:     c.Color,
		SortOrder: c.SortOrder,
	}
}

// CreatePickupLocationRequest represents a request to add a pickup location
type CreatePickupLocationRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=100"`
	Address string `json:"address" binding:"max=300"`
}

// SetPickupLocationActiveRequest toggles a pickup location
type SetPickupLocationActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// PickupLocationResponse represents a pickup location in API responses
type PickupLocationResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	IsActive  bool      `json:"is_active"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToPickupLocationResponse converts a domain PickupLocation to PickupLocationResponse
func ToPickupLocationResponse(l *catalog.PickupLocation) PickupLocationResponse {
	return PickupLocationResponse{
		ID:        l.ID,
		Name:      l.Name,
		Address:   l.Address,
		IsActive:  l.IsActive,
		UpdatedAt: l.UpdatedAt,
	}
}
