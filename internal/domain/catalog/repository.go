package catalog

import (
	"context"

	"github.com/google/uuid"
)

// CategoryRepository defines persistence for categories
type CategoryRepository interface {
	Create(ctx context.Context, category *Category) error
	FindAll(ctx context.Context) ([]*Category, error)
	FindByCode(ctx context.Context, code string) (*Category, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
}

// PickupLocationRepository defines persistence for pickup locations
type PickupLocationRepository interface {
	Create(ctx context.Context, location *PickupLocation) error
	Update(ctx context.Context, location *PickupLocation) error
	FindByID(ctx context.Context, id uuid.UUID) (*PickupLocation, error)
	FindAll(ctx context.Context, activeOnly bool) ([]*PickupLocation, error)
}
