package identity

import (
	"context"

	"github.com/google/uuid"
)

// ProfileRepository defines persistence for profiles
type ProfileRepository interface {
	Create(ctx context.Context, profile *Profile) error
	// Update persists profile fields with an optimistic version check
	Update(ctx context.Context, profile *Profile) error
	FindByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	// FindByIDForUpdate loads the profile holding a row lock for the running transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Profile, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Profile, error)
	FindByEmail(ctx context.Context, email string) (*Profile, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string, excludeID *uuid.UUID) (bool, error)
}
