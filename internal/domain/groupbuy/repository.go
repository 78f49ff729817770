package groupbuy

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/shared"
)

// ListFilter narrows a group buy listing
type ListFilter struct {
	shared.Filter
	Category string
	// Query is a normalized, lowercase search term matched against title and description
	Query string
}

// GroupBuyRepository defines persistence for the group buy aggregate
type GroupBuyRepository interface {
	Create(ctx context.Context, g *GroupBuy) error
	// SaveWithLock persists the aggregate if its version is unchanged and bumps the version.
	// It returns shared.ErrConcurrencyConflict otherwise.
	SaveWithLock(ctx context.Context, g *GroupBuy) error
	FindByID(ctx context.Context, id uuid.UUID) (*GroupBuy, error)
	// FindByIDForUpdate loads the aggregate holding a row lock for the running transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*GroupBuy, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*GroupBuy, error)
	// FindOpen lists ACTIVE group buys whose deadline is not before now, newest first
	FindOpen(ctx context.Context, filter ListFilter, now time.Time) ([]*GroupBuy, int64, error)
	FindByOrganizer(ctx context.Context, organizerID uuid.UUID, filter shared.Filter) ([]*GroupBuy, int64, error)
	// FindDueForExpiry returns IDs of ACTIVE group buys whose deadline has passed
	FindDueForExpiry(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
	FindIDsByStatus(ctx context.Context, status Status, limit int) ([]uuid.UUID, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// ParticipantRepository defines persistence for participations
type ParticipantRepository interface {
	Create(ctx context.Context, p *Participant) error
	Update(ctx context.Context, p *Participant) error
	FindByID(ctx context.Context, id uuid.UUID) (*Participant, error)
	// FindByGroupBuy lists participations ordered by join time
	FindByGroupBuy(ctx context.Context, groupBuyID uuid.UUID, statuses ...ParticipantStatus) ([]*Participant, error)
	// FindHolding returns the user's PENDING or CONFIRMED participation, or shared.ErrNotFound
	FindHolding(ctx context.Context, groupBuyID, userID uuid.UUID) (*Participant, error)
	// FindByUser lists the user's participations, newest first
	FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]*Participant, int64, error)
}
