// Package groupbuy implements listing, lifecycle and participation use cases
// for group buys.
package groupbuy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/application/txscope"
	walletapp "github.com/groupbuy/backend/internal/application/wallet"
	"github.com/groupbuy/backend/internal/domain/catalog"
	"github.com/groupbuy/backend/internal/domain/groupbuy"
	"github.com/groupbuy/backend/internal/domain/identity"
	"github.com/groupbuy/backend/internal/domain/shared"
	"github.com/groupbuy/backend/internal/domain/wallet"
	"github.com/groupbuy/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Errors raised while validating references of a group buy
var (
	ErrCategoryNotFound       = shared.NewDomainError("CATEGORY_NOT_FOUND", "Category not found")
	ErrPickupLocationNotFound = shared.NewDomainError("PICKUP_LOCATION_NOT_FOUND", "Pickup location not found")
	ErrPickupLocationInactive = shared.NewDomainError("PICKUP_LOCATION_INACTIVE", "Pickup location is no longer in use")
	ErrNotJoined              = shared.NewDomainError("NOT_JOINED", "You have not joined this group buy")
)

// JoinObserver records join outcomes, e.g. as metrics
type JoinObserver interface {
	ObserveJoin(outcome string)
}

type noopJoinObserver struct{}

func (noopJoinObserver) ObserveJoin(string) {}

// GroupBuyService handles group buy listings, lifecycle and participation
type GroupBuyService struct {
	groupBuyRepo    groupbuy.GroupBuyRepository
	participantRepo groupbuy.ParticipantRepository
	profileRepo     identity.ProfileRepository
	categoryRepo    catalog.CategoryRepository
	locationRepo    catalog.PickupLocationRepository
	txScope         txscope.TransactionScope
	storage         ImageStorage
	observer        JoinObserver
	config          config.GroupBuyConfig
	logger          *zap.Logger
	now             func() time.Time
}

// NewGroupBuyService creates a new GroupBuyService
func NewGroupBuyService(
	groupBuyRepo groupbuy.GroupBuyRepository,
	participantRepo groupbuy.ParticipantRepository,
	profileRepo identity.ProfileRepository,
	categoryRepo catalog.CategoryRepository,
	locationRepo catalog.PickupLocationRepository,
	txScope txscope.TransactionScope,
	cfg config.GroupBuyConfig,
	logger *zap.Logger,
) *GroupBuyService {
	if cfg.JoinRetries < 1 {
		cfg.JoinRetries = 3
	}
	if cfg.MaxDuration <= 0 {
		cfg.MaxDuration = 30 * 24 * time.Hour
	}
	return &GroupBuyService{
		groupBuyRepo:    groupBuyRepo,
		participantRepo: participantRepo,
		profileRepo:     profileRepo,
		categoryRepo:    categoryRepo,
		locationRepo:    locationRepo,
		txScope:         txScope,
		observer:        noopJoinObserver{},
		config:          cfg,
		logger:          logger,
		now:             time.Now,
	}
}

// SetImageStorage enables image uploads
func (s *GroupBuyService) SetImageStorage(storage ImageStorage) {
	s.storage = storage
}

// SetJoinObserver sets the observer notified of every join attempt
func (s *GroupBuyService) SetJoinObserver(o JoinObserver) {
	if o == nil {
		o = noopJoinObserver{}
	}
	s.observer = o
}

// SetClock overrides the time source
func (s *GroupBuyService) SetClock(now func() time.Time) {
	s.now = now
}

// GetActiveGroupBuys lists open group buys, newest first
func (s *GroupBuyService) GetActiveGroupBuys(ctx context.Context, page, pageSize int) (shared.Paginated[GroupBuyResponse], error) {
	return s.List(ctx, ListInput{Page: page, PageSize: pageSize})
}

// GetGroupBuysByCategory lists open group buys of one category
func (s *GroupBuyService) GetGroupBuysByCategory(ctx context.Context, category string, page, pageSize int) (shared.Paginated[GroupBuyResponse], error) {
	return s.List(ctx, ListInput{Category: category, Page: page, PageSize: pageSize})
}

// SearchGroupBuys matches open group buys by title or description
func (s *GroupBuyService) SearchGroupBuys(ctx context.Context, query string, page, pageSize int) (shared.Paginated[GroupBuyResponse], error) {
	return s.List(ctx, ListInput{Query: query, Page: page, PageSize: pageSize})
}

// List returns open group buys narrowed by category and search query
func (s *GroupBuyService) List(ctx context.Context, input ListInput) (shared.Paginated[GroupBuyResponse], error) {
	if input.PageSize <= 0 && s.config.DefaultPageSz > 0 {
		input.PageSize = s.config.DefaultPageSz
	}
	filter := groupbuy.ListFilter{
		Filter:   shared.Filter{Page: input.Page, PageSize: input.PageSize}.Normalize(),
		Category: input.Category,
		Query:    NormalizeQuery(input.Query),
	}
	items, total, err := s.groupBuyRepo.FindOpen(ctx, filter, s.now())
	if err != nil {
		return shared.Paginated[GroupBuyResponse]{}, fmt.Errorf("list group buys: %w", err)
	}
	responses, err := s.withOrganizers(ctx, items)
	if err != nil {
		return shared.Paginated[GroupBuyResponse]{}, err
	}
	return shared.NewPaginated(responses, total, filter.Page, filter.PageSize), nil
}

// GetUserGroupBuys lists every group buy the user organized, in any status
func (s *GroupBuyService) GetUserGroupBuys(ctx context.Context, organizerID uuid.UUID, page, pageSize int) (shared.Paginated[GroupBuyResponse], error) {
	filter := shared.Filter{Page: page, PageSize: pageSize}.Normalize()
	items, total, err := s.groupBuyRepo.FindByOrganizer(ctx, organizerID, filter)
	if err != nil {
		return shared.Paginated[GroupBuyResponse]{}, fmt.Errorf("list organizer group buys: %w", err)
	}
	responses, err := s.withOrganizers(ctx, items)
	if err != nil {
		return shared.Paginated[GroupBuyResponse]{}, err
	}
	return shared.NewPaginated(responses, total, filter.Page, filter.PageSize), nil
}

// GetByID returns one group buy with its organizer
func (s *GroupBuyService) GetByID(ctx context.Context, id uuid.UUID) (*GroupBuyResponse, error) {
	g, err := s.groupBuyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	organizer, err := s.profileRepo.FindByID(ctx, g.OrganizerID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	resp := ToGroupBuyResponse(g, organizer)
	return &resp, nil
}

// Create opens a new group buy on behalf of organizerID
func (s *GroupBuyService) Create(ctx context.Context, organizerID uuid.UUID, input CreateGroupBuyInput) (*GroupBuyResponse, error) {
	organizer, err := s.profileRepo.FindByID(ctx, organizerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, identity.ErrProfileNotFound
		}
		return nil, err
	}
	exists, err := s.categoryRepo.ExistsByCode(ctx, input.Category)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrCategoryNotFound
	}
	if err := s.checkPickupLocation(ctx, input.PickupLocationID); err != nil {
		return nil, err
	}

	g, err := groupbuy.New(groupbuy.Draft{
		OrganizerID:      organizerID,
		Title:            input.Title,
		Description:      input.Description,
		Category:         input.Category,
		ImageURL:         input.ImageURL,
		Price:            input.Price,
		OriginalPrice:    input.OriginalPrice,
		MinParticipants:  input.MinParticipants,
		MaxParticipants:  input.MaxParticipants,
		Location:         input.Location,
		PickupLocationID: input.PickupLocationID,
		ExpiresAt:        input.ExpiresAt,
	}, s.now(), s.config.MaxDuration)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos txscope.Repositories) error {
		if err := repos.GroupBuys().Create(ctx, g); err != nil {
			return fmt.Errorf("create group buy: %w", err)
		}
		return repos.SaveEvents(ctx, g.GetDomainEvents()...)
	})
	if err != nil {
		return nil, err
	}
	g.ClearDomainEvents()

	s.logger.Info("Group buy created",
		zap.String("group_buy_id", g.ID.String()),
		zap.String("organizer_id", organizerID.String()),
		zap.Int("max_participants", g.MaxParticipants),
	)
	resp := ToGroupBuyResponse(g, organizer)
	return &resp, nil
}

// Update edits an ACTIVE group buy on behalf of its organizer
func (s *GroupBuyService) Update(ctx context.Context, organizerID, id uuid.UUID, input UpdateGroupBuyInput) (*GroupBuyResponse, error) {
	if input.PickupLocationID != nil {
		if err := s.checkPickupLocation(ctx, input.PickupLocationID); err != nil {
			return nil, err
		}
	}

	var g *groupbuy.GroupBuy
	err := s.txScope.Execute(ctx, func(repos txscope.Repositories) error {
		var err error
		g, err = repos.GroupBuys().FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err)
		}
		err = g.ApplyUpdate(organizerID, groupbuy.Update{
			Title:            input.Title,
			Description:      input.Description,
			ImageURL:         input.ImageURL,
			Price:            input.Price,
			OriginalPrice:    input.OriginalPrice,
			MinParticipants:  input.MinParticipants,
			MaxParticipants:  input.MaxParticipants,
			Location:         input.Location,
			PickupLocationID: input.PickupLocationID,
			ExpiresAt:        input.ExpiresAt,
		}, s.now(), s.config.MaxDuration)
		if err != nil {
			return err
		}
		if err := repos.GroupBuys().SaveWithLock(ctx, g); err != nil {
			return err
		}
		return repos.SaveEvents(ctx, g.GetDomainEvents()...)
	})
	if err != nil {
		return nil, err
	}
	g.ClearDomainEvents()

	s.logger.Info("Group buy updated", zap.String("group_buy_id", id.String()))
	return s.GetByID(ctx, id)
}

// Cancel withdraws the group buy and refunds every paid participant in one transaction
func (s *GroupBuyService) Cancel(ctx context.Context, organizerID, id uuid.UUID) (*GroupBuyResponse, error) {
	var (
		g        *groupbuy.GroupBuy
		refunded []*groupbuy.Participant
	)
	err := s.txScope.Execute(ctx, func(repos txscope.Repositories) error {
		var err error
		g, err = repos.GroupBuys().FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err)
		}
		participants, err := repos.Participants().FindByGroupBuy(ctx, id, groupbuy.HoldingParticipantStatuses...)
		if err != nil {
			return fmt.Errorf("load participants: %w", err)
		}
		refunded, err = g.Cancel(organizerID, participants, s.now())
		if err != nil {
			return err
		}
		if err := RefundParticipants(ctx, repos, g, participants, refunded, "Group buy cancelled: "+g.Title); err != nil {
			return err
		}
		if err := repos.GroupBuys().SaveWithLock(ctx, g); err != nil {
			return err
		}
		return repos.SaveEvents(ctx, g.GetDomainEvents()...)
	})
	if err != nil {
		return nil, err
	}
	g.ClearDomainEvents()

	s.logger.Info("Group buy cancelled",
		zap.String("group_buy_id", id.String()),
		zap.Int("refunds", len(refunded)),
	)
	return s.GetByID(ctx, id)
}

// RefundParticipants persists every participation touched by a refunding
// transition and credits the refunded ones back to their wallets.
func RefundParticipants(
	ctx context.Context,
	repos txscope.Repositories,
	g *groupbuy.GroupBuy,
	touched, refunded []*groupbuy.Participant,
	description string,
) error {
	for _, p := range touched {
		if err := repos.Participants().Update(ctx, p); err != nil {
			return fmt.Errorf("update participant %s: %w", p.ID, err)
		}
	}
	for _, p := range refunded {
		_, err := walletapp.Post(ctx, repos, walletapp.Posting{
			UserID:      p.UserID,
			Type:        wallet.TransactionTypeRefund,
			Amount:      p.TotalAmount,
			Description: description,
			ReferenceID: &g.ID,
		})
		if err != nil {
			return fmt.Errorf("refund participant %s: %w", p.ID, err)
		}
	}
	return nil
}

func (s *GroupBuyService) checkPickupLocation(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	loc, err := s.locationRepo.FindByID(ctx, *id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return ErrPickupLocationNotFound
		}
		return err
	}
	if !loc.IsActive {
		return ErrPickupLocationInactive
	}
	return nil
}

func (s *GroupBuyService) withOrganizers(ctx context.Context, items []*groupbuy.GroupBuy) ([]GroupBuyResponse, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, g := range items {
		ids = append(ids, g.OrganizerID)
	}
	profiles, err := s.profileRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load organizers: %w", err)
	}
	out := make([]GroupBuyResponse, len(items))
	for i, g := range items {
		out[i] = ToGroupBuyResponse(g, profiles[g.OrganizerID])
	}
	return out, nil
}

func notFound(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return groupbuy.ErrNotFound
	}
	return err
}
