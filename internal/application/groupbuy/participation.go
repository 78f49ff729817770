package groupbuy

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/application/txscope"
	walletapp "github.com/groupbuy/backend/internal/application/wallet"
	"github.com/groupbuy/backend/internal/domain/groupbuy"
	"github.com/groupbuy/backend/internal/domain/shared"
	"github.com/groupbuy/backend/internal/domain/wallet"
	"github.com/groupbuy/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Join admits the user into the group buy, paying from the wallet.
// Version conflicts with concurrent joins are retried up to the configured attempts.
func (s *GroupBuyService) Join(ctx context.Context, userID, id uuid.UUID, quantity int) (*JoinResult, error) {
	if quantity == 0 {
		quantity = 1
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "group_buy", "join",
		telemetry.SpanAttrGroupBuyID, id,
		telemetry.SpanAttrUserID, userID,
		telemetry.SpanAttrQuantity, quantity,
	)
	defer span.End()

	for attempt := 1; ; attempt++ {
		g, p, err := s.joinOnce(ctx, userID, id, quantity)
		if err == nil {
			s.observer.ObserveJoin(telemetry.JoinOutcomeAccepted)
			telemetry.SetAttributes(span, telemetry.SpanAttrAttempt, attempt)
			s.logger.Info("Joined group buy",
				zap.String("group_buy_id", id.String()),
				zap.String("user_id", userID.String()),
				zap.Int("quantity", quantity),
				zap.String("status", g.Status.String()),
			)
			return &JoinResult{
				Participant: ToParticipantResponse(p, nil),
				GroupBuy:    ToGroupBuyResponse(g, nil),
			}, nil
		}

		if errors.Is(err, shared.ErrConcurrencyConflict) {
			s.observer.ObserveJoin(telemetry.JoinOutcomeConflict)
			if attempt < s.config.JoinRetries {
				s.logger.Debug("Join conflicted, retrying",
					zap.String("group_buy_id", id.String()),
					zap.Int("attempt", attempt),
				)
				continue
			}
		} else {
			s.observer.ObserveJoin(telemetry.JoinOutcomeRejected)
		}
		telemetry.RecordError(span, err)
		return nil, err
	}
}

func (s *GroupBuyService) joinOnce(ctx context.Context, userID, id uuid.UUID, quantity int) (*groupbuy.GroupBuy, *groupbuy.Participant, error) {
	var (
		g *groupbuy.GroupBuy
		p *groupbuy.Participant
	)
	err := s.txScope.Execute(ctx, func(repos txscope.Repositories) error {
		var err error
		g, err = repos.GroupBuys().FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err)
		}
		p, err = g.Join(userID, quantity, s.now())
		if err != nil {
			return err
		}
		_, err = repos.Participants().FindHolding(ctx, id, userID)
		switch {
		case err == nil:
			return groupbuy.ErrAlreadyJoined
		case !errors.Is(err, shared.ErrNotFound):
			return fmt.Errorf("check participation: %w", err)
		}

		_, err = walletapp.Post(ctx, repos, walletapp.Posting{
			UserID:      userID,
			Type:        wallet.TransactionTypePurchase,
			Amount:      p.TotalAmount,
			Description: "Joined group buy: " + g.Title,
			ReferenceID: &g.ID,
		})
		if err != nil {
			return err
		}
		if err := repos.Participants().Create(ctx, p); err != nil {
			return fmt.Errorf("create participant: %w", err)
		}
		if err := repos.GroupBuys().SaveWithLock(ctx, g); err != nil {
			return err
		}
		return repos.SaveEvents(ctx, g.GetDomainEvents()...)
	})
	if err != nil {
		return nil, nil, err
	}
	g.ClearDomainEvents()
	return g, p, nil
}

// Leave cancels the user's participation while the group buy is still ACTIVE
// and returns the payment to the wallet.
func (s *GroupBuyService) Leave(ctx context.Context, userID, id uuid.UUID) error {
	var g *groupbuy.GroupBuy
	err := s.txScope.Execute(ctx, func(repos txscope.Repositories) error {
		var err error
		g, err = repos.GroupBuys().FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err)
		}
		p, err := repos.Participants().FindHolding(ctx, id, userID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return ErrNotJoined
			}
			return err
		}
		paid := p.Status == groupbuy.ParticipantStatusConfirmed
		if err := g.Leave(p, s.now()); err != nil {
			return err
		}
		if err := repos.Participants().Update(ctx, p); err != nil {
			return fmt.Errorf("update participant: %w", err)
		}
		if paid {
			_, err := walletapp.Post(ctx, repos, walletapp.Posting{
				UserID:      userID,
				Type:        wallet.TransactionTypeRefund,
				Amount:      p.TotalAmount,
				Description: "Left group buy: " + g.Title,
				ReferenceID: &g.ID,
			})
			if err != nil {
				return err
			}
		}
		if err := repos.GroupBuys().SaveWithLock(ctx, g); err != nil {
			return err
		}
		return repos.SaveEvents(ctx, g.GetDomainEvents()...)
	})
	if err != nil {
		return err
	}
	g.ClearDomainEvents()

	s.logger.Info("Left group buy",
		zap.String("group_buy_id", id.String()),
		zap.String("user_id", userID.String()),
	)
	return nil
}

// HasUserJoined reports whether the user holds a pending or confirmed participation
func (s *GroupBuyService) HasUserJoined(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	_, err := s.participantRepo.FindHolding(ctx, id, userID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, shared.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// GetParticipants lists the current and completed participations in join order
func (s *GroupBuyService) GetParticipants(ctx context.Context, id uuid.UUID) ([]ParticipantResponse, error) {
	exists, err := s.groupBuyRepo.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, groupbuy.ErrNotFound
	}
	participants, err := s.participantRepo.FindByGroupBuy(ctx, id,
		groupbuy.ParticipantStatusPending,
		groupbuy.ParticipantStatusConfirmed,
		groupbuy.ParticipantStatusCompleted,
	)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}

	userIDs := make([]uuid.UUID, len(participants))
	for i, p := range participants {
		userIDs[i] = p.UserID
	}
	users, err := s.profileRepo.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("load participant profiles: %w", err)
	}

	out := make([]ParticipantResponse, len(participants))
	for i, p := range participants {
		out[i] = ToParticipantResponse(p, users[p.UserID])
	}
	return out, nil
}

// GetUserOrders lists the user's participations with their group buy and organizer, newest first
func (s *GroupBuyService) GetUserOrders(ctx context.Context, userID uuid.UUID, page, pageSize int) (shared.Paginated[OrderResponse], error) {
	filter := shared.Filter{Page: page, PageSize: pageSize}.Normalize()
	participants, total, err := s.participantRepo.FindByUser(ctx, userID, filter)
	if err != nil {
		return shared.Paginated[OrderResponse]{}, fmt.Errorf("list orders: %w", err)
	}

	groupBuyIDs := make([]uuid.UUID, len(participants))
	for i, p := range participants {
		groupBuyIDs[i] = p.GroupBuyID
	}
	groupBuys, err := s.groupBuyRepo.FindByIDs(ctx, groupBuyIDs)
	if err != nil {
		return shared.Paginated[OrderResponse]{}, fmt.Errorf("load group buys: %w", err)
	}
	organizerIDs := make([]uuid.UUID, 0, len(groupBuys))
	for _, g := range groupBuys {
		organizerIDs = append(organizerIDs, g.OrganizerID)
	}
	organizers, err := s.profileRepo.FindByIDs(ctx, organizerIDs)
	if err != nil {
		return shared.Paginated[OrderResponse]{}, fmt.Errorf("load organizers: %w", err)
	}

	items := make([]OrderResponse, len(participants))
	for i, p := range participants {
		items[i] = OrderResponse{ParticipantResponse: ToParticipantResponse(p, nil)}
		if g, ok := groupBuys[p.GroupBuyID]; ok {
			resp := ToGroupBuyResponse(g, organizers[g.OrganizerID])
			items[i].GroupBuy = &resp
		}
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}
