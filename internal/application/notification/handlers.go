package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/chat"
	"github.com/groupbuy/backend/internal/domain/groupbuy"
	"github.com/groupbuy/backend/internal/domain/notification"
	"github.com/groupbuy/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LifecycleHandler tells organizers and participants about group buy transitions
type LifecycleHandler struct {
	notifications   *NotificationService
	participantRepo groupbuy.ParticipantRepository
	logger          *zap.Logger
}

// NewLifecycleHandler creates a new LifecycleHandler
func NewLifecycleHandler(notifications *NotificationService, participantRepo groupbuy.ParticipantRepository, logger *zap.Logger) *LifecycleHandler {
	return &LifecycleHandler{notifications: notifications, participantRepo: participantRepo, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *LifecycleHandler) EventTypes() []string {
	return groupbuy.LifecycleEventTypes
}

// Handle creates the notifications for one transition
func (h *LifecycleHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	lifecycle, ok := event.(groupbuy.LifecycleEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %s", event.EventType())
	}
	snap := lifecycle.GroupBuy()
	link := groupBuyLink(snap.GroupBuyID)

	var drafts []Draft
	switch e := event.(type) {
	case *groupbuy.JoinedEvent:
		drafts = append(drafts, Draft{
			UserID:  snap.OrganizerID,
			Type:    notification.TypeGroupBuy,
			Title:   "New participant",
			Message: fmt.Sprintf("Someone joined \"%s\" (%d/%d).", snap.Title, snap.CurrentParticipants, snap.MaxParticipants),
			Link:    link,
		})

	case *groupbuy.ParticipationCancelledEvent:
		drafts = append(drafts, Draft{
			UserID:  snap.OrganizerID,
			Type:    notification.TypeInfo,
			Title:   "Participant left",
			Message: fmt.Sprintf("A participant left \"%s\" (%d/%d).", snap.Title, snap.CurrentParticipants, snap.MaxParticipants),
			Link:    link,
		})

	case *groupbuy.FullEvent:
		participants, err := h.participantUserIDs(ctx, snap.GroupBuyID, groupbuy.HoldingParticipantStatuses...)
		if err != nil {
			return err
		}
		drafts = append(drafts, Draft{
			UserID:  snap.OrganizerID,
			Type:    notification.TypeSuccess,
			Title:   "Group buy is full",
			Message: fmt.Sprintf("\"%s\" reached %d participants.", snap.Title, snap.MaxParticipants),
			Link:    link,
		})
		drafts = append(drafts, broadcast(participants, notification.TypeSuccess, "Group buy is full",
			fmt.Sprintf("\"%s\" is full and will be settled shortly.", snap.Title), link)...)

	case *groupbuy.SettledEvent:
		drafts = append(drafts, Draft{
			UserID:  snap.OrganizerID,
			Type:    notification.TypeOrder,
			Title:   "Payout received",
			Message: fmt.Sprintf("\"%s\" settled. %s was added to your wallet.", snap.Title, e.Payout.StringFixed(2)),
			Link:    "/wallet",
		})
		drafts = append(drafts, broadcast(e.ParticipantUserIDs, notification.TypeOrder, "Group buy completed",
			fmt.Sprintf("\"%s\" is complete. Collect your goods at the pickup location.", snap.Title), link)...)

	case *groupbuy.ExpiredEvent:
		participants, err := h.participantUserIDs(ctx, snap.GroupBuyID,
			groupbuy.ParticipantStatusPending, groupbuy.ParticipantStatusConfirmed, groupbuy.ParticipantStatusRefunded)
		if err != nil {
			return err
		}
		drafts = append(drafts, broadcast(participants, notification.TypeWarning, "Group buy expired",
			fmt.Sprintf("\"%s\" did not reach %d participants. Your payment will be refunded.", snap.Title, e.MinParticipants), link)...)

	case *groupbuy.RefundedEvent:
		drafts = append(drafts, refundDrafts(e.Refunds, "Payment refunded",
			fmt.Sprintf("Your payment for \"%s\" was returned to your wallet.", snap.Title))...)

	case *groupbuy.CancelledEvent:
		drafts = append(drafts, refundDrafts(e.Refunds, "Group buy cancelled",
			fmt.Sprintf("The organizer cancelled \"%s\". Your payment was returned to your wallet.", snap.Title))...)
	}

	if err := h.notifications.Notify(ctx, drafts...); err != nil {
		h.logger.Error("Failed to create lifecycle notifications",
			zap.String("group_buy_id", snap.GroupBuyID.String()),
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (h *LifecycleHandler) participantUserIDs(ctx context.Context, groupBuyID uuid.UUID, statuses ...groupbuy.ParticipantStatus) ([]uuid.UUID, error) {
	participants, err := h.participantRepo.FindByGroupBuy(ctx, groupBuyID, statuses...)
	if err != nil {
		return nil, fmt.Errorf("load participants: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(participants))
	seen := make(map[uuid.UUID]bool, len(participants))
	for _, p := range participants {
		if !seen[p.UserID] {
			seen[p.UserID] = true
			ids = append(ids, p.UserID)
		}
	}
	return ids, nil
}

func broadcast(userIDs []uuid.UUID, typ notification.Type, title, message, link string) []Draft {
	drafts := make([]Draft, len(userIDs))
	for i, id := range userIDs {
		drafts[i] = Draft{UserID: id, Type: typ, Title: title, Message: message, Link: link}
	}
	return drafts
}

func refundDrafts(refunds []groupbuy.Refund, title, message string) []Draft {
	drafts := make([]Draft, len(refunds))
	for i, r := range refunds {
		drafts[i] = Draft{
			UserID:  r.UserID,
			Type:    notification.TypeWarning,
			Title:   title,
			Message: fmt.Sprintf("%s Amount: %s.", message, r.Amount.StringFixed(2)),
			Link:    "/wallet",
		}
	}
	return drafts
}

func groupBuyLink(id uuid.UUID) string {
	return "/group-buys/" + id.String()
}

// ChatMessageHandler tells the organizer about messages from other people
type ChatMessageHandler struct {
	notifications *NotificationService
	groupBuyRepo  groupbuy.GroupBuyRepository
	logger        *zap.Logger
}

// NewChatMessageHandler creates a new ChatMessageHandler
func NewChatMessageHandler(notifications *NotificationService, groupBuyRepo groupbuy.GroupBuyRepository, logger *zap.Logger) *ChatMessageHandler {
	return &ChatMessageHandler{notifications: notifications, groupBuyRepo: groupBuyRepo, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *ChatMessageHandler) EventTypes() []string {
	return []string{chat.EventTypeMessageSent}
}

// Handle notifies the organizer unless the organizer wrote the message or it is a system notice
func (h *ChatMessageHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	sent, ok := event.(*chat.MessageSentEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s", chat.EventTypeMessageSent, event.EventType())
	}
	if sent.SenderID == nil {
		return nil
	}
	g, err := h.groupBuyRepo.FindByID(ctx, sent.GroupBuyID)
	if err != nil {
		return fmt.Errorf("load group buy: %w", err)
	}
	if g.OrganizerID == *sent.SenderID {
		return nil
	}
	return h.notifications.Notify(ctx, Draft{
		UserID:  g.OrganizerID,
		Type:    notification.TypeChat,
		Title:   "New message",
		Message: fmt.Sprintf("New message in \"%s\": %s", g.Title, preview(sent.Content)),
		Link:    groupBuyLink(g.ID) + "/chat",
	})
}

const previewLength = 80

func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLength {
		return content
	}
	return string(runes[:previewLength]) + "..."
}

var (
	_ shared.EventHandler = (*LifecycleHandler)(nil)
	_ shared.EventHandler = (*ChatMessageHandler)(nil)
)
