package chat

import (
	"context"
	"fmt"

	"github.com/groupbuy/backend/internal/domain/chat"
	"github.com/groupbuy/backend/internal/domain/groupbuy"
	"github.com/groupbuy/backend/internal/domain/shared"
	"github.com/groupbuy/backend/internal/infrastructure/realtime"
	"go.uber.org/zap"
)

// LifecycleMessageHandler posts a system message into the conversation
// whenever the group buy changes state
type LifecycleMessageHandler struct {
	chat   *ChatService
	logger *zap.Logger
}

// NewLifecycleMessageHandler creates a new LifecycleMessageHandler
func NewLifecycleMessageHandler(chat *ChatService, logger *zap.Logger) *LifecycleMessageHandler {
	return &LifecycleMessageHandler{chat: chat, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *LifecycleMessageHandler) EventTypes() []string {
	return groupbuy.LifecycleEventTypes
}

// Handle posts the system message describing the transition
func (h *LifecycleMessageHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	lifecycle, ok := event.(groupbuy.LifecycleEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %s", event.EventType())
	}
	content := systemMessageFor(event)
	if content == "" {
		return nil
	}
	snap := lifecycle.GroupBuy()
	if _, err := h.chat.PostSystemMessage(ctx, snap.GroupBuyID, content); err != nil {
		h.logger.Error("Failed to post system message",
			zap.String("group_buy_id", snap.GroupBuyID.String()),
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func systemMessageFor(event shared.DomainEvent) string {
	switch e := event.(type) {
	case *groupbuy.JoinedEvent:
		return fmt.Sprintf("A new participant joined (%d/%d).", e.CurrentParticipants, e.MaxParticipants)
	case *groupbuy.ParticipationCancelledEvent:
		return fmt.Sprintf("A participant left (%d/%d).", e.CurrentParticipants, e.MaxParticipants)
	case *groupbuy.FullEvent:
		return "The group is full! Settlement is in progress."
	case *groupbuy.SettledEvent:
		return "Group buy completed. Please collect your goods at the pickup location."
	case *groupbuy.ExpiredEvent:
		return fmt.Sprintf("The deadline passed with %d of %d required participants. Payments will be refunded.",
			e.CurrentParticipants, e.MinParticipants)
	case *groupbuy.RefundedEvent:
		return "All payments have been refunded."
	case *groupbuy.CancelledEvent:
		return "The organizer cancelled this group buy. Payments have been refunded."
	}
	return ""
}

// Publisher pushes frames to realtime subscribers of a topic
type Publisher interface {
	Publish(ctx context.Context, topic, frameType string, data any) error
}

// MessageBroadcastHandler pushes every stored message to the group buy's chat subscribers
type MessageBroadcastHandler struct {
	chat      *ChatService
	publisher Publisher
	logger    *zap.Logger
}

// NewMessageBroadcastHandler creates a new MessageBroadcastHandler
func NewMessageBroadcastHandler(chat *ChatService, publisher Publisher, logger *zap.Logger) *MessageBroadcastHandler {
	return &MessageBroadcastHandler{chat: chat, publisher: publisher, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *MessageBroadcastHandler) EventTypes() []string {
	return []string{chat.EventTypeMessageSent}
}

// Handle publishes the message with its sender to the chat topic
func (h *MessageBroadcastHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	sent, ok := event.(*chat.MessageSentEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s", chat.EventTypeMessageSent, event.EventType())
	}
	m := &chat.Message{
		BaseEntity:  shared.BaseEntity{ID: sent.MessageID, CreatedAt: sent.SentAt, UpdatedAt: sent.SentAt},
		GroupBuyID:  sent.GroupBuyID,
		SenderID:    sent.SenderID,
		Content:     sent.Content,
		MessageType: sent.MessageType,
	}
	resp := ToMessageResponse(m, h.chat.Sender(ctx, sent.SenderID))
	if err := h.publisher.Publish(ctx, realtime.ChatTopic(sent.GroupBuyID), realtime.FrameMessage, resp); err != nil {
		return fmt.Errorf("broadcast message: %w", err)
	}
	return nil
}

var (
	_ shared.EventHandler = (*LifecycleMessageHandler)(nil)
	_ shared.EventHandler = (*MessageBroadcastHandler)(nil)
)
