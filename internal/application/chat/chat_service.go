// Package chat implements the per group buy conversation between organizer and participants.
package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/application/txscope"
	"github.com/groupbuy/backend/internal/domain/chat"
	"github.com/groupbuy/backend/internal/domain/groupbuy"
	"github.com/groupbuy/backend/internal/domain/identity"
	"github.com/groupbuy/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
)

// ChatService stores and lists group buy messages
type ChatService struct {
	messageRepo  chat.MessageRepository
	groupBuyRepo groupbuy.GroupBuyRepository
	profileRepo  identity.ProfileRepository
	txScope      txscope.TransactionScope
	logger       *zap.Logger
}

// NewChatService creates a new ChatService
func NewChatService(
	messageRepo chat.MessageRepository,
	groupBuyRepo groupbuy.GroupBuyRepository,
	profileRepo identity.ProfileRepository,
	txScope txscope.TransactionScope,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		messageRepo:  messageRepo,
		groupBuyRepo: groupBuyRepo,
		profileRepo:  profileRepo,
		txScope:      txScope,
		logger:       logger,
	}
}

// GetGroupBuyMessages returns messages oldest first with their senders.
// With since set only newer messages are returned, which is how clients catch up after reconnecting.
func (s *ChatService) GetGroupBuyMessages(ctx context.Context, groupBuyID uuid.UUID, since *time.Time, limit int) ([]MessageResponse, error) {
	if err := s.ensureGroupBuy(ctx, groupBuyID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	limit = min(limit, MaxHistoryLimit)

	messages, err := s.messageRepo.FindByGroupBuy(ctx, groupBuyID, since, limit)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(messages))
	for _, m := range messages {
		if m.SenderID != nil {
			ids = append(ids, *m.SenderID)
		}
	}
	senders, err := s.profileRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load senders: %w", err)
	}

	out := make([]MessageResponse, len(messages))
	for i, m := range messages {
		var sender *identity.Profile
		if m.SenderID != nil {
			sender = senders[*m.SenderID]
		}
		out[i] = ToMessageResponse(m, sender)
	}
	return out, nil
}

// SendMessage stores a user's message and announces it
func (s *ChatService) SendMessage(ctx context.Context, userID, groupBuyID uuid.UUID, input SendMessageInput) (*MessageResponse, error) {
	if err := s.ensureGroupBuy(ctx, groupBuyID); err != nil {
		return nil, err
	}
	sender, err := s.profileRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, identity.ErrProfileNotFound
		}
		return nil, err
	}

	m, err := chat.NewMessage(groupBuyID, userID, input.Content, chat.MessageType(input.MessageType))
	if err != nil {
		return nil, err
	}
	if err := s.store(ctx, m); err != nil {
		return nil, err
	}

	s.logger.Debug("Message sent",
		zap.String("group_buy_id", groupBuyID.String()),
		zap.String("sender_id", userID.String()),
	)
	resp := ToMessageResponse(m, sender)
	return &resp, nil
}

// PostSystemMessage stores a lifecycle notice in the conversation
func (s *ChatService) PostSystemMessage(ctx context.Context, groupBuyID uuid.UUID, content string) (*MessageResponse, error) {
	m, err := chat.NewSystemMessage(groupBuyID, content)
	if err != nil {
		return nil, err
	}
	if err := s.store(ctx, m); err != nil {
		return nil, err
	}
	resp := ToMessageResponse(m, nil)
	return &resp, nil
}

// Sender returns the profile behind a sender ID, or nil for system messages and unknown users
func (s *ChatService) Sender(ctx context.Context, senderID *uuid.UUID) *identity.Profile {
	if senderID == nil {
		return nil
	}
	p, err := s.profileRepo.FindByID(ctx, *senderID)
	if err != nil {
		return nil
	}
	return p
}

func (s *ChatService) store(ctx context.Context, m *chat.Message) error {
	return s.txScope.Execute(ctx, func(repos txscope.Repositories) error {
		if err := repos.Messages().Create(ctx, m); err != nil {
			return fmt.Errorf("store message: %w", err)
		}
		return repos.SaveEvents(ctx, chat.NewMessageSentEvent(m))
	})
}

func (s *ChatService) ensureGroupBuy(ctx context.Context, id uuid.UUID) error {
	exists, err := s.groupBuyRepo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return groupbuy.ErrNotFound
	}
	return nil
}
