package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gaelxxl34/alsabil-service/internal/domain"
	"github.com/gaelxxl34/alsabil-service/internal/repository"
)

type ConversationStore interface {
	Put(ctx context.Context, conv *domain.Conversation) error
	Get(ctx context.Context, id string) (*domain.Conversation, error)
	ListByParticipant(ctx context.Context, userID string) ([]domain.Conversation, error)
	AppendMessage(ctx context.Context, msg *domain.Message) error
	ListMessages(ctx context.Context, conversationID string) ([]domain.Message, error)
}

type ConversationService struct {
	convs  ConversationStore
	users  UserStore
	logger *zap.Logger
}

func NewConversationService(convs ConversationStore, users UserStore, logger *zap.Logger) *ConversationService {
	return &ConversationService{
		convs:  convs,
		users:  users,
		logger: logger,
	}
}

// CreateConversation starts a conversation between the caller and the given
// participants. The caller is always a participant; unread counters start
// at zero for everyone, keyed only by participant ids.
func (s *ConversationService) CreateConversation(ctx context.Context, ident domain.Identity, req domain.CreateConversationRequest) (*domain.Conversation, error) {
	participants := req.Participants
	if !contains(participants, ident.UserID) {
		participants = append([]string{ident.UserID}, participants...)
	}

	roles := make(map[string]domain.Role, len(participants))
	unread := make(map[string]int, len(participants))
	for _, p := range participants {
		user, err := s.users.Get(ctx, p)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return nil, domain.ValidationError("unknown participant " + p)
			}
			return nil, err
		}
		roles[p] = user.Role
		unread[p] = 0
	}

	now := time.Now().UTC()
	conv := &domain.Conversation{
		ID:               uuid.New().String(),
		Participants:     participants,
		ParticipantRoles: roles,
		UnreadCount:      unread,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.convs.Put(ctx, conv); err != nil {
		s.logger.Error("failed to save conversation", zap.Error(err))
		return nil, err
	}

	return conv, nil
}

func (s *ConversationService) ListConversations(ctx context.Context, ident domain.Identity) ([]domain.Conversation, error) {
	convs, err := s.convs.ListByParticipant(ctx, ident.UserID)
	if err != nil {
		return nil, err
	}

	// Most recently active first.
	for i := 1; i < len(convs); i++ {
		for j := i; j > 0 && convs[j].UpdatedAt.After(convs[j-1].UpdatedAt); j-- {
			convs[j], convs[j-1] = convs[j-1], convs[j]
		}
	}
	return convs, nil
}

func (s *ConversationService) getForParticipant(ctx context.Context, ident domain.Identity, id string) (*domain.Conversation, error) {
	conv, err := s.convs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if !conv.HasParticipant(ident.UserID) {
		return nil, domain.ForbiddenError("not a participant in this conversation")
	}
	return conv, nil
}

// ListMessages returns the conversation's messages in order and marks the
// conversation read for the caller.
func (s *ConversationService) ListMessages(ctx context.Context, ident domain.Identity, id string) ([]domain.Message, error) {
	conv, err := s.getForParticipant(ctx, ident, id)
	if err != nil {
		return nil, err
	}

	msgs, err := s.convs.ListMessages(ctx, id)
	if err != nil {
		return nil, err
	}

	if conv.UnreadCount[ident.UserID] != 0 {
		conv.UnreadCount[ident.UserID] = 0
		if err := s.convs.Put(ctx, conv); err != nil {
			// Reads still succeed when the counter reset fails.
			s.logger.Warn("failed to reset unread counter",
				zap.String("conversation_id", id),
				zap.Error(err))
		}
	}

	return msgs, nil
}

// SendMessage appends a message, refreshes the denormalized lastMessage and
// bumps every other participant's unread counter. Counter keys are rebuilt
// from the participant list so they stay a subset of it.
func (s *ConversationService) SendMessage(ctx context.Context, ident domain.Identity, id string, req domain.SendMessageRequest) (*domain.Message, error) {
	conv, err := s.getForParticipant(ctx, ident, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	msg := &domain.Message{
		ID:             uuid.New().String(),
		ConversationID: conv.ID,
		SenderID:       ident.UserID,
		Content:        req.Content,
		CreatedAt:      now,
	}

	if err := s.convs.AppendMessage(ctx, msg); err != nil {
		s.logger.Error("failed to save message",
			zap.String("conversation_id", conv.ID),
			zap.Error(err))
		return nil, err
	}

	unread := make(map[string]int, len(conv.Participants))
	for _, p := range conv.Participants {
		if p == ident.UserID {
			unread[p] = 0
			continue
		}
		unread[p] = conv.UnreadCount[p] + 1
	}
	conv.UnreadCount = unread
	conv.LastMessage = &domain.MessagePreview{
		Content:  msg.Content,
		SenderID: msg.SenderID,
		At:       now,
	}
	conv.UpdatedAt = now

	if err := s.convs.Put(ctx, conv); err != nil {
		s.logger.Error("failed to update conversation",
			zap.String("conversation_id", conv.ID),
			zap.Error(err))
		return nil, err
	}

	return msg, nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
