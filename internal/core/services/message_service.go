package services

import (
	"context"
	"errors"
	"strings"

	"lifelink-api/internal/adapters/persistence/models"
	"lifelink-api/internal/adapters/persistence/repositories"
	"lifelink-api/internal/core/domain"

	"gorm.io/gorm"
)

// MessageService handles donor–patient messaging business logic
type MessageService struct {
	messageRepo repositories.MessageRepository
	userRepo    repositories.UserRepository
	notify      *NotificationService
	feed        *ChangeFeed
}

// NewMessageService creates a new message service
func NewMessageService(
	messageRepo repositories.MessageRepository,
	userRepo repositories.UserRepository,
	notify *NotificationService,
	feed *ChangeFeed,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		notify:      notify,
		feed:        feed,
	}
}

// SendMessageInput represents send message input
type SendMessageInput struct {
	ReceiverID uint   `json:"receiver_id" validate:"required"`
	Body       string `json:"body" validate:"required"`
	RequestID  *uint  `json:"request_id,omitempty"`
}

// Send appends a message to the sender/receiver conversation. The store is
// append-only; the notification afterwards is fire-and-forget.
func (s *MessageService) Send(ctx context.Context, senderID uint, input *SendMessageInput) (*models.Message, error) {
	if strings.TrimSpace(input.Body) == "" {
		return nil, domain.ErrEmptyMessage
	}

	sender, err := s.userRepo.GetByID(ctx, senderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	if _, err := s.userRepo.GetByID(ctx, input.ReceiverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	message := &models.Message{
		SenderID:   senderID,
		ReceiverID: input.ReceiverID,
		RequestID:  input.RequestID,
		Body:       input.Body,
	}

	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	s.feed.Publish(CollectionMessages, message.ID, "created")

	go s.notify.NotifyNewMessage(sender.FullName, input.ReceiverID)

	return message, nil
}

// Conversation returns the full thread between the user and a partner,
// oldest first, and marks the partner's messages as read
func (s *MessageService) Conversation(ctx context.Context, userID, partnerID uint) ([]*models.Message, error) {
	if _, err := s.userRepo.GetByID(ctx, partnerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	messages, err := s.messageRepo.Conversation(ctx, userID, partnerID)
	if err != nil {
		return nil, err
	}

	if err := s.messageRepo.MarkRead(ctx, userID, partnerID); err != nil {
		return nil, err
	}

	return messages, nil
}

// CountUnread returns how many unread messages the user has across all
// conversations
func (s *MessageService) CountUnread(ctx context.Context, userID uint) (int64, error) {
	return s.messageRepo.CountUnread(ctx, userID)
}
