package repositories

import (
	"context"

	"lifelink-api/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// messageRepository implements MessageRepository interface
type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create appends a new message
func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// Conversation gets both directions of a two-party thread, oldest first
func (r *messageRepository) Conversation(ctx context.Context, userID, partnerID uint) ([]*models.Message, error) {
	var messages []*models.Message
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, partnerID, partnerID, userID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

// MarkRead marks the partner's messages to the user as read
func (r *messageRepository) MarkRead(ctx context.Context, userID, partnerID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", partnerID, userID, false).
		Update("is_read", true).Error
}

// CountUnread counts unread messages addressed to the user
func (r *messageRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}
