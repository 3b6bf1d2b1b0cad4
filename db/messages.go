package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"chorus/social-service/models"
)

// MessageStore is the gorm-backed services.MessageStore.
type MessageStore struct {
	db *gorm.DB
}

func NewMessageStore(db *gorm.DB) *MessageStore {
	return &MessageStore{db: db}
}

// FindConversation returns the conversation between the two users.
func (s *MessageStore) FindConversation(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	var conv models.Conversation
	err := s.db.WithContext(ctx).Where("pair_key = ?", models.ConversationKey(userA, userB)).First(&conv).Error
	if err != nil {
		return nil, translate(err)
	}
	return &conv, nil
}

// AppendMessage upserts the conversation, inserts the message and updates
// the preview in a single transaction. The unique pair key makes concurrent
// first messages in both directions land in the same conversation.
func (s *MessageStore) AppendMessage(ctx context.Context, senderID, recipientID uuid.UUID, text string) (*models.Message, error) {
	var msg *models.Message
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		key := models.ConversationKey(senderID.String(), recipientID.String())

		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pair_key"}},
			DoNothing: true,
		}).Create(&models.Conversation{
			Participants: pq.StringArray{senderID.String(), recipientID.String()},
			PairKey:      key,
		}).Error
		if err != nil {
			return fmt.Errorf("upsert conversation: %w", err)
		}

		var conv models.Conversation
		if err := tx.Where("pair_key = ?", key).First(&conv).Error; err != nil {
			return fmt.Errorf("load conversation: %w", err)
		}

		err = tx.Model(&conv).Updates(map[string]any{
			"last_message_text":   text,
			"last_message_sender": senderID.String(),
		}).Error
		if err != nil {
			return fmt.Errorf("update conversation: %w", err)
		}

		msg = &models.Message{
			ConversationID: conv.ID,
			Sender:         senderID,
			Text:           text,
		}
		if err := tx.Create(msg).Error; err != nil {
			return fmt.Errorf("create message: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *MessageStore) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error) {
	msgs := []models.Message{}
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

func (s *MessageStore) ListConversations(ctx context.Context, userID string) ([]models.Conversation, error) {
	convs := []models.Conversation{}
	err := s.db.WithContext(ctx).
		Where("? = ANY(participants)", userID).
		Order("updated_at DESC").
		Find(&convs).Error
	if err != nil {
		return nil, err
	}
	return convs, nil
}
