package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// LastMessage is the conversation preview.
type LastMessage struct {
	Text   string `json:"text"`
	Sender string `json:"sender"`
}

// Conversation groups the messages exchanged between two participants.
type Conversation struct {
	ID           uuid.UUID      `json:"_id" gorm:"type:uuid;primaryKey"`
	Participants pq.StringArray `json:"participants" gorm:"type:text[];not null"`
	PairKey      string         `json:"-" gorm:"size:80;uniqueIndex"`
	LastMessage  LastMessage    `json:"lastMessage" gorm:"embedded;embeddedPrefix:last_message_"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// ConversationKey identifies the conversation between two users regardless
// of who wrote first.
func ConversationKey(userA, userB string) string {
	if userB < userA {
		userA, userB = userB, userA
	}
	return userA + ":" + userB
}

func (Conversation) TableName() string {
	return "conversations"
}

func (c *Conversation) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Message is a single direct message.
type Message struct {
	ID             uuid.UUID `json:"_id" gorm:"type:uuid;primaryKey"`
	ConversationID uuid.UUID `json:"conversationId" gorm:"type:uuid;not null;index"`
	Sender         uuid.UUID `json:"sender" gorm:"type:uuid;not null"`
	Text           string    `json:"text"`
	Seen           bool      `json:"seen" gorm:"default:false"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (Message) TableName() string {
	return "messages"
}

func (m *Message) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// SendMessageRequest is the payload of POST /api/messages.
type SendMessageRequest struct {
	Message     string `json:"message"`
	RecipientID string `json:"recipientId"`
}

// Participant is the trimmed user shown in a conversation list.
type Participant struct {
	ID         uuid.UUID `json:"_id"`
	Username   string    `json:"username"`
	ProfilePic string    `json:"profilePic"`
}

// ConversationView is a conversation as returned to one of its participants:
// the caller is removed from Participants.
type ConversationView struct {
	ID           uuid.UUID     `json:"_id"`
	Participants []Participant `json:"participants"`
	LastMessage  LastMessage   `json:"lastMessage"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}
