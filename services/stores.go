package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"chorus/social-service/models"
)

// ErrNotFound is returned by stores when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// UserStore persists user accounts and the follow graph.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
	SetFollow(ctx context.Context, followerID, targetID uuid.UUID, follow bool) error
	GetMany(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
}

// PostStore persists posts, likes and replies.
type PostStore interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetLike(ctx context.Context, postID uuid.UUID, userID string, like bool) error
	AddReply(ctx context.Context, reply *models.Reply) error
	ListByAuthors(ctx context.Context, authorIDs []string) ([]models.Post, error)
}

// MessageStore persists conversations and their messages.
type MessageStore interface {
	FindConversation(ctx context.Context, userA, userB string) (*models.Conversation, error)
	// AppendMessage finds or creates the conversation between sender and
	// recipient, stores the message and updates the conversation preview as
	// one unit.
	AppendMessage(ctx context.Context, senderID, recipientID uuid.UUID, text string) (*models.Message, error)
	ListMessages(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error)
	ListConversations(ctx context.Context, userID string) ([]models.Conversation, error)
}

// Pusher delivers realtime events to online users.
type Pusher interface {
	PushToUser(userID, event string, payload any) bool
}
