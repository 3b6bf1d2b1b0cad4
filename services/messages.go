package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"chorus/social-service/models"
	"chorus/social-service/utils"
)

// MessageService handles direct messages and their realtime delivery.
type MessageService struct {
	messages MessageStore
	users    UserStore
	pusher   Pusher
	logger   *utils.Logger
}

func NewMessageService(messages MessageStore, users UserStore, pusher Pusher, logger *utils.Logger) *MessageService {
	return &MessageService{
		messages: messages,
		users:    users,
		pusher:   pusher,
		logger:   logger.With("component", "MessageService"),
	}
}

// Send stores the message and pushes it to the recipient if online. The
// message is durable whether or not the push succeeds.
func (s *MessageService) Send(ctx context.Context, current *models.User, req models.SendMessageRequest) (*models.Message, error) {
	if strings.TrimSpace(req.Message) == "" || req.RecipientID == "" {
		return nil, utils.Validation("message and recipientId are required")
	}
	recipient, err := uuid.Parse(req.RecipientID)
	if err != nil {
		return nil, utils.Validation("invalid recipientId")
	}
	if recipient == current.ID {
		return nil, utils.Validation("you cannot message yourself")
	}
	if _, err := s.users.GetByID(ctx, recipient); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, utils.NotFound("recipient not found")
		}
		return nil, utils.Unexpected("failed to load recipient", err)
	}

	msg, err := s.messages.AppendMessage(ctx, current.ID, recipient, req.Message)
	if err != nil {
		return nil, utils.Unexpected("failed to send message", err)
	}

	delivered := s.pusher.PushToUser(recipient.String(), models.EventNewMessage, msg)
	s.logger.Debug("Message sent", "message_id", msg.ID, "recipient", recipient, "delivered", delivered)
	return msg, nil
}

// History returns the messages exchanged with otherUserID, oldest first.
func (s *MessageService) History(ctx context.Context, current *models.User, otherUserID string) ([]models.Message, error) {
	conv, err := s.messages.FindConversation(ctx, current.ID.String(), otherUserID)
	if errors.Is(err, ErrNotFound) {
		return nil, utils.NotFound("conversation not found")
	}
	if err != nil {
		return nil, utils.Unexpected("failed to load conversation", err)
	}

	msgs, err := s.messages.ListMessages(ctx, conv.ID)
	if err != nil {
		return nil, utils.Unexpected("failed to load messages", err)
	}
	return msgs, nil
}

// Conversations lists the caller's conversations with the other participants
// resolved to username and picture.
func (s *MessageService) Conversations(ctx context.Context, current *models.User) ([]models.ConversationView, error) {
	convs, err := s.messages.ListConversations(ctx, current.ID.String())
	if err != nil {
		return nil, utils.Unexpected("failed to load conversations", err)
	}

	self := current.ID.String()
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	for _, c := range convs {
		for _, p := range c.Participants {
			id, err := uuid.Parse(p)
			if err != nil || p == self {
				continue
			}
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	byID := make(map[string]models.User, len(ids))
	if len(ids) > 0 {
		users, err := s.users.GetMany(ctx, ids)
		if err != nil {
			return nil, utils.Unexpected("failed to load participants", err)
		}
		for _, u := range users {
			byID[u.ID.String()] = u
		}
	}

	views := make([]models.ConversationView, 0, len(convs))
	for _, c := range convs {
		view := models.ConversationView{
			ID:           c.ID,
			LastMessage:  c.LastMessage,
			UpdatedAt:    c.UpdatedAt,
			Participants: []models.Participant{},
		}
		for _, p := range c.Participants {
			if p == self {
				continue
			}
			if u, ok := byID[p]; ok {
				view.Participants = append(view.Participants, models.Participant{
					ID:         u.ID,
					Username:   u.Username,
					ProfilePic: u.ProfilePic,
				})
			}
		}
		views = append(views, view)
	}
	return views, nil
}
