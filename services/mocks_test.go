package services

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"chorus/social-service/models"
)

type mockUserStore struct {
	createFn                func(ctx context.Context, user *models.User) error
	getByIDFn               func(ctx context.Context, id uuid.UUID) (*models.User, error)
	getByUsernameFn         func(ctx context.Context, username string) (*models.User, error)
	findByUsernameOrEmailFn func(ctx context.Context, username, email string) (*models.User, error)
	saveFn                  func(ctx context.Context, user *models.User) error
	setFollowFn             func(ctx context.Context, followerID, targetID uuid.UUID, follow bool) error
	getManyFn               func(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
}

func (m *mockUserStore) Create(ctx context.Context, user *models.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	user.ID = uuid.New()
	return nil
}

func (m *mockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, ErrNotFound
}

func (m *mockUserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, ErrNotFound
}

func (m *mockUserStore) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	if m.findByUsernameOrEmailFn != nil {
		return m.findByUsernameOrEmailFn(ctx, username, email)
	}
	return nil, ErrNotFound
}

func (m *mockUserStore) Save(ctx context.Context, user *models.User) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, user)
	}
	return nil
}

func (m *mockUserStore) SetFollow(ctx context.Context, followerID, targetID uuid.UUID, follow bool) error {
	if m.setFollowFn != nil {
		return m.setFollowFn(ctx, followerID, targetID, follow)
	}
	return nil
}

func (m *mockUserStore) GetMany(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	if m.getManyFn != nil {
		return m.getManyFn(ctx, ids)
	}
	return nil, nil
}

// usersByID answers GetByID from a fixed set.
func usersByID(users ...*models.User) func(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return func(_ context.Context, id uuid.UUID) (*models.User, error) {
		for _, u := range users {
			if u.ID == id {
				cp := *u
				return &cp, nil
			}
		}
		return nil, ErrNotFound
	}
}

type mockPostStore struct {
	createFn        func(ctx context.Context, post *models.Post) error
	getByIDFn       func(ctx context.Context, id uuid.UUID) (*models.Post, error)
	deleteFn        func(ctx context.Context, id uuid.UUID) error
	setLikeFn       func(ctx context.Context, postID uuid.UUID, userID string, like bool) error
	addReplyFn      func(ctx context.Context, reply *models.Reply) error
	listByAuthorsFn func(ctx context.Context, authorIDs []string) ([]models.Post, error)
}

func (m *mockPostStore) Create(ctx context.Context, post *models.Post) error {
	if m.createFn != nil {
		return m.createFn(ctx, post)
	}
	post.ID = uuid.New()
	return nil
}

func (m *mockPostStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, ErrNotFound
}

func (m *mockPostStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockPostStore) SetLike(ctx context.Context, postID uuid.UUID, userID string, like bool) error {
	if m.setLikeFn != nil {
		return m.setLikeFn(ctx, postID, userID, like)
	}
	return nil
}

func (m *mockPostStore) AddReply(ctx context.Context, reply *models.Reply) error {
	if m.addReplyFn != nil {
		return m.addReplyFn(ctx, reply)
	}
	return nil
}

func (m *mockPostStore) ListByAuthors(ctx context.Context, authorIDs []string) ([]models.Post, error) {
	if m.listByAuthorsFn != nil {
		return m.listByAuthorsFn(ctx, authorIDs)
	}
	return []models.Post{}, nil
}

type mockMessageStore struct {
	findConversationFn  func(ctx context.Context, userA, userB string) (*models.Conversation, error)
	appendMessageFn     func(ctx context.Context, senderID, recipientID uuid.UUID, text string) (*models.Message, error)
	listMessagesFn      func(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error)
	listConversationsFn func(ctx context.Context, userID string) ([]models.Conversation, error)
}

func (m *mockMessageStore) FindConversation(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	if m.findConversationFn != nil {
		return m.findConversationFn(ctx, userA, userB)
	}
	return nil, ErrNotFound
}

func (m *mockMessageStore) AppendMessage(ctx context.Context, senderID, recipientID uuid.UUID, text string) (*models.Message, error) {
	if m.appendMessageFn != nil {
		return m.appendMessageFn(ctx, senderID, recipientID, text)
	}
	return &models.Message{ID: uuid.New(), Sender: senderID, Text: text}, nil
}

func (m *mockMessageStore) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error) {
	if m.listMessagesFn != nil {
		return m.listMessagesFn(ctx, conversationID)
	}
	return []models.Message{}, nil
}

func (m *mockMessageStore) ListConversations(ctx context.Context, userID string) ([]models.Conversation, error) {
	if m.listConversationsFn != nil {
		return m.listConversationsFn(ctx, userID)
	}
	return []models.Conversation{}, nil
}

type pushCall struct {
	UserID  string
	Event   string
	Payload any
}

type recordingPusher struct {
	mu     sync.Mutex
	online map[string]bool
	calls  []pushCall
}

func (p *recordingPusher) PushToUser(userID, event string, payload any) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, pushCall{UserID: userID, Event: event, Payload: payload})
	return p.online[userID]
}
