package handlers

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"chorus/social-service/models"
	"chorus/social-service/services"
)

// memStore is an in-memory implementation of the three store interfaces,
// enough to drive handlers end to end.
type memStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*models.User
	posts    map[uuid.UUID]*models.Post
	convs    map[uuid.UUID]*models.Conversation
	messages []models.Message
}

func newMemStore() *memStore {
	return &memStore{
		users: make(map[uuid.UUID]*models.User),
		posts: make(map[uuid.UUID]*models.Post),
		convs: make(map[uuid.UUID]*models.Conversation),
	}
}

type memUsers struct{ *memStore }
type memPosts struct{ *memStore }
type memMessages struct{ *memStore }

func (s memUsers) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s memUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s memUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, services.ErrNotFound
}

func (s memUsers) FindByUsernameOrEmail(_ context.Context, username, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, services.ErrNotFound
}

func (s memUsers) Save(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s memUsers) SetFollow(_ context.Context, followerID, targetID uuid.UUID, follow bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	follower, target := s.users[followerID], s.users[targetID]
	follower.Following = without(follower.Following, targetID.String())
	target.Followers = without(target.Followers, followerID.String())
	if follow {
		follower.Following = append(follower.Following, targetID.String())
		target.Followers = append(target.Followers, followerID.String())
	}
	return nil
}

func (s memUsers) GetMany(_ context.Context, ids []uuid.UUID) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s memPosts) Create(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	post.ID = uuid.New()
	post.CreatedAt = time.Now()
	cp := *post
	s.posts[post.ID] = &cp
	return nil
}

func (s memPosts) GetByID(_ context.Context, id uuid.UUID) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s memPosts) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.posts, id)
	return nil
}

func (s memPosts) SetLike(_ context.Context, postID uuid.UUID, userID string, like bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.posts[postID]
	p.Likes = without(p.Likes, userID)
	if like {
		p.Likes = append(p.Likes, userID)
	}
	return nil
}

func (s memPosts) AddReply(_ context.Context, reply *models.Reply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reply.ID = uuid.New()
	p := s.posts[reply.PostID]
	p.Replies = append(p.Replies, *reply)
	return nil
}

func (s memPosts) ListByAuthors(_ context.Context, authorIDs []string) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Post{}
	for _, p := range s.posts {
		for _, id := range authorIDs {
			if p.PostedBy.String() == id {
				out = append(out, *p)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s memMessages) FindConversation(_ context.Context, userA, userB string) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.findLocked(userA, userB)
	if c == nil {
		return nil, services.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s memMessages) findLocked(userA, userB string) *models.Conversation {
	for _, c := range s.convs {
		if contains(c.Participants, userA) && contains(c.Participants, userB) {
			return c
		}
	}
	return nil
}

func (s memMessages) AppendMessage(_ context.Context, senderID, recipientID uuid.UUID, text string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.findLocked(senderID.String(), recipientID.String())
	if c == nil {
		c = &models.Conversation{
			ID:           uuid.New(),
			Participants: pq.StringArray{senderID.String(), recipientID.String()},
		}
		s.convs[c.ID] = c
	}
	c.LastMessage = models.LastMessage{Text: text, Sender: senderID.String()}
	c.UpdatedAt = time.Now()

	msg := models.Message{ID: uuid.New(), ConversationID: c.ID, Sender: senderID, Text: text, CreatedAt: time.Now()}
	s.messages = append(s.messages, msg)
	return &msg, nil
}

func (s memMessages) ListMessages(_ context.Context, conversationID uuid.UUID) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Message{}
	for _, m := range s.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s memMessages) ListConversations(_ context.Context, userID string) ([]models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Conversation{}
	for _, c := range s.convs {
		if contains(c.Participants, userID) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func without(list pq.StringArray, v string) pq.StringArray {
	out := pq.StringArray{}
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}
