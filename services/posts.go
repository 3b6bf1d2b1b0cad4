package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"chorus/social-service/models"
	"chorus/social-service/utils"
)

// PostService handles posts, likes, replies and the follow feed.
type PostService struct {
	posts  PostStore
	users  UserStore
	logger *utils.Logger
}

func NewPostService(posts PostStore, users UserStore, logger *utils.Logger) *PostService {
	return &PostService{
		posts:  posts,
		users:  users,
		logger: logger.With("component", "PostService"),
	}
}

// Create stores a post authored by the caller.
func (s *PostService) Create(ctx context.Context, current *models.User, req models.CreatePostRequest) (*models.Post, error) {
	if req.PostedBy == "" || strings.TrimSpace(req.Text) == "" {
		return nil, utils.Validation("postedBy and text are required")
	}
	author, err := uuid.Parse(req.PostedBy)
	if err != nil {
		return nil, utils.Validation("invalid postedBy")
	}
	if author != current.ID {
		return nil, utils.Forbidden("you can only post on your own profile")
	}
	if len([]rune(req.Text)) > models.MaxPostLength {
		return nil, utils.Validation(fmt.Sprintf("text must be less than %d characters", models.MaxPostLength))
	}

	post := &models.Post{
		PostedBy: author,
		Text:     req.Text,
		Img:      req.Img,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, utils.Unexpected("failed to create post", err)
	}
	return post, nil
}

func (s *PostService) Get(ctx context.Context, postID string) (*models.Post, error) {
	id, err := uuid.Parse(postID)
	if err != nil {
		return nil, utils.NotFound("post not found")
	}
	post, err := s.posts.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, utils.NotFound("post not found")
	}
	if err != nil {
		return nil, utils.Unexpected("failed to load post", err)
	}
	return post, nil
}

// Delete removes a post owned by the caller.
func (s *PostService) Delete(ctx context.Context, current *models.User, postID string) error {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return err
	}
	if post.PostedBy != current.ID {
		return utils.Forbidden("you can only delete your own posts")
	}
	if err := s.posts.Delete(ctx, post.ID); err != nil {
		return utils.Unexpected("failed to delete post", err)
	}
	return nil
}

// ToggleLike likes the post, or removes the like when present. It reports
// whether the caller now likes the post.
func (s *PostService) ToggleLike(ctx context.Context, current *models.User, postID string) (bool, error) {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return false, err
	}
	like := !post.LikedBy(current.ID.String())
	if err := s.posts.SetLike(ctx, post.ID, current.ID.String(), like); err != nil {
		return false, utils.Unexpected("failed to update like", err)
	}
	return like, nil
}

// Reply adds a comment to the post, denormalizing the caller's name and
// picture.
func (s *PostService) Reply(ctx context.Context, current *models.User, postID string, req models.ReplyRequest) (*models.Reply, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, utils.Validation("cannot send empty comment")
	}
	post, err := s.Get(ctx, postID)
	if err != nil {
		return nil, err
	}

	reply := &models.Reply{
		PostID:         post.ID,
		UserID:         current.ID,
		ReplyText:      req.Text,
		UserProfilePic: current.ProfilePic,
		Username:       current.Username,
	}
	if err := s.posts.AddReply(ctx, reply); err != nil {
		return nil, utils.Unexpected("failed to add reply", err)
	}
	return reply, nil
}

// ByUsername lists a user's posts, newest first.
func (s *PostService) ByUsername(ctx context.Context, username string) ([]models.Post, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return nil, utils.NotFound("user not found")
	}
	if err != nil {
		return nil, utils.Unexpected("failed to load user", err)
	}
	posts, err := s.posts.ListByAuthors(ctx, []string{user.ID.String()})
	if err != nil {
		return nil, utils.Unexpected("failed to load posts", err)
	}
	return posts, nil
}

// Feed lists posts by the users the caller follows, newest first.
func (s *PostService) Feed(ctx context.Context, current *models.User) ([]models.Post, error) {
	me, err := s.users.GetByID(ctx, current.ID)
	if errors.Is(err, ErrNotFound) {
		return nil, utils.NotFound("user not found")
	}
	if err != nil {
		return nil, utils.Unexpected("failed to load user", err)
	}
	if len(me.Following) == 0 {
		return []models.Post{}, nil
	}
	posts, err := s.posts.ListByAuthors(ctx, me.Following)
	if err != nil {
		return nil, utils.Unexpected("failed to load feed", err)
	}
	return posts, nil
}
