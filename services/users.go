package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"chorus/social-service/models"
	"chorus/social-service/utils"
)

// UserService handles accounts, login and the follow graph.
type UserService struct {
	users  UserStore
	tokens *TokenCodec
	logger *utils.Logger
	cost   int
}

func NewUserService(users UserStore, tokens *TokenCodec, logger *utils.Logger) *UserService {
	return &UserService{
		users:  users,
		tokens: tokens,
		logger: logger.With("component", "UserService"),
		cost:   bcrypt.DefaultCost,
	}
}

// Signup creates the account and issues its first token.
func (s *UserService) Signup(ctx context.Context, req models.SignupRequest) (*models.User, string, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, "", utils.Validation("name, email, username and password are required")
	}

	existing, err := s.users.FindByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, "", utils.Unexpected("failed to look up user", err)
	}
	if existing != nil {
		return nil, "", utils.Validation("user already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, "", utils.Unexpected("failed to hash password", err)
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Username: req.Username,
		Password: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", utils.Unexpected("failed to create user", err)
	}

	token, err := s.tokens.Issue(user.ID.String())
	if err != nil {
		return nil, "", utils.Unexpected("failed to issue token", err)
	}

	s.logger.Info("User signed up", "user_id", user.ID)
	public := user.Sanitized()
	return &public, token, nil
}

// Login checks the password and issues a token.
func (s *UserService) Login(ctx context.Context, req models.LoginRequest) (*models.User, string, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if errors.Is(err, ErrNotFound) {
		return nil, "", utils.Validation("invalid username or password")
	}
	if err != nil {
		return nil, "", utils.Unexpected("failed to look up user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, "", utils.Validation("invalid username or password")
	}

	token, err := s.tokens.Issue(user.ID.String())
	if err != nil {
		return nil, "", utils.Unexpected("failed to issue token", err)
	}

	public := user.Sanitized()
	return &public, token, nil
}

// Lookup resolves a verified token subject to a user without credentials.
// It returns ErrNotFound when the account no longer exists.
func (s *UserService) Lookup(ctx context.Context, userID string) (*models.User, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrNotFound
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	public := user.Sanitized()
	return &public, nil
}

// GetProfile finds a user by id or username.
func (s *UserService) GetProfile(ctx context.Context, query string) (*models.User, error) {
	var (
		user *models.User
		err  error
	)
	if id, parseErr := uuid.Parse(query); parseErr == nil {
		user, err = s.users.GetByID(ctx, id)
	} else {
		user, err = s.users.GetByUsername(ctx, query)
	}
	if errors.Is(err, ErrNotFound) {
		return nil, utils.NotFound("user not found")
	}
	if err != nil {
		return nil, utils.Unexpected("failed to load profile", err)
	}

	public := user.Sanitized()
	return &public, nil
}

// ToggleFollow follows targetID, or unfollows it when already followed. It
// reports whether the caller now follows the target.
func (s *UserService) ToggleFollow(ctx context.Context, current *models.User, targetID string) (bool, error) {
	target, err := uuid.Parse(targetID)
	if err != nil {
		return false, utils.Validation("invalid user id")
	}
	if target == current.ID {
		return false, utils.Validation("you cannot follow/unfollow yourself")
	}

	if _, err := s.users.GetByID(ctx, target); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, utils.NotFound("user not found")
		}
		return false, utils.Unexpected("failed to load user", err)
	}

	// Re-read the caller; the session copy may be stale.
	me, err := s.users.GetByID(ctx, current.ID)
	if err != nil {
		return false, utils.Unexpected("failed to load user", err)
	}

	follow := !me.IsFollowing(target)
	if err := s.users.SetFollow(ctx, me.ID, target, follow); err != nil {
		return false, utils.Unexpected("failed to update follow", err)
	}
	return follow, nil
}

// Update applies the non-empty fields of req to the caller's profile. Only
// the caller's own profile may be changed.
func (s *UserService) Update(ctx context.Context, current *models.User, pathID string, req models.UpdateUserRequest) (*models.User, error) {
	if pathID != current.ID.String() {
		return nil, utils.Forbidden("you are not allowed to update other users")
	}

	user, err := s.users.GetByID(ctx, current.ID)
	if errors.Is(err, ErrNotFound) {
		return nil, utils.NotFound("user not found")
	}
	if err != nil {
		return nil, utils.Unexpected("failed to load user", err)
	}

	if req.Username != "" || req.Email != "" {
		other, err := s.users.FindByUsernameOrEmail(ctx, req.Username, strings.ToLower(req.Email))
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, utils.Unexpected("failed to look up user", err)
		}
		if other != nil && other.ID != user.ID {
			return nil, utils.Validation("username or email already taken")
		}
	}

	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
		if err != nil {
			return nil, utils.Unexpected("failed to hash password", err)
		}
		user.Password = string(hash)
	}

	user.Name = firstNonEmpty(req.Name, user.Name)
	user.Email = firstNonEmpty(strings.ToLower(req.Email), user.Email)
	user.Username = firstNonEmpty(req.Username, user.Username)
	user.Bio = firstNonEmpty(req.Bio, user.Bio)
	user.ProfilePic = firstNonEmpty(req.ProfilePic, user.ProfilePic)

	if err := s.users.Save(ctx, user); err != nil {
		return nil, utils.Unexpected("failed to save user", err)
	}

	public := user.Sanitized()
	return &public, nil
}

func firstNonEmpty(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
