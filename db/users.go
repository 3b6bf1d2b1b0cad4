package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"chorus/social-service/models"
)

// UserStore is the gorm-backed services.UserStore.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "username = ?", username).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// FindByUsernameOrEmail matches on whichever of the two arguments is
// non-empty.
func (s *UserStore) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	query := s.db.WithContext(ctx).Model(&models.User{})
	switch {
	case username != "" && email != "":
		query = query.Where("username = ? OR email = ?", username, email)
	case username != "":
		query = query.Where("username = ?", username)
	case email != "":
		query = query.Where("email = ?", email)
	default:
		return nil, translate(gorm.ErrRecordNotFound)
	}

	var user models.User
	if err := query.First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *UserStore) Save(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Save(user).Error
}

// SetFollow updates both sides of the follow edge in one transaction.
func (s *UserStore) SetFollow(ctx context.Context, followerID, targetID uuid.UUID, follow bool) error {
	// array_remove first keeps a repeated follow from duplicating the entry.
	appendExpr := "array_append(array_remove(%s, ?), ?)"
	removeExpr := "array_remove(%s, ?)"

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var followingExpr, followersExpr any
		if follow {
			followingExpr = gorm.Expr(fmt.Sprintf(appendExpr, "following"), targetID.String(), targetID.String())
			followersExpr = gorm.Expr(fmt.Sprintf(appendExpr, "followers"), followerID.String(), followerID.String())
		} else {
			followingExpr = gorm.Expr(fmt.Sprintf(removeExpr, "following"), targetID.String())
			followersExpr = gorm.Expr(fmt.Sprintf(removeExpr, "followers"), followerID.String())
		}

		if err := tx.Model(&models.User{}).Where("id = ?", followerID).
			Update("following", followingExpr).Error; err != nil {
			return fmt.Errorf("update following: %w", err)
		}
		if err := tx.Model(&models.User{}).Where("id = ?", targetID).
			Update("followers", followersExpr).Error; err != nil {
			return fmt.Errorf("update followers: %w", err)
		}
		return nil
	})
}

func (s *UserStore) GetMany(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
