package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"chorus/social-service/models"
)

// PostStore is the gorm-backed services.PostStore.
type PostStore struct {
	db *gorm.DB
}

func NewPostStore(db *gorm.DB) *PostStore {
	return &PostStore{db: db}
}

func (s *PostStore) Create(ctx context.Context, post *models.Post) error {
	return s.db.WithContext(ctx).Create(post).Error
}

func (s *PostStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).
		Preload("Replies", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&post, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (s *PostStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Reply{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, "id = ?", id).Error
	})
}

func (s *PostStore) SetLike(ctx context.Context, postID uuid.UUID, userID string, like bool) error {
	expr := gorm.Expr("array_remove(likes, ?)", userID)
	if like {
		expr = gorm.Expr("array_append(array_remove(likes, ?), ?)", userID, userID)
	}
	return s.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", postID).Update("likes", expr).Error
}

func (s *PostStore) AddReply(ctx context.Context, reply *models.Reply) error {
	return s.db.WithContext(ctx).Create(reply).Error
}

// ListByAuthors returns posts by any of the given authors, newest first.
func (s *PostStore) ListByAuthors(ctx context.Context, authorIDs []string) ([]models.Post, error) {
	posts := []models.Post{}
	err := s.db.WithContext(ctx).
		Preload("Replies").
		Where("posted_by::text = ANY(?)", pq.StringArray(authorIDs)).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}
