package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// MaxPostLength bounds Post.Text.
const MaxPostLength = 300

// Post is a short text update, optionally with an image URL.
type Post struct {
	ID        uuid.UUID      `json:"_id" gorm:"type:uuid;primaryKey"`
	PostedBy  uuid.UUID      `json:"postedBy" gorm:"type:uuid;not null;index"`
	Text      string         `json:"text" gorm:"size:500"`
	Img       string         `json:"img"`
	Likes     pq.StringArray `json:"likes" gorm:"type:text[];default:'{}'"`
	Replies   []Reply        `json:"replies" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func (Post) TableName() string {
	return "posts"
}

func (p *Post) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// LikedBy reports whether userID is in the like list.
func (p *Post) LikedBy(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// Reply is a comment on a post. Author details are denormalized at write time.
type Reply struct {
	ID             uuid.UUID `json:"_id" gorm:"type:uuid;primaryKey"`
	PostID         uuid.UUID `json:"-" gorm:"type:uuid;not null;index"`
	UserID         uuid.UUID `json:"userId" gorm:"type:uuid;not null"`
	ReplyText      string    `json:"replyText" gorm:"not null"`
	UserProfilePic string    `json:"userProfilePic"`
	Username       string    `json:"username"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (Reply) TableName() string {
	return "post_replies"
}

func (r *Reply) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// CreatePostRequest is the payload of POST /api/posts/create.
type CreatePostRequest struct {
	PostedBy string `json:"postedBy"`
	Text     string `json:"text"`
	Img      string `json:"img"`
}

// ReplyRequest is the payload of PUT /api/posts/reply/:id.
type ReplyRequest struct {
	Text string `json:"text"`
}
