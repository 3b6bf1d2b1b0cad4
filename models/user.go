package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// User is a registered account. Password holds the bcrypt hash and is never
// serialized.
type User struct {
	ID         uuid.UUID      `json:"_id" gorm:"type:uuid;primaryKey"`
	Name       string         `json:"name" gorm:"not null"`
	Username   string         `json:"username" gorm:"uniqueIndex;not null"`
	Email      string         `json:"email" gorm:"uniqueIndex;not null"`
	Password   string         `json:"-" gorm:"not null"`
	ProfilePic string         `json:"profilePic"`
	Bio        string         `json:"bio"`
	Followers  pq.StringArray `json:"followers" gorm:"type:text[];default:'{}'"`
	Following  pq.StringArray `json:"following" gorm:"type:text[];default:'{}'"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Sanitized returns a copy without credentials.
func (u User) Sanitized() User {
	u.Password = ""
	return u
}

// IsFollowing reports whether u follows the given user id.
func (u *User) IsFollowing(id uuid.UUID) bool {
	target := id.String()
	for _, f := range u.Following {
		if f == target {
			return true
		}
	}
	return false
}

// SignupRequest is the payload of POST /api/users/signup.
type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest is the payload of POST /api/users/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateUserRequest carries optional profile changes; empty fields are kept.
type UpdateUserRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	Bio        string `json:"bio"`
	ProfilePic string `json:"profilePic"`
}
