package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a comment author, keyed by email. Authors are created lazily
// on their first comment and reused on every later one.
type User struct {
	ID       string  `gorm:"primaryKey;type:uuid" json:"id"`
	UserName string  `gorm:"not null" json:"userName"`
	Email    string  `gorm:"index;not null" json:"email"`
	HomePage *string `gorm:"type:text" json:"homePage,omitempty"`

	// Captured from the request that first created the author
	IPAddress string `gorm:"type:text" json:"-"`
	UserAgent string `gorm:"type:text" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
}

// BeforeCreate assigns a UUID primary key
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
