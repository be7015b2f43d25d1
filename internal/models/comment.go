package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is a single board entry. A nil ParentCommentID marks a
// top-level comment; replies point at their parent and may nest to
// any depth. Reply trees are assembled in memory, not via the ORM.
type Comment struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"type:uuid;not null;index" json:"userId"`
	User   User   `gorm:"foreignKey:UserID" json:"user,omitempty"`

	ParentCommentID *string `gorm:"type:uuid;index" json:"parentCommentId,omitempty"`

	// Sanitized HTML, safe to render as-is
	Text string `gorm:"type:text;not null" json:"text"`

	ImagePath    *string `gorm:"type:text" json:"imagePath,omitempty"`
	TextFilePath *string `gorm:"type:text" json:"textFilePath,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

// IsTopLevel reports whether the comment starts a thread
func (c *Comment) IsTopLevel() bool {
	return c.ParentCommentID == nil
}

// BeforeCreate assigns a UUID primary key
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
