package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment has no updated_at; comments cannot be edited.
type Comment struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	PostID    string    `gorm:"type:varchar(36);not null;index"`
	AuthorID  string    `gorm:"type:varchar(36);not null;index"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null;index"`

	Author *User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// UnknownAuthor is shown when a comment's author cannot be resolved.
const UnknownAuthor = "Unknown"

type CommentView struct {
	ID           string
	PostID       string
	AuthorID     string
	AuthorLogin  string
	AuthorAvatar *string
	Content      string
	CreatedAt    time.Time
}
