package models

import "time"

// Tag, PostTag and Subscription are migrated but not exposed through any API yet.

type Tag struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"type:varchar(64);uniqueIndex;not null"`
}

type PostTag struct {
	PostID string `gorm:"type:varchar(36);primaryKey"`
	TagID  uint   `gorm:"primaryKey"`

	Post *Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	Tag  *Tag  `gorm:"foreignKey:TagID;constraint:OnDelete:CASCADE"`
}

type Subscription struct {
	FollowerID  string    `gorm:"type:varchar(36);primaryKey"`
	FollowingID string    `gorm:"type:varchar(36);primaryKey"`
	CreatedAt   time.Time `gorm:"not null"`

	Follower  *User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	Following *User `gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE"`
}
