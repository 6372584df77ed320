package models

import "time"

type Favorite struct {
	UserID    string    `gorm:"type:varchar(36);primaryKey"`
	PostID    string    `gorm:"type:varchar(36);primaryKey;index"`
	CreatedAt time.Time `gorm:"not null"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
