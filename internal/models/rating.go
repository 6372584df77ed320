package models

import "time"

const (
	RatingDown  = -1
	RatingClear = 0
	RatingUp    = 1
)

// PostRating stores only -1 or +1; clearing a rating deletes the row.
type PostRating struct {
	UserID    string    `gorm:"type:varchar(36);primaryKey"`
	PostID    string    `gorm:"type:varchar(36);primaryKey;index"`
	Value     int       `gorm:"type:smallint;not null;check:chk_post_ratings_value,value IN (-1, 1)"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (PostRating) TableName() string {
	return "post_ratings"
}

// IsValidRating reports whether v is an accepted input value.
func IsValidRating(v int) bool {
	return v == RatingDown || v == RatingClear || v == RatingUp
}
