package models

import "time"

type Post struct {
	BaseModel
	AuthorID string  `gorm:"type:varchar(36);not null;index"`
	Title    string  `gorm:"type:varchar(255);not null"`
	Content  string  `gorm:"type:text;not null"`
	ImageURL *string `gorm:"type:varchar(512)"`

	Comments  []Comment    `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	Favorites []Favorite   `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	Ratings   []PostRating `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

// PostView is a post joined with its author and aggregates. Viewer fields
// are only filled when the query was made with a viewer.
type PostView struct {
	ID            string
	AuthorID      string
	AuthorLogin   string
	AuthorAvatar  *string
	Title         string
	Content       string
	ImageURL      *string
	Rating        int
	CommentsCount int
	IsFavorited   bool
	UserRating    *int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
