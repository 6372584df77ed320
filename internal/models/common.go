package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel carries a string UUID so the same schema works on PostgreSQL,
// MySQL and SQLite.
type BaseModel struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// AllModels lists every table in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Post{},
		&Comment{},
		&Favorite{},
		&PostRating{},
		&Tag{},
		&PostTag{},
		&Subscription{},
	}
}
