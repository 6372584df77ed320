package models

type User struct {
	BaseModel
	Email        string  `gorm:"type:varchar(255);uniqueIndex;not null"`
	Login        string  `gorm:"type:varchar(64);uniqueIndex;not null"`
	PasswordHash string  `gorm:"not null"`
	AvatarURL    *string `gorm:"type:varchar(512)"`
	Bio          *string `gorm:"type:text"`

	Posts []Post `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

// UserProfileUpdate is a partial update; nil fields are left untouched.
type UserProfileUpdate struct {
	Email *string
	Login *string
	Bio   *string
}

func (u UserProfileUpdate) IsEmpty() bool {
	return u.Email == nil && u.Login == nil && u.Bio == nil
}
