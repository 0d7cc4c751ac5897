package model

import "gorm.io/gorm"

// User struct. Accounts are issued by the auth service; this service only
// reads identity and display fields for the chat roster.
type User struct {
	gorm.Model
	Username   string `gorm:"uniqueIndex;not null" json:"username"`
	Email      string `gorm:"uniqueIndex;not null" json:"email"`
	AvatarSeed string `json:"avatar_seed"`
}
