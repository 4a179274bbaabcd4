package model

import (
	"time"
)

type User struct {
	ID             uint      `gorm:"primaryKey"`
	Username       string    `gorm:"uniqueIndex;not null"`
	Email          string    `gorm:"uniqueIndex;not null"`
	HashedPassword string    `gorm:"not null"`
	FirstName      string    `gorm:"not null;default:''"`
	LastName       string    `gorm:"not null;default:''"`
	AvatarURL      string    `gorm:"not null;default:''"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`

	Teams  []Team  `gorm:"many2many:team_members"`
	Labels []Label `gorm:"many2many:user_labels"`
}
