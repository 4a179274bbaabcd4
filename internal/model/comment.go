package model

import (
	"time"
)

type Comment struct {
	ID        uint      `gorm:"primaryKey"`
	TaskID    uint      `gorm:"not null;index"`
	AuthorID  *uint     `gorm:"index"`
	Content   string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	Author *User `gorm:"foreignKey:AuthorID"`
}
