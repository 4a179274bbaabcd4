package model

import (
	"time"
)

// Team scopes task visibility under the team policy.
type Team struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	Members []User `gorm:"many2many:team_members"`
}
