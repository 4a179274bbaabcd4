package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invitation ids travel in unauthenticated accept links, so they are random UUIDs.
type Invitation struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email       string    `gorm:"not null;index"`
	TeamID      uint      `gorm:"not null;index"`
	InvitedByID uint      `gorm:"not null"`
	Accepted    bool      `gorm:"not null;default:false"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`

	Team      Team `gorm:"foreignKey:TeamID"`
	InvitedBy User `gorm:"foreignKey:InvitedByID"`
}

func (i *Invitation) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
