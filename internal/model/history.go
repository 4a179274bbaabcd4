package model

import (
	"time"
)

// TaskHistory is an append-only ledger row. Rows are never updated or deleted.
type TaskHistory struct {
	ID                uint      `gorm:"primaryKey"`
	TaskID            uint      `gorm:"not null;index"`
	ChangedByID       *uint     `gorm:"index"`
	ChangeDescription string    `gorm:"not null"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`

	ChangedBy *User `gorm:"foreignKey:ChangedByID"`
}
