package model

import (
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists the accepted values with their display labels, in order.
var Priorities = []struct {
	Value Priority
	Label string
}{
	{PriorityLow, "Low"},
	{PriorityMedium, "Medium"},
	{PriorityHigh, "High"},
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task belongs to at most one column and one team. Reporter is fixed at creation.
type Task struct {
	ID          uint       `gorm:"primaryKey"`
	Name        string     `gorm:"not null"`
	Description string     `gorm:"type:text;not null;default:''"`
	Priority    Priority   `gorm:"type:text;not null"`
	StartDate   *time.Time `gorm:"type:date"`
	EndDate     *time.Time `gorm:"type:date"`
	Order       int        `gorm:"not null;default:0"`
	ColumnID    *uint      `gorm:"index"`
	TeamID      *uint      `gorm:"index"`
	ReporterID  uint       `gorm:"not null;index"`
	CreatedAt   time.Time  `gorm:"autoCreateTime"`

	Column    *Column       `gorm:"foreignKey:ColumnID;constraint:OnDelete:SET NULL"`
	Team      *Team         `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE"`
	Reporter  User          `gorm:"foreignKey:ReporterID"`
	Assignees []User        `gorm:"many2many:task_assignees"`
	Labels    []Label       `gorm:"many2many:task_labels"`
	Comments  []Comment     `gorm:"foreignKey:TaskID"`
	History   []TaskHistory `gorm:"foreignKey:TaskID"`
}

// AssigneeIDs returns the ids of the loaded assignees.
func (t *Task) AssigneeIDs() []uint {
	ids := make([]uint, 0, len(t.Assignees))
	for _, u := range t.Assignees {
		ids = append(ids, u.ID)
	}
	return ids
}
