package model

// Column is a board bucket. Priority defines left-to-right order.
type Column struct {
	ID       uint   `gorm:"primaryKey"`
	Title    string `gorm:"not null"`
	Priority int    `gorm:"not null"`
}
