package model

type Label struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;not null"`

	Tasks  []Task `gorm:"many2many:task_labels"`
	Owners []User `gorm:"many2many:user_labels"`
}
