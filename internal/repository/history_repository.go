package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskboard/internal/model"
)

// HistoryRepository only inserts and reads; ledger rows are immutable.
type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) Append(ctx context.Context, entry *model.TaskHistory) error {
	return conn(ctx, r.db).Omit(clause.Associations).Create(entry).Error
}

func (r *HistoryRepository) ListByTask(ctx context.Context, taskID uint) ([]model.TaskHistory, error) {
	var entries []model.TaskHistory
	err := conn(ctx, r.db).Preload("ChangedBy").
		Where("task_id = ?", taskID).
		Order("id").
		Find(&entries).Error
	return entries, err
}
