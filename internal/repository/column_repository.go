package repository

import (
	"context"
	"errors"

	"taskboard/internal/model"

	"gorm.io/gorm"
)

type ColumnRepository struct {
	db *gorm.DB
}

func NewColumnRepository(db *gorm.DB) *ColumnRepository {
	return &ColumnRepository{db: db}
}

func (r *ColumnRepository) Create(ctx context.Context, column *model.Column) error {
	return conn(ctx, r.db).Create(column).Error
}

func (r *ColumnRepository) GetByID(ctx context.Context, id uint) (*model.Column, error) {
	var column model.Column
	if err := conn(ctx, r.db).Where("id = ?", id).First(&column).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrColumnNotFound
		}
		return nil, err
	}
	return &column, nil
}

// ListOrdered returns all columns in board order: priority, then id.
func (r *ColumnRepository) ListOrdered(ctx context.Context) ([]model.Column, error) {
	var columns []model.Column
	err := conn(ctx, r.db).Order("priority").Order("id").Find(&columns).Error
	return columns, err
}

// First returns the leftmost column, or nil when no columns exist.
func (r *ColumnRepository) First(ctx context.Context) (*model.Column, error) {
	var column model.Column
	err := conn(ctx, r.db).Order("priority").Order("id").First(&column).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &column, nil
}

func (r *ColumnRepository) Update(ctx context.Context, column *model.Column) error {
	result := conn(ctx, r.db).Save(column)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrColumnNotFound
	}
	return nil
}

// Delete removes the column. Its tasks stay and lose their column.
func (r *ColumnRepository) Delete(ctx context.Context, id uint) error {
	return inTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Model(&model.Task{}).Where("column_id = ?", id).
			Update("column_id", nil).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.Column{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrColumnNotFound
		}
		return nil
	})
}
