package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskboard/internal/model"
)

type LabelRepository struct {
	db *gorm.DB
}

func NewLabelRepository(db *gorm.DB) *LabelRepository {
	return &LabelRepository{db: db}
}

// Create adds a new label to the database
func (r *LabelRepository) Create(ctx context.Context, label *model.Label) error {
	return translate(conn(ctx, r.db).Omit(clause.Associations).Create(label).Error)
}

// GetByID retrieves a label by its ID
func (r *LabelRepository) GetByID(ctx context.Context, id uint) (*model.Label, error) {
	var label model.Label
	result := conn(ctx, r.db).First(&label, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrLabelNotFound
		}
		return nil, result.Error
	}
	return &label, nil
}

// GetByIDs retrieves the labels matching ids; missing ids are absent from the result
func (r *LabelRepository) GetByIDs(ctx context.Context, ids []uint) ([]model.Label, error) {
	if len(ids) == 0 {
		return []model.Label{}, nil
	}
	var labels []model.Label
	err := conn(ctx, r.db).Where("id IN ?", ids).Order("id").Find(&labels).Error
	return labels, err
}

// List retrieves every label ordered by name
func (r *LabelRepository) List(ctx context.Context) ([]model.Label, error) {
	var labels []model.Label
	err := conn(ctx, r.db).Order("name").Find(&labels).Error
	return labels, err
}

// Update updates an existing label
func (r *LabelRepository) Update(ctx context.Context, label *model.Label) error {
	result := conn(ctx, r.db).Omit(clause.Associations).Save(label)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrLabelNotFound
	}
	return nil
}

// Delete removes a label by its ID
func (r *LabelRepository) Delete(ctx context.Context, id uint) error {
	result := conn(ctx, r.db).Delete(&model.Label{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLabelNotFound
	}
	return nil
}

// OwnedLabelIDs returns the ids of the labels assigned to a user
func (r *LabelRepository) OwnedLabelIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := conn(ctx, r.db).Table("user_labels").
		Where("user_id = ?", userID).
		Order("label_id").
		Pluck("label_id", &ids).Error
	return ids, err
}

// AttachToUser gives a user ownership of a label
func (r *LabelRepository) AttachToUser(ctx context.Context, labelID, userID uint) error {
	return conn(ctx, r.db).Exec(
		"INSERT INTO user_labels (user_id, label_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		userID, labelID,
	).Error
}

// DetachFromUser removes a user's ownership of a label
func (r *LabelRepository) DetachFromUser(ctx context.Context, labelID, userID uint) error {
	return conn(ctx, r.db).Exec(
		"DELETE FROM user_labels WHERE user_id = ? AND label_id = ?",
		userID, labelID,
	).Error
}
