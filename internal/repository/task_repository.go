package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskboard/internal/model"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// withRelations preloads what a serialized task carries on the board.
func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Column").
		Preload("Team").
		Preload("Reporter").
		Preload("Assignees", func(db *gorm.DB) *gorm.DB { return db.Order("users.id") }).
		Preload("Labels", func(db *gorm.DB) *gorm.DB { return db.Order("labels.id") })
}

// Create adds a new task together with its assignee and label links
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return inTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(task).Error; err != nil {
			return err
		}
		if err := replaceAssignees(tx, task.ID, task.AssigneeIDs()); err != nil {
			return err
		}
		return replaceLabels(tx, task.ID, labelIDs(task.Labels))
	})
}

// GetByID retrieves a task by its ID with comments and history loaded
func (r *TaskRepository) GetByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	result := withRelations(conn(ctx, r.db)).
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("comments.id") }).
		Preload("Comments.Author").
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("task_histories.id") }).
		First(&task, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, result.Error
	}
	return &task, nil
}

// ListForTeamMember retrieves the tasks whose team has userID as a member
func (r *TaskRepository) ListForTeamMember(ctx context.Context, userID uint) ([]model.Task, error) {
	var tasks []model.Task
	err := withRelations(conn(ctx, r.db)).
		Where("tasks.team_id IN (SELECT team_id FROM team_members WHERE user_id = ?)", userID).
		Order("tasks.id").
		Find(&tasks).Error
	return tasks, err
}

// ListForLabelOwnerOrAssignee retrieves the tasks carrying a label userID owns
// or assigned to userID
func (r *TaskRepository) ListForLabelOwnerOrAssignee(ctx context.Context, userID uint) ([]model.Task, error) {
	var tasks []model.Task
	err := withRelations(conn(ctx, r.db)).
		Where("tasks.id IN (SELECT tl.task_id FROM task_labels tl JOIN user_labels ul ON ul.label_id = tl.label_id WHERE ul.user_id = ?)", userID).
		Or("tasks.id IN (SELECT task_id FROM task_assignees WHERE user_id = ?)", userID).
		Order("tasks.id").
		Find(&tasks).Error
	return tasks, err
}

// Save writes the task's own columns; relation links are left untouched
func (r *TaskRepository) Save(ctx context.Context, task *model.Task) error {
	result := conn(ctx, r.db).Omit(clause.Associations).Save(task)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Delete removes a task by its ID
func (r *TaskRepository) Delete(ctx context.Context, id uint) error {
	result := conn(ctx, r.db).Delete(&model.Task{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// SetOrder updates only the order field. It reports false when no task has the id.
func (r *TaskRepository) SetOrder(ctx context.Context, id uint, order int) (bool, error) {
	result := conn(ctx, r.db).Model(&model.Task{}).
		Where("id = ?", id).
		Update("order", order)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ReplaceAssignees makes userIDs the task's full assignee set
func (r *TaskRepository) ReplaceAssignees(ctx context.Context, taskID uint, userIDs []uint) error {
	return inTx(ctx, r.db, func(tx *gorm.DB) error {
		return replaceAssignees(tx, taskID, userIDs)
	})
}

// ReplaceLabels makes labelIDs the task's full label set
func (r *TaskRepository) ReplaceLabels(ctx context.Context, taskID uint, ids []uint) error {
	return inTx(ctx, r.db, func(tx *gorm.DB) error {
		return replaceLabels(tx, taskID, ids)
	})
}

func replaceAssignees(tx *gorm.DB, taskID uint, userIDs []uint) error {
	if err := tx.Exec("DELETE FROM task_assignees WHERE task_id = ?", taskID).Error; err != nil {
		return err
	}
	for _, userID := range userIDs {
		if err := tx.Exec(
			"INSERT INTO task_assignees (task_id, user_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
			taskID, userID,
		).Error; err != nil {
			return err
		}
	}
	return nil
}

func replaceLabels(tx *gorm.DB, taskID uint, ids []uint) error {
	if err := tx.Exec("DELETE FROM task_labels WHERE task_id = ?", taskID).Error; err != nil {
		return err
	}
	for _, labelID := range ids {
		if err := tx.Exec(
			"INSERT INTO task_labels (task_id, label_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
			taskID, labelID,
		).Error; err != nil {
			return err
		}
	}
	return nil
}

func labelIDs(labels []model.Label) []uint {
	ids := make([]uint, 0, len(labels))
	for _, l := range labels {
		ids = append(ids, l.ID)
	}
	return ids
}
