package service

import (
	"context"
	"fmt"

	"taskboard/internal/model"
)

// HistoryLedger appends task history entries. Entries are never changed
// once written.
type HistoryLedger struct {
	store HistoryStore
}

func NewHistoryLedger(store HistoryStore) *HistoryLedger {
	return &HistoryLedger{store: store}
}

// Record appends one entry. A zero actorID records no author.
func (l *HistoryLedger) Record(ctx context.Context, taskID, actorID uint, description string) error {
	entry := &model.TaskHistory{
		TaskID:            taskID,
		ChangeDescription: description,
	}
	if actorID != 0 {
		entry.ChangedByID = &actorID
	}
	if err := l.store.Append(ctx, entry); err != nil {
		return fmt.Errorf("record history for task %d: %w", taskID, err)
	}
	return nil
}

func (l *HistoryLedger) List(ctx context.Context, taskID uint) ([]model.TaskHistory, error) {
	return l.store.ListByTask(ctx, taskID)
}
