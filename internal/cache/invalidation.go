package cache

import (
	"gorm.io/gorm"

	"taskboard/internal/repository"
)

// Writes to these tables never change what a board shows.
var boardNeutralTables = map[string]bool{
	"comments":       true,
	"task_histories": true,
	"invitations":    true,
}

// RegisterInvalidation hooks gorm so that every successful write touching
// board data invalidates the cache once it is committed. Raw Exec statements
// (join-table edits) always invalidate. Writes made inside a repository
// transaction invalidate after that transaction commits and never on rollback.
func RegisterInvalidation(db *gorm.DB, c *BoardCache) error {
	invalidate := func(tx *gorm.DB) {
		ctx := tx.Statement.Context
		if repository.AfterCommit(ctx, func() { c.Invalidate(ctx) }) {
			return
		}
		c.Invalidate(ctx)
	}
	afterWrite := func(tx *gorm.DB) {
		if tx.Error != nil || boardNeutralTables[tx.Statement.Table] {
			return
		}
		invalidate(tx)
	}
	afterRaw := func(tx *gorm.DB) {
		if tx.Error != nil {
			return
		}
		invalidate(tx)
	}

	// Single statements run in gorm's own transaction, which commits in
	// gorm:commit_or_rollback_transaction.
	const committed = "gorm:commit_or_rollback_transaction"
	if err := db.Callback().Create().After(committed).Register("cache:board_create", afterWrite); err != nil {
		return err
	}
	if err := db.Callback().Update().After(committed).Register("cache:board_update", afterWrite); err != nil {
		return err
	}
	if err := db.Callback().Delete().After(committed).Register("cache:board_delete", afterWrite); err != nil {
		return err
	}
	return db.Callback().Raw().After("gorm:raw").Register("cache:board_raw", afterRaw)
}
