package repository

import (
	"errors"

	"gorm.io/gorm"
)

// Common repository errors
var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrColumnNotFound     = errors.New("column not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrLabelNotFound      = errors.New("label not found")
	ErrCommentNotFound    = errors.New("comment not found")
	ErrInvitationNotFound = errors.New("invitation not found")

	// ErrDuplicate reports a unique constraint violation. It relies on the
	// gorm.Config TranslateError option.
	ErrDuplicate = errors.New("already exists")
)

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}
