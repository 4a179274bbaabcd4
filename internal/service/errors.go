package service

import (
	"errors"
	"fmt"

	"taskboard/internal/repository"
)

// Error kinds. Handlers map them to status codes with errors.Is.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials is returned by login and token refresh.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Error carries a user-facing message alongside its kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func validationError(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func notFoundError(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func conflictError(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

func unauthorizedError(format string, args ...any) error {
	return &Error{Kind: ErrUnauthorized, Message: fmt.Sprintf(format, args...)}
}

var repositoryNotFound = []error{
	repository.ErrTaskNotFound,
	repository.ErrColumnNotFound,
	repository.ErrUserNotFound,
	repository.ErrTeamNotFound,
	repository.ErrLabelNotFound,
	repository.ErrCommentNotFound,
	repository.ErrInvitationNotFound,
}

// classify turns repository sentinels into NotFound or Conflict errors and
// leaves everything else untouched.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrDuplicate) {
		return &Error{Kind: ErrConflict, Message: "a record with the same unique value already exists"}
	}
	for _, nf := range repositoryNotFound {
		if errors.Is(err, nf) {
			return &Error{Kind: ErrNotFound, Message: nf.Error()}
		}
	}
	return err
}
