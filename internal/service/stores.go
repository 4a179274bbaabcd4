package service

import (
	"context"

	"github.com/google/uuid"

	"taskboard/internal/model"
)

// Transactor runs fn in one database transaction; stores called with the
// context passed to fn take part in it.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id uint) (*model.Task, error)
	ListForTeamMember(ctx context.Context, userID uint) ([]model.Task, error)
	ListForLabelOwnerOrAssignee(ctx context.Context, userID uint) ([]model.Task, error)
	Save(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id uint) error
	SetOrder(ctx context.Context, id uint, order int) (bool, error)
	ReplaceAssignees(ctx context.Context, taskID uint, userIDs []uint) error
	ReplaceLabels(ctx context.Context, taskID uint, labelIDs []uint) error
}

type ColumnStore interface {
	Create(ctx context.Context, column *model.Column) error
	GetByID(ctx context.Context, id uint) (*model.Column, error)
	ListOrdered(ctx context.Context) ([]model.Column, error)
	First(ctx context.Context) (*model.Column, error)
	Update(ctx context.Context, column *model.Column) error
	Delete(ctx context.Context, id uint) error
}

type TeamStore interface {
	Create(ctx context.Context, team *model.Team, creatorID uint) error
	GetByID(ctx context.Context, id uint) (*model.Team, error)
	List(ctx context.Context) ([]model.Team, error)
	ListForUser(ctx context.Context, userID uint) ([]model.Team, error)
	IsMember(ctx context.Context, teamID, userID uint) (bool, error)
	AddMember(ctx context.Context, teamID, userID uint) error
}

type LabelStore interface {
	Create(ctx context.Context, label *model.Label) error
	GetByID(ctx context.Context, id uint) (*model.Label, error)
	GetByIDs(ctx context.Context, ids []uint) ([]model.Label, error)
	List(ctx context.Context) ([]model.Label, error)
	Update(ctx context.Context, label *model.Label) error
	Delete(ctx context.Context, id uint) error
	OwnedLabelIDs(ctx context.Context, userID uint) ([]uint, error)
	AttachToUser(ctx context.Context, labelID, userID uint) error
	DetachFromUser(ctx context.Context, labelID, userID uint) error
}

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetByIDs(ctx context.Context, ids []uint) ([]model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
}

type CommentStore interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id uint) (*model.Comment, error)
	ListByTask(ctx context.Context, taskID uint) ([]model.Comment, error)
	Delete(ctx context.Context, id uint) error
}

type HistoryStore interface {
	Append(ctx context.Context, entry *model.TaskHistory) error
	ListByTask(ctx context.Context, taskID uint) ([]model.TaskHistory, error)
}

type InvitationStore interface {
	Create(ctx context.Context, invitation *model.Invitation) error
	HasPending(ctx context.Context, email string, teamID uint) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Invitation, error)
	ListByInviter(ctx context.Context, inviterID uint) ([]model.Invitation, error)
	MarkAccepted(ctx context.Context, id uuid.UUID) (bool, error)
}
