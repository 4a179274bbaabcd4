package service

import (
	"context"
	"fmt"

	"taskboard/internal/model"
)

const (
	PolicyTeam  = "team"
	PolicyLabel = "label"
)

// VisibilityPolicy decides which tasks a user may see. Implementations are
// read-only.
type VisibilityPolicy interface {
	Name() string
	VisibleTasks(ctx context.Context, userID uint) ([]model.Task, error)
	CanView(ctx context.Context, userID uint, task *model.Task) (bool, error)
}

// NewVisibilityPolicy returns the strategy registered under name.
func NewVisibilityPolicy(name string, tasks TaskStore, teams TeamStore, labels LabelStore) (VisibilityPolicy, error) {
	switch name {
	case PolicyTeam:
		return &TeamPolicy{tasks: tasks, teams: teams}, nil
	case PolicyLabel:
		return &LabelPolicy{tasks: tasks, labels: labels}, nil
	default:
		return nil, fmt.Errorf("unknown visibility policy %q", name)
	}
}

// TeamPolicy shows the tasks of every team the user is a member of.
// Tasks without a team are visible to nobody.
type TeamPolicy struct {
	tasks TaskStore
	teams TeamStore
}

func (p *TeamPolicy) Name() string { return PolicyTeam }

func (p *TeamPolicy) VisibleTasks(ctx context.Context, userID uint) ([]model.Task, error) {
	return p.tasks.ListForTeamMember(ctx, userID)
}

func (p *TeamPolicy) CanView(ctx context.Context, userID uint, task *model.Task) (bool, error) {
	if task.TeamID == nil {
		return false, nil
	}
	return p.teams.IsMember(ctx, *task.TeamID, userID)
}

// LabelPolicy shows tasks that carry a label the user owns, plus tasks the
// user is assigned to.
type LabelPolicy struct {
	tasks  TaskStore
	labels LabelStore
}

func (p *LabelPolicy) Name() string { return PolicyLabel }

func (p *LabelPolicy) VisibleTasks(ctx context.Context, userID uint) ([]model.Task, error) {
	return p.tasks.ListForLabelOwnerOrAssignee(ctx, userID)
}

// CanView expects the task's Assignees and Labels to be loaded.
func (p *LabelPolicy) CanView(ctx context.Context, userID uint, task *model.Task) (bool, error) {
	for _, u := range task.Assignees {
		if u.ID == userID {
			return true, nil
		}
	}
	if len(task.Labels) == 0 {
		return false, nil
	}
	owned, err := p.labels.OwnedLabelIDs(ctx, userID)
	if err != nil {
		return false, err
	}
	mine := make(map[uint]struct{}, len(owned))
	for _, id := range owned {
		mine[id] = struct{}{}
	}
	for _, l := range task.Labels {
		if _, ok := mine[l.ID]; ok {
			return true, nil
		}
	}
	return false, nil
}
