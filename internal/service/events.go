package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"taskboard/internal/model"
	"taskboard/internal/notify"
)

type EventKind string

const (
	EventUpdated   EventKind = "update"
	EventAssigned  EventKind = "assigned"
	EventCommented EventKind = "comment"
)

// LifecycleEvent describes one mutating call. Each call builds exactly one
// event, records it inside its transaction and announces it after commit.
type LifecycleEvent struct {
	Kind       EventKind
	Task       *model.Task
	Actor      *model.User
	Comment    *model.Comment
	Recipients []string
}

// Outcome is what a mutating task operation returns. Notified is true only
// when an email was handed to the notifier without error.
type Outcome struct {
	Task       *model.Task
	Comment    *model.Comment
	Notified   bool
	Recipients []string
}

func (e *LifecycleEvent) historyDescription() string {
	switch e.Kind {
	case EventAssigned:
		return fmt.Sprintf("Assignees changed by %s", e.Actor.Username)
	case EventCommented:
		return fmt.Sprintf("Comment added by %s", e.Actor.Username)
	default:
		return fmt.Sprintf("Task updated by %s", e.Actor.Username)
	}
}

func (e *LifecycleEvent) email(logoURL string) notify.TaskEmail {
	data := notify.TaskEmail{
		ReporterName:  e.Task.Reporter.Username,
		ReporterEmail: e.Task.Reporter.Email,
		TaskName:      e.Task.Name,
		Priority:      string(e.Task.Priority),
		Description:   e.Task.Description,
		LogoURL:       logoURL,
	}
	if e.Task.Column != nil {
		data.Status = e.Task.Column.Title
	}
	switch e.Kind {
	case EventAssigned:
		data.Subject = fmt.Sprintf("You have been assigned to %s", e.Task.Name)
		data.Message = fmt.Sprintf("%s changed the assignees of %s.", e.Actor.Username, e.Task.Name)
	case EventCommented:
		data.Subject = fmt.Sprintf("New comment on %s", e.Task.Name)
		data.Message = fmt.Sprintf("%s added a comment to %s: %s", e.Actor.Username, e.Task.Name, e.Comment.Content)
		data.Comment = &notify.CommentBlock{Author: e.Actor.Username, Content: e.Comment.Content}
	default:
		data.Subject = fmt.Sprintf("%s has been updated", e.Task.Name)
		data.Message = fmt.Sprintf("%s updated %s. Please take a look.", e.Actor.Username, e.Task.Name)
	}
	return data
}

// emitter records events in the history ledger and announces them through
// the notifier.
type emitter struct {
	history  *HistoryLedger
	notifier notify.Notifier
	logoURL  string
	logger   *log.Logger
}

func (em *emitter) record(ctx context.Context, e *LifecycleEvent) error {
	return em.history.Record(ctx, e.Task.ID, e.Actor.ID, e.historyDescription())
}

// announce sends the event's email. Failures are logged and never returned.
func (em *emitter) announce(ctx context.Context, e *LifecycleEvent) bool {
	if len(e.Recipients) == 0 || em.notifier == nil {
		return false
	}
	fields := log.Fields{"event": e.Kind, "task_id": e.Task.ID, "recipients": len(e.Recipients)}

	msg, err := notify.TaskMessage(e.email(em.logoURL), e.Recipients)
	if err != nil {
		em.logger.WithFields(fields).WithError(err).Error("❌ Failed to render task email")
		return false
	}
	if err := em.notifier.Send(ctx, msg); err != nil {
		em.logger.WithFields(fields).WithError(err).Error("❌ Failed to send task email")
		return false
	}
	return true
}

// emails returns the distinct non-empty addresses of users, in input order,
// leaving out the user with id skip.
func emails(users []model.User, skip uint) []string {
	seen := make(map[uint]struct{}, len(users))
	out := make([]string, 0, len(users))
	for _, u := range users {
		if u.ID == skip || u.Email == "" {
			continue
		}
		if _, ok := seen[u.ID]; ok {
			continue
		}
		seen[u.ID] = struct{}{}
		out = append(out, u.Email)
	}
	return out
}
