package service

import (
	"context"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"taskboard/internal/model"
	"taskboard/internal/notify"
)

// TaskInput is a new task. A nil ColumnID selects the leftmost column.
type TaskInput struct {
	Name        string
	Description string
	Priority    model.Priority
	StartDate   string
	EndDate     string
	ColumnID    *uint
	TeamID      *uint
	AssigneeIDs []uint
	LabelIDs    []uint
}

// TaskPatch lists the fields to change. Unset fields are left alone; a set
// Optional with a nil value clears the field.
type TaskPatch struct {
	Name        *string
	Description *string
	Priority    *model.Priority
	StartDate   Optional[string]
	EndDate     Optional[string]
	ColumnID    Optional[uint]
	TeamID      Optional[uint]
	Order       *int
	LabelIDs    *[]uint
}

type TaskService struct {
	tx       Transactor
	tasks    TaskStore
	columns  ColumnStore
	teams    TeamStore
	labels   LabelStore
	users    UserStore
	comments CommentStore
	policy   VisibilityPolicy
	history  *HistoryLedger
	emit     *emitter
}

type TaskServiceDeps struct {
	Tx       Transactor
	Tasks    TaskStore
	Columns  ColumnStore
	Teams    TeamStore
	Labels   LabelStore
	Users    UserStore
	Comments CommentStore
	History  *HistoryLedger
	Policy   VisibilityPolicy
	Notifier notify.Notifier
	LogoURL  string
	Logger   *log.Logger
}

func NewTaskService(d TaskServiceDeps) *TaskService {
	logger := d.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &TaskService{
		tx:       d.Tx,
		tasks:    d.Tasks,
		columns:  d.Columns,
		teams:    d.Teams,
		labels:   d.Labels,
		users:    d.Users,
		comments: d.Comments,
		policy:   d.Policy,
		history:  d.History,
		emit: &emitter{
			history:  d.History,
			notifier: d.Notifier,
			logoURL:  d.LogoURL,
			logger:   logger,
		},
	}
}

// Create stores a new task reported by reporterID. It writes no history
// and sends no email.
func (s *TaskService) Create(ctx context.Context, in TaskInput, reporterID uint) (*model.Task, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationError("name is required")
	}
	if in.Priority == "" {
		return nil, validationError("priority is required")
	}
	if !in.Priority.Valid() {
		return nil, validationError("priority must be one of low, medium, high")
	}
	start, err := parseDate("start_date", in.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate("end_date", in.EndDate)
	if err != nil {
		return nil, err
	}
	if err := checkDateRange(start, end); err != nil {
		return nil, err
	}

	task := &model.Task{
		Name:        name,
		Description: in.Description,
		Priority:    in.Priority,
		StartDate:   start,
		EndDate:     end,
		TeamID:      in.TeamID,
		ReporterID:  reporterID,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if in.ColumnID != nil {
			if _, err := s.columns.GetByID(ctx, *in.ColumnID); err != nil {
				return classify(err)
			}
			task.ColumnID = in.ColumnID
		} else {
			first, err := s.columns.First(ctx)
			if err != nil {
				return err
			}
			if first != nil {
				id := first.ID
				task.ColumnID = &id
			}
		}
		if in.TeamID != nil {
			if _, err := s.teams.GetByID(ctx, *in.TeamID); err != nil {
				return classify(err)
			}
		}
		assignees, err := s.resolveUsers(ctx, in.AssigneeIDs)
		if err != nil {
			return err
		}
		labels, err := s.resolveLabels(ctx, in.LabelIDs)
		if err != nil {
			return err
		}
		task.Assignees = assignees
		task.Labels = labels
		return s.tasks.Create(ctx, task)
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, task.ID)
}

// Get returns a task the user can see, with comments and history.
func (s *TaskService) Get(ctx context.Context, taskID, userID uint) (*model.Task, error) {
	return s.loadVisible(ctx, taskID, userID)
}

func (s *TaskService) Delete(ctx context.Context, taskID, userID uint) error {
	if _, err := s.loadVisible(ctx, taskID, userID); err != nil {
		return err
	}
	return classify(s.tasks.Delete(ctx, taskID))
}

// Update applies patch, writes one history entry and emails the current
// assignees once.
func (s *TaskService) Update(ctx context.Context, taskID uint, patch TaskPatch, actorID uint) (*Outcome, error) {
	var event *LifecycleEvent
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		task, err := s.loadVisible(ctx, taskID, actorID)
		if err != nil {
			return err
		}
		actor, err := s.users.GetByID(ctx, actorID)
		if err != nil {
			return classify(err)
		}
		if err := s.applyPatch(ctx, task, patch); err != nil {
			return err
		}
		if err := s.tasks.Save(ctx, task); err != nil {
			return classify(err)
		}
		if patch.LabelIDs != nil {
			labels, err := s.resolveLabels(ctx, *patch.LabelIDs)
			if err != nil {
				return err
			}
			if err := s.tasks.ReplaceLabels(ctx, task.ID, labelIDsOf(labels)); err != nil {
				return err
			}
		}
		task, err = s.reload(ctx, task.ID)
		if err != nil {
			return err
		}
		event = &LifecycleEvent{
			Kind:       EventUpdated,
			Task:       task,
			Actor:      actor,
			Recipients: emails(task.Assignees, 0),
		}
		return s.emit.record(ctx, event)
	})
	if err != nil {
		return nil, err
	}
	return s.finish(ctx, event), nil
}

// ChangeAssignees replaces the assignee set with userIDs. The resulting
// assignees, not the removed ones, receive the email.
func (s *TaskService) ChangeAssignees(ctx context.Context, taskID uint, userIDs []uint, actorID uint) (*Outcome, error) {
	var event *LifecycleEvent
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.loadVisible(ctx, taskID, actorID); err != nil {
			return err
		}
		actor, err := s.users.GetByID(ctx, actorID)
		if err != nil {
			return classify(err)
		}
		assignees, err := s.resolveUsers(ctx, userIDs)
		if err != nil {
			return err
		}
		ids := make([]uint, 0, len(assignees))
		for _, u := range assignees {
			ids = append(ids, u.ID)
		}
		if err := s.tasks.ReplaceAssignees(ctx, taskID, ids); err != nil {
			return err
		}
		task, err := s.reload(ctx, taskID)
		if err != nil {
			return err
		}
		event = &LifecycleEvent{
			Kind:       EventAssigned,
			Task:       task,
			Actor:      actor,
			Recipients: emails(task.Assignees, 0),
		}
		return s.emit.record(ctx, event)
	})
	if err != nil {
		return nil, err
	}
	return s.finish(ctx, event), nil
}

// Reorder sets each listed task's order to its index in orderedIDs.
// Unknown ids and tasks the actor cannot see are skipped. It returns the
// number of tasks updated.
func (s *TaskService) Reorder(ctx context.Context, actorID uint, orderedIDs []uint) (int, error) {
	visible, err := s.policy.VisibleTasks(ctx, actorID)
	if err != nil {
		return 0, err
	}
	allowed := make(map[uint]struct{}, len(visible))
	for _, t := range visible {
		allowed[t.ID] = struct{}{}
	}

	updated := 0
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		for position, id := range orderedIDs {
			if _, ok := allowed[id]; !ok {
				continue
			}
			found, err := s.tasks.SetOrder(ctx, id, position)
			if err != nil {
				return err
			}
			if found {
				updated++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

// AddComment stores a comment, always writes one history entry and emails
// the reporter and assignees except the author.
func (s *TaskService) AddComment(ctx context.Context, taskID, authorID uint, content string) (*Outcome, error) {
	if strings.TrimSpace(content) == "" {
		return nil, validationError("content is required")
	}

	var event *LifecycleEvent
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		task, err := s.loadVisible(ctx, taskID, authorID)
		if err != nil {
			return err
		}
		author, err := s.users.GetByID(ctx, authorID)
		if err != nil {
			return classify(err)
		}
		comment := &model.Comment{TaskID: task.ID, AuthorID: &author.ID, Content: content}
		if err := s.comments.Create(ctx, comment); err != nil {
			return err
		}
		comment.Author = author

		involved := append([]model.User{task.Reporter}, task.Assignees...)
		event = &LifecycleEvent{
			Kind:       EventCommented,
			Task:       task,
			Actor:      author,
			Comment:    comment,
			Recipients: emails(involved, author.ID),
		}
		return s.emit.record(ctx, event)
	})
	if err != nil {
		return nil, err
	}
	return s.finish(ctx, event), nil
}

func (s *TaskService) ListComments(ctx context.Context, taskID, userID uint) ([]model.Comment, error) {
	if _, err := s.loadVisible(ctx, taskID, userID); err != nil {
		return nil, err
	}
	return s.comments.ListByTask(ctx, taskID)
}

func (s *TaskService) GetComment(ctx context.Context, commentID, userID uint) (*model.Comment, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, classify(err)
	}
	if _, err := s.loadVisible(ctx, comment.TaskID, userID); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes a comment. Only its author may do so.
func (s *TaskService) DeleteComment(ctx context.Context, commentID, userID uint) error {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return classify(err)
	}
	if comment.AuthorID == nil || *comment.AuthorID != userID {
		return unauthorizedError("only the author can delete a comment")
	}
	return classify(s.comments.Delete(ctx, commentID))
}

// History lists a visible task's ledger, oldest first.
func (s *TaskService) History(ctx context.Context, taskID, userID uint) ([]model.TaskHistory, error) {
	if _, err := s.loadVisible(ctx, taskID, userID); err != nil {
		return nil, err
	}
	return s.history.List(ctx, taskID)
}

func (s *TaskService) finish(ctx context.Context, event *LifecycleEvent) *Outcome {
	return &Outcome{
		Task:       event.Task,
		Comment:    event.Comment,
		Notified:   s.emit.announce(ctx, event),
		Recipients: event.Recipients,
	}
}

func (s *TaskService) loadVisible(ctx context.Context, taskID, userID uint) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, classify(err)
	}
	ok, err := s.policy.CanView(ctx, userID, task)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, unauthorizedError("you do not have access to this task")
	}
	return task, nil
}

func (s *TaskService) reload(ctx context.Context, taskID uint) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, classify(err)
	}
	return task, nil
}

func (s *TaskService) applyPatch(ctx context.Context, task *model.Task, p TaskPatch) error {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return validationError("name cannot be empty")
		}
		task.Name = name
	}
	if p.Description != nil {
		task.Description = *p.Description
	}
	if p.Priority != nil {
		if !p.Priority.Valid() {
			return validationError("priority must be one of low, medium, high")
		}
		task.Priority = *p.Priority
	}
	if p.StartDate.Set {
		d, err := parseOptionalDate("start_date", p.StartDate)
		if err != nil {
			return err
		}
		task.StartDate = d
	}
	if p.EndDate.Set {
		d, err := parseOptionalDate("end_date", p.EndDate)
		if err != nil {
			return err
		}
		task.EndDate = d
	}
	if err := checkDateRange(task.StartDate, task.EndDate); err != nil {
		return err
	}
	if p.ColumnID.Set {
		task.Column = nil
		task.ColumnID = nil
		if p.ColumnID.Value != nil {
			column, err := s.columns.GetByID(ctx, *p.ColumnID.Value)
			if err != nil {
				return classify(err)
			}
			task.ColumnID = &column.ID
		}
	}
	if p.TeamID.Set {
		task.Team = nil
		task.TeamID = nil
		if p.TeamID.Value != nil {
			team, err := s.teams.GetByID(ctx, *p.TeamID.Value)
			if err != nil {
				return classify(err)
			}
			task.TeamID = &team.ID
		}
	}
	if p.Order != nil {
		task.Order = *p.Order
	}
	return nil
}

// resolveUsers loads the distinct users in ids. Any unknown id is NotFound.
func (s *TaskService) resolveUsers(ctx context.Context, ids []uint) ([]model.User, error) {
	ids = distinct(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(users) != len(ids) {
		return nil, notFoundError("user not found")
	}
	return users, nil
}

// resolveLabels loads the distinct labels in ids. Any unknown id is NotFound.
func (s *TaskService) resolveLabels(ctx context.Context, ids []uint) ([]model.Label, error) {
	ids = distinct(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	labels, err := s.labels.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(labels) != len(ids) {
		return nil, notFoundError("label not found")
	}
	return labels, nil
}

func labelIDsOf(labels []model.Label) []uint {
	ids := make([]uint, 0, len(labels))
	for _, l := range labels {
		ids = append(ids, l.ID)
	}
	return ids
}

func distinct(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func parseDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	d, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, validationError("%s must be a date in YYYY-MM-DD format", field)
	}
	return &d, nil
}

func parseOptionalDate(field string, o Optional[string]) (*time.Time, error) {
	if o.Value == nil {
		return nil, nil
	}
	return parseDate(field, *o.Value)
}

func checkDateRange(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return validationError("end_date cannot be before start_date")
	}
	return nil
}
