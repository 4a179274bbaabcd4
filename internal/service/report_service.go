package service

import (
	"context"
	"sort"
	"time"

	"taskboard/internal/model"
)

type StatusCount struct {
	Status *string `json:"status"`
	Count  int     `json:"count"`
}

type PriorityCount struct {
	Priority string `json:"priority"`
	Count    int    `json:"count"`
}

type UserCount struct {
	Username *string `json:"username"`
	Count    int     `json:"count"`
}

type TeamCount struct {
	Team  *string `json:"team"`
	Count int     `json:"count"`
}

type Statistics struct {
	StatusDistribution       []StatusCount   `json:"status_distribution"`
	PriorityDistribution     []PriorityCount `json:"priority_distribution"`
	CompletedTasksLast30Days int             `json:"completed_tasks_last_30_days"`
	TasksPerUser             []UserCount     `json:"tasks_per_user"`
	TasksPerTeam             []TeamCount     `json:"tasks_per_team"`
}

type GanttItem struct {
	ID        uint     `json:"id"`
	Name      string   `json:"name"`
	Start     *string  `json:"start"`
	End       *string  `json:"end"`
	Status    *string  `json:"status"`
	Assignees []string `json:"assignees"`
	Team      *string  `json:"team"`
}

// CalendarItem uses an exclusive End, one day after the task's last day.
type CalendarItem struct {
	Title       string  `json:"title"`
	Start       string  `json:"start"`
	End         string  `json:"end"`
	Description string  `json:"description"`
	Team        *string `json:"team"`
}

type Choice[T any] struct {
	Value T      `json:"value"`
	Label string `json:"label"`
}

type ColumnChoice struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

type UserChoice struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

type Choices struct {
	Priorities []Choice[string] `json:"priorities"`
	Columns    []ColumnChoice   `json:"columns"`
	Teams      []TeamRef        `json:"teams"`
	Labels     []LabelRef       `json:"labels"`
	Users      []UserChoice     `json:"users"`
}

// ReportService computes read-only views over the tasks a user can see.
type ReportService struct {
	policy          VisibilityPolicy
	columns         ColumnStore
	teams           TeamStore
	labels          LabelStore
	users           UserStore
	completedColumn string
	now             func() time.Time
}

func NewReportService(policy VisibilityPolicy, columns ColumnStore, teams TeamStore, labels LabelStore, users UserStore, completedColumn string) *ReportService {
	return &ReportService{
		policy:          policy,
		columns:         columns,
		teams:           teams,
		labels:          labels,
		users:           users,
		completedColumn: completedColumn,
		now:             time.Now,
	}
}

func (s *ReportService) Statistics(ctx context.Context, userID uint) (*Statistics, error) {
	tasks, err := s.policy.VisibleTasks(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	since := today.AddDate(0, 0, -30)

	status := newCounter()
	priority := newCounter()
	perUser := newCounter()
	perTeam := newCounter()
	completed := 0

	for i := range tasks {
		t := &tasks[i]
		var column *string
		if t.Column != nil {
			column = &t.Column.Title
		}
		status.add(column)
		p := string(t.Priority)
		priority.add(&p)

		if len(t.Assignees) == 0 {
			perUser.add(nil)
		}
		for _, u := range t.Assignees {
			name := u.Username
			perUser.add(&name)
		}

		var team *string
		if t.Team != nil {
			team = &t.Team.Name
		}
		perTeam.add(team)

		if column != nil && *column == s.completedColumn && t.EndDate != nil && !t.EndDate.Before(since) {
			completed++
		}
	}

	stats := &Statistics{CompletedTasksLast30Days: completed}
	for _, e := range status.sorted() {
		stats.StatusDistribution = append(stats.StatusDistribution, StatusCount{Status: e.key, Count: e.count})
	}
	for _, e := range priority.sorted() {
		stats.PriorityDistribution = append(stats.PriorityDistribution, PriorityCount{Priority: *e.key, Count: e.count})
	}
	for _, e := range perUser.sorted() {
		stats.TasksPerUser = append(stats.TasksPerUser, UserCount{Username: e.key, Count: e.count})
	}
	for _, e := range perTeam.sorted() {
		stats.TasksPerTeam = append(stats.TasksPerTeam, TeamCount{Team: e.key, Count: e.count})
	}
	if stats.StatusDistribution == nil {
		stats.StatusDistribution = []StatusCount{}
	}
	if stats.PriorityDistribution == nil {
		stats.PriorityDistribution = []PriorityCount{}
	}
	if stats.TasksPerUser == nil {
		stats.TasksPerUser = []UserCount{}
	}
	if stats.TasksPerTeam == nil {
		stats.TasksPerTeam = []TeamCount{}
	}
	return stats, nil
}

func (s *ReportService) Gantt(ctx context.Context, userID uint) ([]GanttItem, error) {
	tasks, err := s.policy.VisibleTasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	items := make([]GanttItem, 0, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		item := GanttItem{ID: t.ID, Name: t.Name, Assignees: make([]string, 0, len(t.Assignees))}
		if t.StartDate != nil {
			d, _ := formatDate(*t.StartDate)
			item.Start = &d
		}
		if t.EndDate != nil {
			d, _ := formatDate(*t.EndDate)
			item.End = &d
		}
		if t.Column != nil {
			item.Status = &t.Column.Title
		}
		if t.Team != nil {
			item.Team = &t.Team.Name
		}
		for _, u := range t.Assignees {
			item.Assignees = append(item.Assignees, u.Username)
		}
		items = append(items, item)
	}
	return items, nil
}

// Calendar lists tasks with at least one date. A task with a single date
// spans that one day.
func (s *ReportService) Calendar(ctx context.Context, userID uint) ([]CalendarItem, error) {
	tasks, err := s.policy.VisibleTasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	items := make([]CalendarItem, 0, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		start, end := t.StartDate, t.EndDate
		if start == nil && end == nil {
			continue
		}
		if start == nil {
			start = end
		}
		if end == nil {
			end = start
		}
		from, _ := formatDate(*start)
		to, _ := formatDate(end.AddDate(0, 0, 1))
		item := CalendarItem{Title: t.Name, Start: from, End: to, Description: t.Description}
		if t.Team != nil {
			item.Team = &t.Team.Name
		}
		items = append(items, item)
	}
	return items, nil
}

// Choices lists the values a task form can offer.
func (s *ReportService) Choices(ctx context.Context) (*Choices, error) {
	columns, err := s.columns.ListOrdered(ctx)
	if err != nil {
		return nil, err
	}
	teams, err := s.teams.List(ctx)
	if err != nil {
		return nil, err
	}
	labels, err := s.labels.List(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	out := &Choices{
		Priorities: make([]Choice[string], 0, len(model.Priorities)),
		Columns:    make([]ColumnChoice, 0, len(columns)),
		Teams:      make([]TeamRef, 0, len(teams)),
		Labels:     make([]LabelRef, 0, len(labels)),
		Users:      make([]UserChoice, 0, len(users)),
	}
	for _, p := range model.Priorities {
		out.Priorities = append(out.Priorities, Choice[string]{Value: string(p.Value), Label: p.Label})
	}
	for _, c := range columns {
		out.Columns = append(out.Columns, ColumnChoice{ID: c.ID, Title: c.Title})
	}
	for _, t := range teams {
		out.Teams = append(out.Teams, TeamRef{ID: t.ID, Name: t.Name})
	}
	for _, l := range labels {
		out.Labels = append(out.Labels, LabelRef{ID: l.ID, Name: l.Name})
	}
	for _, u := range users {
		out.Users = append(out.Users, UserChoice{ID: u.ID, Username: u.Username})
	}
	return out, nil
}

type countEntry struct {
	key   *string
	count int
}

// counter tallies optional string keys; nil is its own bucket.
type counter struct {
	entries map[string]*countEntry
	null    *countEntry
}

func newCounter() *counter {
	return &counter{entries: make(map[string]*countEntry)}
}

func (c *counter) add(key *string) {
	if key == nil {
		if c.null == nil {
			c.null = &countEntry{}
		}
		c.null.count++
		return
	}
	e, ok := c.entries[*key]
	if !ok {
		k := *key
		e = &countEntry{key: &k}
		c.entries[k] = e
	}
	e.count++
}

// sorted returns entries by count descending, then key, with nil last on ties.
func (c *counter) sorted() []countEntry {
	out := make([]countEntry, 0, len(c.entries)+1)
	for _, e := range c.entries {
		out = append(out, *e)
	}
	if c.null != nil {
		out = append(out, *c.null)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		if out[i].key == nil || out[j].key == nil {
			return out[j].key == nil && out[i].key != nil
		}
		return *out[i].key < *out[j].key
	})
	return out
}
