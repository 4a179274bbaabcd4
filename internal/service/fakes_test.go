package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskboard/internal/model"
	"taskboard/internal/notify"
	"taskboard/internal/repository"
)

// memDB is an in-memory stand-in for the Postgres repositories.
type memDB struct {
	nextID      uint
	users       map[uint]*model.User
	teams       map[uint]*model.Team
	members     map[uint]map[uint]bool
	columns     map[uint]*model.Column
	labels      map[uint]*model.Label
	owned       map[uint]map[uint]bool
	tasks       map[uint]*model.Task
	assignees   map[uint][]uint
	taskLabels  map[uint][]uint
	comments    map[uint]*model.Comment
	history     []model.TaskHistory
	invitations map[uuid.UUID]*model.Invitation
	setOrders   int
}

func newMemDB() *memDB {
	return &memDB{
		nextID:      100,
		users:       map[uint]*model.User{},
		teams:       map[uint]*model.Team{},
		members:     map[uint]map[uint]bool{},
		columns:     map[uint]*model.Column{},
		labels:      map[uint]*model.Label{},
		owned:       map[uint]map[uint]bool{},
		tasks:       map[uint]*model.Task{},
		assignees:   map[uint][]uint{},
		taskLabels:  map[uint][]uint{},
		comments:    map[uint]*model.Comment{},
		invitations: map[uuid.UUID]*model.Invitation{},
	}
}

func (db *memDB) id() uint {
	db.nextID++
	return db.nextID
}

// seeding helpers

func (db *memDB) addUser(id uint, username string) *model.User {
	u := &model.User{ID: id, Username: username, Email: username + "@example.com"}
	db.users[id] = u
	return u
}

func (db *memDB) addTeam(id uint, name string, memberIDs ...uint) {
	db.teams[id] = &model.Team{ID: id, Name: name}
	db.members[id] = map[uint]bool{}
	for _, m := range memberIDs {
		db.members[id][m] = true
	}
}

func (db *memDB) addColumn(id uint, title string, priority int) {
	db.columns[id] = &model.Column{ID: id, Title: title, Priority: priority}
}

func (db *memDB) addLabel(id uint, name string, ownerIDs ...uint) {
	db.labels[id] = &model.Label{ID: id, Name: name}
	for _, o := range ownerIDs {
		if db.owned[o] == nil {
			db.owned[o] = map[uint]bool{}
		}
		db.owned[o][id] = true
	}
}

type taskSeed struct {
	column    *uint
	team      *uint
	reporter  uint
	assignees []uint
	labels    []uint
	order     int
}

func (db *memDB) addTask(id uint, s taskSeed) {
	db.tasks[id] = &model.Task{
		ID:         id,
		Name:       "task",
		Priority:   model.PriorityMedium,
		ColumnID:   s.column,
		TeamID:     s.team,
		ReporterID: s.reporter,
		Order:      s.order,
	}
	db.assignees[id] = append([]uint(nil), s.assignees...)
	db.taskLabels[id] = append([]uint(nil), s.labels...)
}

func (db *memDB) historyFor(taskID uint) []model.TaskHistory {
	var out []model.TaskHistory
	for _, h := range db.history {
		if h.TaskID == taskID {
			out = append(out, h)
		}
	}
	return out
}

func ptr[T any](v T) *T { return &v }

// hydrate returns a detached copy of the task with its relations loaded.
func (db *memDB) hydrate(t *model.Task, full bool) model.Task {
	out := *t
	out.Column, out.Team = nil, nil
	if t.ColumnID != nil {
		if c, ok := db.columns[*t.ColumnID]; ok {
			cc := *c
			out.Column = &cc
		}
	}
	if t.TeamID != nil {
		if tm, ok := db.teams[*t.TeamID]; ok {
			tt := *tm
			out.Team = &tt
		}
	}
	if r, ok := db.users[t.ReporterID]; ok {
		out.Reporter = *r
	}
	out.Assignees = nil
	for _, uid := range db.assignees[t.ID] {
		out.Assignees = append(out.Assignees, *db.users[uid])
	}
	out.Labels = nil
	for _, lid := range db.taskLabels[t.ID] {
		out.Labels = append(out.Labels, *db.labels[lid])
	}
	out.Comments, out.History = nil, nil
	if full {
		for _, c := range db.sortedComments(t.ID) {
			out.Comments = append(out.Comments, c)
		}
		out.History = db.historyFor(t.ID)
	}
	return out
}

func (db *memDB) sortedComments(taskID uint) []model.Comment {
	var out []model.Comment
	for _, c := range db.comments {
		if c.TaskID == taskID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (db *memDB) listTasks(keep func(t *model.Task) bool) []model.Task {
	ids := make([]uint, 0, len(db.tasks))
	for id := range db.tasks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var out []model.Task
	for _, id := range ids {
		t := db.tasks[id]
		if keep(t) {
			out = append(out, db.hydrate(t, false))
		}
	}
	return out
}

type fakeTasks struct{ db *memDB }

func (f fakeTasks) Create(_ context.Context, task *model.Task) error {
	task.ID = f.db.id()
	task.CreatedAt = time.Now()
	stored := *task
	f.db.tasks[task.ID] = &stored
	f.db.assignees[task.ID] = task.AssigneeIDs()
	var labels []uint
	for _, l := range task.Labels {
		labels = append(labels, l.ID)
	}
	f.db.taskLabels[task.ID] = labels
	return nil
}

func (f fakeTasks) GetByID(_ context.Context, id uint) (*model.Task, error) {
	t, ok := f.db.tasks[id]
	if !ok {
		return nil, repository.ErrTaskNotFound
	}
	out := f.db.hydrate(t, true)
	return &out, nil
}

func (f fakeTasks) ListForTeamMember(_ context.Context, userID uint) ([]model.Task, error) {
	return f.db.listTasks(func(t *model.Task) bool {
		return t.TeamID != nil && f.db.members[*t.TeamID][userID]
	}), nil
}

func (f fakeTasks) ListForLabelOwnerOrAssignee(_ context.Context, userID uint) ([]model.Task, error) {
	return f.db.listTasks(func(t *model.Task) bool {
		for _, uid := range f.db.assignees[t.ID] {
			if uid == userID {
				return true
			}
		}
		for _, lid := range f.db.taskLabels[t.ID] {
			if f.db.owned[userID][lid] {
				return true
			}
		}
		return false
	}), nil
}

func (f fakeTasks) Save(_ context.Context, task *model.Task) error {
	if _, ok := f.db.tasks[task.ID]; !ok {
		return repository.ErrTaskNotFound
	}
	stored := *task
	stored.Column, stored.Team = nil, nil
	stored.Assignees, stored.Labels, stored.Comments, stored.History = nil, nil, nil, nil
	f.db.tasks[task.ID] = &stored
	return nil
}

func (f fakeTasks) Delete(_ context.Context, id uint) error {
	if _, ok := f.db.tasks[id]; !ok {
		return repository.ErrTaskNotFound
	}
	delete(f.db.tasks, id)
	return nil
}

func (f fakeTasks) SetOrder(_ context.Context, id uint, order int) (bool, error) {
	t, ok := f.db.tasks[id]
	if !ok {
		return false, nil
	}
	f.db.setOrders++
	t.Order = order
	return true, nil
}

func (f fakeTasks) ReplaceAssignees(_ context.Context, taskID uint, userIDs []uint) error {
	f.db.assignees[taskID] = append([]uint(nil), userIDs...)
	return nil
}

func (f fakeTasks) ReplaceLabels(_ context.Context, taskID uint, labelIDs []uint) error {
	f.db.taskLabels[taskID] = append([]uint(nil), labelIDs...)
	return nil
}

type fakeColumns struct{ db *memDB }

func (f fakeColumns) Create(_ context.Context, c *model.Column) error {
	c.ID = f.db.id()
	stored := *c
	f.db.columns[c.ID] = &stored
	return nil
}

func (f fakeColumns) GetByID(_ context.Context, id uint) (*model.Column, error) {
	c, ok := f.db.columns[id]
	if !ok {
		return nil, repository.ErrColumnNotFound
	}
	out := *c
	return &out, nil
}

func (f fakeColumns) ListOrdered(_ context.Context) ([]model.Column, error) {
	out := make([]model.Column, 0, len(f.db.columns))
	for _, c := range f.db.columns {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f fakeColumns) First(ctx context.Context) (*model.Column, error) {
	cols, _ := f.ListOrdered(ctx)
	if len(cols) == 0 {
		return nil, nil
	}
	return &cols[0], nil
}

func (f fakeColumns) Update(_ context.Context, c *model.Column) error {
	if _, ok := f.db.columns[c.ID]; !ok {
		return repository.ErrColumnNotFound
	}
	stored := *c
	f.db.columns[c.ID] = &stored
	return nil
}

func (f fakeColumns) Delete(_ context.Context, id uint) error {
	if _, ok := f.db.columns[id]; !ok {
		return repository.ErrColumnNotFound
	}
	for _, t := range f.db.tasks {
		if t.ColumnID != nil && *t.ColumnID == id {
			t.ColumnID = nil
		}
	}
	delete(f.db.columns, id)
	return nil
}

type fakeTeams struct{ db *memDB }

func (f fakeTeams) Create(_ context.Context, team *model.Team, creatorID uint) error {
	for _, t := range f.db.teams {
		if t.Name == team.Name {
			return repository.ErrDuplicate
		}
	}
	team.ID = f.db.id()
	if creatorID != 0 {
		f.db.addTeam(team.ID, team.Name, creatorID)
	} else {
		f.db.addTeam(team.ID, team.Name)
	}
	return nil
}

func (f fakeTeams) GetByID(_ context.Context, id uint) (*model.Team, error) {
	t, ok := f.db.teams[id]
	if !ok {
		return nil, repository.ErrTeamNotFound
	}
	out := *t
	return &out, nil
}

func (f fakeTeams) List(_ context.Context) ([]model.Team, error) {
	out := make([]model.Team, 0, len(f.db.teams))
	for _, t := range f.db.teams {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeTeams) ListForUser(ctx context.Context, userID uint) ([]model.Team, error) {
	all, _ := f.List(ctx)
	var out []model.Team
	for _, t := range all {
		if f.db.members[t.ID][userID] {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f fakeTeams) IsMember(_ context.Context, teamID, userID uint) (bool, error) {
	return f.db.members[teamID][userID], nil
}

func (f fakeTeams) AddMember(_ context.Context, teamID, userID uint) error {
	if f.db.members[teamID] == nil {
		f.db.members[teamID] = map[uint]bool{}
	}
	f.db.members[teamID][userID] = true
	return nil
}

type fakeLabels struct{ db *memDB }

func (f fakeLabels) Create(_ context.Context, l *model.Label) error {
	for _, existing := range f.db.labels {
		if existing.Name == l.Name {
			return repository.ErrDuplicate
		}
	}
	l.ID = f.db.id()
	stored := *l
	f.db.labels[l.ID] = &stored
	return nil
}

func (f fakeLabels) GetByID(_ context.Context, id uint) (*model.Label, error) {
	l, ok := f.db.labels[id]
	if !ok {
		return nil, repository.ErrLabelNotFound
	}
	out := *l
	return &out, nil
}

func (f fakeLabels) GetByIDs(_ context.Context, ids []uint) ([]model.Label, error) {
	var out []model.Label
	for _, id := range ids {
		if l, ok := f.db.labels[id]; ok {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f fakeLabels) List(_ context.Context) ([]model.Label, error) {
	out := make([]model.Label, 0, len(f.db.labels))
	for _, l := range f.db.labels {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f fakeLabels) Update(_ context.Context, l *model.Label) error {
	stored := *l
	f.db.labels[l.ID] = &stored
	return nil
}

func (f fakeLabels) Delete(_ context.Context, id uint) error {
	if _, ok := f.db.labels[id]; !ok {
		return repository.ErrLabelNotFound
	}
	delete(f.db.labels, id)
	return nil
}

func (f fakeLabels) OwnedLabelIDs(_ context.Context, userID uint) ([]uint, error) {
	var out []uint
	for id := range f.db.owned[userID] {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (f fakeLabels) AttachToUser(_ context.Context, labelID, userID uint) error {
	if f.db.owned[userID] == nil {
		f.db.owned[userID] = map[uint]bool{}
	}
	f.db.owned[userID][labelID] = true
	return nil
}

func (f fakeLabels) DetachFromUser(_ context.Context, labelID, userID uint) error {
	delete(f.db.owned[userID], labelID)
	return nil
}

type fakeUsers struct{ db *memDB }

func (f fakeUsers) Create(_ context.Context, u *model.User) error {
	u.ID = f.db.id()
	stored := *u
	f.db.users[u.ID] = &stored
	return nil
}

func (f fakeUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.db.users {
		if strings.EqualFold(u.Email, email) {
			out := *u
			return &out, nil
		}
	}
	return nil, nil
}

func (f fakeUsers) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range f.db.users {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, nil
}

func (f fakeUsers) GetByID(_ context.Context, id uint) (*model.User, error) {
	u, ok := f.db.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (f fakeUsers) GetByIDs(_ context.Context, ids []uint) ([]model.User, error) {
	var out []model.User
	for _, id := range ids {
		if u, ok := f.db.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f fakeUsers) List(_ context.Context) ([]model.User, error) {
	out := make([]model.User, 0, len(f.db.users))
	for _, u := range f.db.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeUsers) Update(_ context.Context, u *model.User) error {
	stored := *u
	f.db.users[u.ID] = &stored
	return nil
}

type fakeComments struct{ db *memDB }

func (f fakeComments) Create(_ context.Context, c *model.Comment) error {
	c.ID = f.db.id()
	c.CreatedAt = time.Now()
	stored := *c
	stored.Author = nil
	f.db.comments[c.ID] = &stored
	return nil
}

func (f fakeComments) GetByID(_ context.Context, id uint) (*model.Comment, error) {
	c, ok := f.db.comments[id]
	if !ok {
		return nil, repository.ErrCommentNotFound
	}
	out := *c
	return &out, nil
}

func (f fakeComments) ListByTask(_ context.Context, taskID uint) ([]model.Comment, error) {
	return f.db.sortedComments(taskID), nil
}

func (f fakeComments) Delete(_ context.Context, id uint) error {
	if _, ok := f.db.comments[id]; !ok {
		return repository.ErrCommentNotFound
	}
	delete(f.db.comments, id)
	return nil
}

type fakeHistory struct {
	db  *memDB
	err error
}

func (f *fakeHistory) Append(_ context.Context, e *model.TaskHistory) error {
	if f.err != nil {
		return f.err
	}
	e.ID = f.db.id()
	e.CreatedAt = time.Now()
	f.db.history = append(f.db.history, *e)
	return nil
}

func (f *fakeHistory) ListByTask(_ context.Context, taskID uint) ([]model.TaskHistory, error) {
	return f.db.historyFor(taskID), nil
}

type fakeInvitations struct{ db *memDB }

func (f fakeInvitations) Create(_ context.Context, inv *model.Invitation) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	inv.CreatedAt = time.Now()
	stored := *inv
	f.db.invitations[inv.ID] = &stored
	return nil
}

func (f fakeInvitations) HasPending(_ context.Context, email string, teamID uint) (bool, error) {
	for _, inv := range f.db.invitations {
		if strings.EqualFold(inv.Email, email) && inv.TeamID == teamID && !inv.Accepted {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeInvitations) GetByID(_ context.Context, id uuid.UUID) (*model.Invitation, error) {
	inv, ok := f.db.invitations[id]
	if !ok {
		return nil, repository.ErrInvitationNotFound
	}
	out := *inv
	return &out, nil
}

func (f fakeInvitations) ListByInviter(_ context.Context, inviterID uint) ([]model.Invitation, error) {
	var out []model.Invitation
	for _, inv := range f.db.invitations {
		if inv.InvitedByID == inviterID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (f fakeInvitations) MarkAccepted(_ context.Context, id uuid.UUID) (bool, error) {
	inv, ok := f.db.invitations[id]
	if !ok || inv.Accepted {
		return false, nil
	}
	inv.Accepted = true
	return true, nil
}

// fakeTx runs fn inline and counts transactions.
type fakeTx struct{ calls int }

func (f *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notify.Message
	err  error
}

func (n *fakeNotifier) Send(_ context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}

var errSMTPDown = errors.New("smtp: connection refused")

// fixture bundles a memDB with services wired to it.
type fixture struct {
	db       *memDB
	tx       *fakeTx
	notifier *fakeNotifier
	history  *fakeHistory
	tasks    *TaskService
	policy   VisibilityPolicy
}

func newFixture(policyName string) *fixture {
	db := newMemDB()
	f := &fixture{
		db:       db,
		tx:       &fakeTx{},
		notifier: &fakeNotifier{},
		history:  &fakeHistory{db: db},
	}
	policy, err := NewVisibilityPolicy(policyName, fakeTasks{db}, fakeTeams{db}, fakeLabels{db})
	if err != nil {
		panic(err)
	}
	f.policy = policy
	f.tasks = NewTaskService(TaskServiceDeps{
		Tx:       f.tx,
		Tasks:    fakeTasks{db},
		Columns:  fakeColumns{db},
		Teams:    fakeTeams{db},
		Labels:   fakeLabels{db},
		Users:    fakeUsers{db},
		Comments: fakeComments{db},
		History:  NewHistoryLedger(f.history),
		Policy:   policy,
		Notifier: f.notifier,
	})
	return f
}
