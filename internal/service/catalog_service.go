package service

import (
	"context"
	"strings"

	"taskboard/internal/model"
)

// CatalogService manages the shared reference data of the board: columns,
// labels with their owners, and teams.
type CatalogService struct {
	columns ColumnStore
	labels  LabelStore
	teams   TeamStore
	users   UserStore
}

func NewCatalogService(columns ColumnStore, labels LabelStore, teams TeamStore, users UserStore) *CatalogService {
	return &CatalogService{columns: columns, labels: labels, teams: teams, users: users}
}

func (s *CatalogService) ListColumns(ctx context.Context) ([]model.Column, error) {
	return s.columns.ListOrdered(ctx)
}

func (s *CatalogService) CreateColumn(ctx context.Context, title string, priority int) (*model.Column, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, validationError("title is required")
	}
	column := &model.Column{Title: title, Priority: priority}
	if err := s.columns.Create(ctx, column); err != nil {
		return nil, classify(err)
	}
	return column, nil
}

func (s *CatalogService) UpdateColumn(ctx context.Context, id uint, title *string, priority *int) (*model.Column, error) {
	column, err := s.columns.GetByID(ctx, id)
	if err != nil {
		return nil, classify(err)
	}
	if title != nil {
		t := strings.TrimSpace(*title)
		if t == "" {
			return nil, validationError("title cannot be empty")
		}
		column.Title = t
	}
	if priority != nil {
		column.Priority = *priority
	}
	if err := s.columns.Update(ctx, column); err != nil {
		return nil, classify(err)
	}
	return column, nil
}

// DeleteColumn removes a column; its tasks stay without a column.
func (s *CatalogService) DeleteColumn(ctx context.Context, id uint) error {
	return classify(s.columns.Delete(ctx, id))
}

func (s *CatalogService) ListLabels(ctx context.Context) ([]model.Label, error) {
	return s.labels.List(ctx)
}

func (s *CatalogService) CreateLabel(ctx context.Context, name string) (*model.Label, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("name is required")
	}
	label := &model.Label{Name: name}
	if err := s.labels.Create(ctx, label); err != nil {
		return nil, classify(err)
	}
	return label, nil
}

func (s *CatalogService) RenameLabel(ctx context.Context, id uint, name string) (*model.Label, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("name is required")
	}
	label, err := s.labels.GetByID(ctx, id)
	if err != nil {
		return nil, classify(err)
	}
	label.Name = name
	if err := s.labels.Update(ctx, label); err != nil {
		return nil, classify(err)
	}
	return label, nil
}

func (s *CatalogService) DeleteLabel(ctx context.Context, id uint) error {
	return classify(s.labels.Delete(ctx, id))
}

// AssignLabel makes the user an owner of the label. Under the label policy
// owners see every task carrying it, so only administrators call this.
func (s *CatalogService) AssignLabel(ctx context.Context, username string, labelID uint) error {
	userID, err := s.labelTarget(ctx, username, labelID)
	if err != nil {
		return err
	}
	return s.labels.AttachToUser(ctx, labelID, userID)
}

func (s *CatalogService) UnassignLabel(ctx context.Context, username string, labelID uint) error {
	userID, err := s.labelTarget(ctx, username, labelID)
	if err != nil {
		return err
	}
	return s.labels.DetachFromUser(ctx, labelID, userID)
}

func (s *CatalogService) labelTarget(ctx context.Context, username string, labelID uint) (uint, error) {
	if _, err := s.labels.GetByID(ctx, labelID); err != nil {
		return 0, classify(err)
	}
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, notFoundError("user %q not found", username)
	}
	return user.ID, nil
}

// ListTeams returns the teams userID belongs to.
func (s *CatalogService) ListTeams(ctx context.Context, userID uint) ([]model.Team, error) {
	return s.teams.ListForUser(ctx, userID)
}

// CreateTeam creates a team with creatorID as its first member. A zero
// creatorID creates an empty team.
func (s *CatalogService) CreateTeam(ctx context.Context, name string, creatorID uint) (*model.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("name is required")
	}
	team := &model.Team{Name: name}
	if err := s.teams.Create(ctx, team, creatorID); err != nil {
		return nil, classify(err)
	}
	return team, nil
}
