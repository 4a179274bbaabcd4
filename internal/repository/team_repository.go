package repository

import (
	"context"
	"errors"

	"taskboard/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TeamRepository struct {
	db *gorm.DB
}

func NewTeamRepository(db *gorm.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

// Create stores the team and, when creatorID is non-zero, makes the creator its first member.
func (r *TeamRepository) Create(ctx context.Context, team *model.Team, creatorID uint) error {
	return inTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(team).Error; err != nil {
			return translate(err)
		}
		if creatorID == 0 {
			return nil
		}
		return addMember(tx, team.ID, creatorID)
	})
}

func (r *TeamRepository) GetByID(ctx context.Context, id uint) (*model.Team, error) {
	var team model.Team
	err := conn(ctx, r.db).Where("id = ?", id).First(&team).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *TeamRepository) List(ctx context.Context) ([]model.Team, error) {
	var teams []model.Team
	err := conn(ctx, r.db).Order("id").Find(&teams).Error
	return teams, err
}

// ListForUser returns the teams userID belongs to, with members loaded.
func (r *TeamRepository) ListForUser(ctx context.Context, userID uint) ([]model.Team, error) {
	var teams []model.Team
	err := conn(ctx, r.db).
		Preload("Members").
		Joins("JOIN team_members ON team_members.team_id = teams.id").
		Where("team_members.user_id = ?", userID).
		Order("teams.id").
		Find(&teams).Error
	return teams, err
}

func (r *TeamRepository) IsMember(ctx context.Context, teamID, userID uint) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Table("team_members").
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Count(&count).Error
	return count > 0, err
}

// AddMember is a no-op when the user already belongs to the team.
func (r *TeamRepository) AddMember(ctx context.Context, teamID, userID uint) error {
	return addMember(conn(ctx, r.db), teamID, userID)
}

func addMember(db *gorm.DB, teamID, userID uint) error {
	return db.Exec(
		"INSERT INTO team_members (team_id, user_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		teamID, userID,
	).Error
}
