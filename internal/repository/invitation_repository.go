package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskboard/internal/model"
)

type InvitationRepository struct {
	db *gorm.DB
}

func NewInvitationRepository(db *gorm.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

func (r *InvitationRepository) Create(ctx context.Context, invitation *model.Invitation) error {
	return translate(conn(ctx, r.db).Omit(clause.Associations).Create(invitation).Error)
}

// HasPending reports whether an unaccepted invitation exists for the email
// and team. Emails compare case-insensitively.
func (r *InvitationRepository) HasPending(ctx context.Context, email string, teamID uint) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&model.Invitation{}).
		Where("lower(email) = lower(?) AND team_id = ? AND NOT accepted", email, teamID).
		Count(&count).Error
	return count > 0, err
}

func (r *InvitationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Invitation, error) {
	var invitation model.Invitation
	err := conn(ctx, r.db).Preload("Team").First(&invitation, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvitationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

// ListByInviter returns the invitations a user sent, newest first
func (r *InvitationRepository) ListByInviter(ctx context.Context, inviterID uint) ([]model.Invitation, error) {
	var invitations []model.Invitation
	err := conn(ctx, r.db).Preload("Team").
		Where("invited_by_id = ?", inviterID).
		Order("created_at DESC").
		Find(&invitations).Error
	return invitations, err
}

// MarkAccepted flips accepted to true. It reports false when the invitation
// was already accepted, so concurrent accepts cannot both succeed.
func (r *InvitationRepository) MarkAccepted(ctx context.Context, id uuid.UUID) (bool, error) {
	result := conn(ctx, r.db).Model(&model.Invitation{}).
		Where("id = ? AND NOT accepted", id).
		Update("accepted", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
