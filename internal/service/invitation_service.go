package service

import (
	"context"
	"crypto/rand"
	"math/big"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"taskboard/internal/model"
	"taskboard/internal/notify"
)

const (
	tempPasswordLength   = 12
	tempPasswordAlphabet = "abcdefghjkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

type InvitationService struct {
	tx          Transactor
	invitations InvitationStore
	teams       TeamStore
	users       UserStore
	notifier    notify.Notifier
	baseURL     string
	logger      *log.Logger
}

func NewInvitationService(
	tx Transactor,
	invitations InvitationStore,
	teams TeamStore,
	users UserStore,
	notifier notify.Notifier,
	baseURL string,
	logger *log.Logger,
) *InvitationService {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &InvitationService{
		tx:          tx,
		invitations: invitations,
		teams:       teams,
		users:       users,
		notifier:    notifier,
		baseURL:     strings.TrimRight(baseURL, "/"),
		logger:      logger,
	}
}

// AcceptLink is the URL a recipient follows to accept an invitation.
func (s *InvitationService) AcceptLink(id uuid.UUID) string {
	return s.baseURL + "/accept-invitation/" + id.String() + "/"
}

// Invite creates a pending invitation and emails it. Only team members may
// invite, and only one pending invitation may exist per email and team.
func (s *InvitationService) Invite(ctx context.Context, email string, teamID, inviterID uint) (*model.Invitation, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return nil, validationError("a valid email is required")
	}
	email = strings.ToLower(addr.Address)

	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, classify(err)
	}
	member, err := s.teams.IsMember(ctx, teamID, inviterID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, unauthorizedError("only team members can invite to %s", team.Name)
	}

	invitation := &model.Invitation{Email: email, TeamID: team.ID, InvitedByID: inviterID}
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		pending, err := s.invitations.HasPending(ctx, email, team.ID)
		if err != nil {
			return err
		}
		if pending {
			return conflictError("this email has already been invited to the team")
		}
		return classify(s.invitations.Create(ctx, invitation))
	})
	if err != nil {
		return nil, err
	}
	invitation.Team = *team

	msg, err := notify.InvitationMessage(team.Name, s.AcceptLink(invitation.ID), email)
	if err == nil {
		err = s.notifier.Send(ctx, msg)
	}
	if err != nil {
		s.logger.WithFields(log.Fields{"invitation_id": invitation.ID, "team_id": team.ID}).
			WithError(err).Error("❌ Failed to send invitation email")
	}
	return invitation, nil
}

// Accept adds the invited person to the team, creating an account with a
// mailed temporary password when none exists. A second call is a Conflict.
func (s *InvitationService) Accept(ctx context.Context, id uuid.UUID, firstName, lastName string) (*model.User, error) {
	firstName, lastName = strings.TrimSpace(firstName), strings.TrimSpace(lastName)

	var (
		user         *model.User
		tempPassword string
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		invitation, err := s.invitations.GetByID(ctx, id)
		if err != nil {
			return classify(err)
		}
		if invitation.Accepted {
			return conflictError("this invitation has already been accepted")
		}
		if firstName == "" || lastName == "" {
			return validationError("first name and last name are required")
		}

		user, err = s.users.FindByEmail(ctx, invitation.Email)
		if err != nil {
			return err
		}
		if user == nil {
			tempPassword, err = generatePassword()
			if err != nil {
				return err
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			user = &model.User{
				Username:       invitation.Email,
				Email:          invitation.Email,
				HashedPassword: string(hash),
				FirstName:      firstName,
				LastName:       lastName,
			}
			if err := s.users.Create(ctx, user); err != nil {
				return classify(err)
			}
		} else {
			user.FirstName, user.LastName = firstName, lastName
			if err := s.users.Update(ctx, user); err != nil {
				return err
			}
		}

		if err := s.teams.AddMember(ctx, invitation.TeamID, user.ID); err != nil {
			return err
		}
		accepted, err := s.invitations.MarkAccepted(ctx, id)
		if err != nil {
			return err
		}
		if !accepted {
			return conflictError("this invitation has already been accepted")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if tempPassword != "" {
		msg, err := notify.TemporaryPasswordMessage(tempPassword, user.Email)
		if err == nil {
			err = s.notifier.Send(ctx, msg)
		}
		if err != nil {
			s.logger.WithField("user_id", user.ID).WithError(err).Error("❌ Failed to send temporary password email")
		}
	}
	return user, nil
}

func (s *InvitationService) ListSent(ctx context.Context, inviterID uint) ([]model.Invitation, error) {
	return s.invitations.ListByInviter(ctx, inviterID)
}

func generatePassword() (string, error) {
	max := big.NewInt(int64(len(tempPasswordAlphabet)))
	b := make([]byte, tempPasswordLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = tempPasswordAlphabet[n.Int64()]
	}
	return string(b), nil
}
