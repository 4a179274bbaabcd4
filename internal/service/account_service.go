package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"taskboard/internal/auth"
	"taskboard/internal/model"
	"taskboard/internal/repository"
)

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type ProfilePatch struct {
	FirstName *string
	LastName  *string
	AvatarURL *string
}

// TokenPair is what login and refresh hand back to the client.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type AccountService struct {
	users  UserStore
	tokens *auth.TokenManager
}

func NewAccountService(users UserStore, tokens *auth.TokenManager) *AccountService {
	return &AccountService{users: users, tokens: tokens}
}

func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" || email == "" || in.Password == "" {
		return nil, validationError("all fields are required")
	}
	if len(in.Password) < 6 {
		return nil, validationError("password must be at least 6 characters")
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, conflictError("email is already in use")
	}
	existing, err = s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, conflictError("username is already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{Username: username, Email: email, HashedPassword: string(hash)}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, classify(err)
	}
	return user, nil
}

// Login accepts a username or an email as identifier.
func (s *AccountService) Login(ctx context.Context, identifier, password string) (*model.User, *TokenPair, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, nil, validationError("username and password are required")
	}

	var (
		user *model.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.users.FindByEmail(ctx, strings.ToLower(identifier))
	} else {
		user, err = s.users.FindByUsername(ctx, identifier)
	}
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issue(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a new pair.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	raw, err := s.tokens.ParseToken(refreshToken, auth.TokenRefresh)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil, ErrInvalidCredentials
	}
	if _, err := s.users.GetByID(ctx, uint(id)); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return s.issue(uint(id))
}

func (s *AccountService) Profile(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, classify(err)
	}
	return user, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID uint, p ProfilePatch) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, classify(err)
	}
	if p.FirstName != nil {
		user.FirstName = strings.TrimSpace(*p.FirstName)
	}
	if p.LastName != nil {
		user.LastName = strings.TrimSpace(*p.LastName)
	}
	if p.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*p.AvatarURL)
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, classify(err)
	}
	return user, nil
}

func (s *AccountService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

func (s *AccountService) issue(userID uint) (*TokenPair, error) {
	access, refresh, err := s.tokens.GeneratePair(userID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}
