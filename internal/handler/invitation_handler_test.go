package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"taskboard/internal/handler"
	"taskboard/internal/model"
	"taskboard/internal/service"
)

type MockInvitationService struct {
	mock.Mock
}

func (m *MockInvitationService) Invite(ctx context.Context, email string, teamID, inviterID uint) (*model.Invitation, error) {
	args := m.Called(ctx, email, teamID, inviterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invitation), args.Error(1)
}

func (m *MockInvitationService) Accept(ctx context.Context, id uuid.UUID, firstName, lastName string) (*model.User, error) {
	args := m.Called(ctx, id, firstName, lastName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockInvitationService) ListSent(ctx context.Context, inviterID uint) ([]model.Invitation, error) {
	args := m.Called(ctx, inviterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Invitation), args.Error(1)
}

func setupInvitationTest() (*gin.Engine, *MockInvitationService) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	invitations := new(MockInvitationService)
	h := handler.NewInvitationHandler(invitations)

	r.POST("/accept-invitation/:id", h.Accept)
	authorized := r.Group("/", asUser(1))
	authorized.GET("/invitations", h.GetAll)
	authorized.POST("/invitations", h.Create)
	return r, invitations
}

func TestCreateInvitation(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{"team_id", map[string]any{"email": "a@x.com", "team_id": 5}},
		{"team", map[string]any{"email": "a@x.com", "team": 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, invitations := setupInvitationTest()
			id := uuid.New()
			invitations.On("Invite", mock.Anything, "a@x.com", uint(5), uint(1)).
				Return(&model.Invitation{ID: id, Email: "a@x.com", TeamID: 5}, nil)

			resp := postJSON(router, http.MethodPost, "/invitations", tt.body)

			require.Equal(t, http.StatusCreated, resp.Code)
			var out handler.InvitationResponse
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
			assert.Equal(t, id, out.ID)
			assert.Equal(t, uint(5), out.Team)
			assert.False(t, out.Accepted)
			invitations.AssertExpectations(t)
		})
	}
}

func TestCreateInvitation_MissingTeam(t *testing.T) {
	router, invitations := setupInvitationTest()

	resp := postJSON(router, http.MethodPost, "/invitations", map[string]any{"email": "a@x.com"})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	invitations.AssertNumberOfCalls(t, "Invite", 0)
}

func TestCreateInvitation_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"already invited", &service.Error{Kind: service.ErrConflict, Message: "this email has already been invited to the team"}, http.StatusConflict},
		{"not a member", &service.Error{Kind: service.ErrUnauthorized, Message: "only team members can invite to platform"}, http.StatusForbidden},
		{"unknown team", &service.Error{Kind: service.ErrNotFound, Message: "team not found"}, http.StatusNotFound},
		{"bad email", &service.Error{Kind: service.ErrValidation, Message: "a valid email is required"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, invitations := setupInvitationTest()
			invitations.On("Invite", mock.Anything, "a@x.com", uint(5), uint(1)).Return(nil, tt.err)

			resp := postJSON(router, http.MethodPost, "/invitations", map[string]any{"email": "a@x.com", "team_id": 5})

			assert.Equal(t, tt.code, resp.Code)
			assert.Equal(t, tt.err.Error(), errorBody(t, resp))
		})
	}
}

func TestListInvitations(t *testing.T) {
	router, invitations := setupInvitationTest()
	invitations.On("ListSent", mock.Anything, uint(1)).Return([]model.Invitation{
		{ID: uuid.New(), Email: "a@x.com", TeamID: 5},
		{ID: uuid.New(), Email: "b@x.com", TeamID: 5, Accepted: true},
	}, nil)

	req, _ := http.NewRequest(http.MethodGet, "/invitations", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	var out []handler.InvitationResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "b@x.com", out[1].Email)
	assert.True(t, out[1].Accepted)
}

func TestAcceptInvitation(t *testing.T) {
	router, invitations := setupInvitationTest()
	id := uuid.New()
	invitations.On("Accept", mock.Anything, id, "Nora", "Newman").
		Return(&model.User{ID: 9, Email: "new@x.com"}, nil)

	resp := postJSON(router, http.MethodPost, "/accept-invitation/"+id.String(), handler.AcceptInvitationRequest{
		FirstName: "Nora",
		LastName:  "Newman",
	})

	require.Equal(t, http.StatusOK, resp.Code)
	var out handler.MessageResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	assert.Equal(t, "Invitation accepted successfully.", out.Message)
	invitations.AssertExpectations(t)
}

func TestAcceptInvitation_Twice(t *testing.T) {
	router, invitations := setupInvitationTest()
	id := uuid.New()
	invitations.On("Accept", mock.Anything, id, "Nora", "Newman").
		Return(nil, &service.Error{Kind: service.ErrConflict, Message: "this invitation has already been accepted"})

	resp := postJSON(router, http.MethodPost, "/accept-invitation/"+id.String(), handler.AcceptInvitationRequest{
		FirstName: "Nora",
		LastName:  "Newman",
	})

	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, "this invitation has already been accepted", errorBody(t, resp))
}

func TestAcceptInvitation_UnknownAndMalformed(t *testing.T) {
	router, invitations := setupInvitationTest()
	id := uuid.New()
	invitations.On("Accept", mock.Anything, id, "Nora", "Newman").
		Return(nil, &service.Error{Kind: service.ErrNotFound, Message: "invitation not found"})

	resp := postJSON(router, http.MethodPost, "/accept-invitation/"+id.String(), handler.AcceptInvitationRequest{
		FirstName: "Nora",
		LastName:  "Newman",
	})
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = postJSON(router, http.MethodPost, "/accept-invitation/not-a-uuid", handler.AcceptInvitationRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "Invalid invitation id", errorBody(t, resp))
	invitations.AssertNumberOfCalls(t, "Accept", 1)
}
