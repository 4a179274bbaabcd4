package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskboard/internal/model"
)

type InvitationService interface {
	Invite(ctx context.Context, email string, teamID, inviterID uint) (*model.Invitation, error)
	Accept(ctx context.Context, id uuid.UUID, firstName, lastName string) (*model.User, error)
	ListSent(ctx context.Context, inviterID uint) ([]model.Invitation, error)
}

type InvitationHandler struct {
	invitations InvitationService
}

func NewInvitationHandler(invitations InvitationService) *InvitationHandler {
	return &InvitationHandler{invitations: invitations}
}

// InvitationRequest takes the team as either team_id or team.
type InvitationRequest struct {
	Email  string `json:"email" binding:"required"`
	TeamID uint   `json:"team_id"`
	Team   uint   `json:"team"`
}

type AcceptInvitationRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type InvitationResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Team      uint      `json:"team"`
	Accepted  bool      `json:"accepted"`
	CreatedAt time.Time `json:"created_at"`
}

func newInvitationResponse(inv *model.Invitation) InvitationResponse {
	return InvitationResponse{
		ID:        inv.ID,
		Email:     inv.Email,
		Team:      inv.TeamID,
		Accepted:  inv.Accepted,
		CreatedAt: inv.CreatedAt,
	}
}

// Create godoc
// @Summary      Invite someone to a team
// @Description  Only members of the team may invite. One pending invitation per email and team.
// @Tags         invitations
// @Accept       json
// @Produce      json
// @Param        invitation  body      InvitationRequest  true  "Invitation"
// @Success      201         {object}  InvitationResponse
// @Failure      400         {object}  ErrorResponse
// @Failure      403         {object}  ErrorResponse
// @Failure      409         {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /invitations [post]
func (h *InvitationHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req InvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email and team_id are required")
		return
	}
	teamID := req.TeamID
	if teamID == 0 {
		teamID = req.Team
	}
	if teamID == 0 {
		badRequest(c, "email and team_id are required")
		return
	}
	inv, err := h.invitations.Invite(c.Request.Context(), req.Email, teamID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newInvitationResponse(inv))
}

// GetAll godoc
// @Summary      Invitations sent by the current user
// @Tags         invitations
// @Produce      json
// @Success      200  {array}  InvitationResponse
// @Security     BearerAuth
// @Router       /invitations [get]
func (h *InvitationHandler) GetAll(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	sent, err := h.invitations.ListSent(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]InvitationResponse, 0, len(sent))
	for i := range sent {
		out = append(out, newInvitationResponse(&sent[i]))
	}
	c.JSON(http.StatusOK, out)
}

// Accept godoc
// @Summary      Accept an invitation
// @Description  Creates the account with a mailed temporary password when the email is unknown.
// @Tags         invitations
// @Accept       json
// @Produce      json
// @Param        id    path      string                   true  "Invitation ID"
// @Param        body  body      AcceptInvitationRequest  true  "Names"
// @Success      200   {object}  MessageResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Router       /accept-invitation/{id} [post]
func (h *InvitationHandler) Accept(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "Invalid invitation id")
		return
	}
	var req AcceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	if _, err := h.invitations.Accept(c.Request.Context(), id, req.FirstName, req.LastName); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Invitation accepted successfully."})
}
