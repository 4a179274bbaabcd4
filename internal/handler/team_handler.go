package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/model"
	"taskboard/internal/service"
)

type TeamService interface {
	ListTeams(ctx context.Context, userID uint) ([]model.Team, error)
	CreateTeam(ctx context.Context, name string, creatorID uint) (*model.Team, error)
}

type TeamHandler struct {
	teams TeamService
}

func NewTeamHandler(teams TeamService) *TeamHandler {
	return &TeamHandler{teams: teams}
}

type TeamRequest struct {
	Name string `json:"name" binding:"required"`
}

// GetAll godoc
// @Summary      Teams of the current user
// @Tags         teams
// @Produce      json
// @Success      200  {array}  service.TeamRef
// @Security     BearerAuth
// @Router       /teams [get]
func (h *TeamHandler) GetAll(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	teams, err := h.teams.ListTeams(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]service.TeamRef, 0, len(teams))
	for _, t := range teams {
		out = append(out, service.TeamRef{ID: t.ID, Name: t.Name})
	}
	c.JSON(http.StatusOK, out)
}

// Create godoc
// @Summary      Create a team
// @Description  The creator becomes its first member.
// @Tags         teams
// @Accept       json
// @Produce      json
// @Param        team  body      TeamRequest  true  "Team"
// @Success      201   {object}  service.TeamRef
// @Failure      400   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /teams [post]
func (h *TeamHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req TeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name is required")
		return
	}
	team, err := h.teams.CreateTeam(c.Request.Context(), req.Name, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, service.TeamRef{ID: team.ID, Name: team.Name})
}
