package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/model"
	"taskboard/internal/service"
)

type LabelService interface {
	ListLabels(ctx context.Context) ([]model.Label, error)
	CreateLabel(ctx context.Context, name string) (*model.Label, error)
	RenameLabel(ctx context.Context, id uint, name string) (*model.Label, error)
	DeleteLabel(ctx context.Context, id uint) error
}

type LabelHandler struct {
	labels LabelService
}

func NewLabelHandler(labels LabelService) *LabelHandler {
	return &LabelHandler{labels: labels}
}

type LabelRequest struct {
	Name string `json:"name" binding:"required"`
}

// GetAll godoc
// @Summary      All labels
// @Tags         labels
// @Produce      json
// @Success      200  {array}  service.LabelRef
// @Security     BearerAuth
// @Router       /labels [get]
func (h *LabelHandler) GetAll(c *gin.Context) {
	labels, err := h.labels.ListLabels(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]service.LabelRef, 0, len(labels))
	for _, l := range labels {
		out = append(out, service.LabelRef{ID: l.ID, Name: l.Name})
	}
	c.JSON(http.StatusOK, out)
}

// Create godoc
// @Summary      Create a label
// @Tags         labels
// @Accept       json
// @Produce      json
// @Param        label  body      LabelRequest  true  "Label"
// @Success      201    {object}  service.LabelRef
// @Failure      400    {object}  ErrorResponse
// @Failure      409    {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /labels [post]
func (h *LabelHandler) Create(c *gin.Context) {
	var req LabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name is required")
		return
	}
	label, err := h.labels.CreateLabel(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, service.LabelRef{ID: label.ID, Name: label.Name})
}

func (h *LabelHandler) Update(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req LabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name is required")
		return
	}
	label, err := h.labels.RenameLabel(c.Request.Context(), id, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, service.LabelRef{ID: label.ID, Name: label.Name})
}

func (h *LabelHandler) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.labels.DeleteLabel(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
