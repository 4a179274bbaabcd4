package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/model"
)

type ColumnService interface {
	ListColumns(ctx context.Context) ([]model.Column, error)
	CreateColumn(ctx context.Context, title string, priority int) (*model.Column, error)
	UpdateColumn(ctx context.Context, id uint, title *string, priority *int) (*model.Column, error)
	DeleteColumn(ctx context.Context, id uint) error
}

type ColumnHandler struct {
	columns ColumnService
}

func NewColumnHandler(columns ColumnService) *ColumnHandler {
	return &ColumnHandler{columns: columns}
}

type ColumnRequest struct {
	Title    string `json:"title" binding:"required"`
	Priority int    `json:"priority"`
}

type ColumnUpdateRequest struct {
	Title    *string `json:"title"`
	Priority *int    `json:"priority"`
}

type ColumnResponse struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Priority int    `json:"priority"`
}

func newColumnResponse(c *model.Column) ColumnResponse {
	return ColumnResponse{ID: c.ID, Title: c.Title, Priority: c.Priority}
}

// GetAll godoc
// @Summary      Columns left to right
// @Tags         columns
// @Produce      json
// @Success      200  {array}  ColumnResponse
// @Security     BearerAuth
// @Router       /columns [get]
func (h *ColumnHandler) GetAll(c *gin.Context) {
	columns, err := h.columns.ListColumns(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]ColumnResponse, 0, len(columns))
	for i := range columns {
		out = append(out, newColumnResponse(&columns[i]))
	}
	c.JSON(http.StatusOK, out)
}

// Create godoc
// @Summary      Create a column
// @Tags         columns
// @Accept       json
// @Produce      json
// @Param        column  body      ColumnRequest  true  "Column"
// @Success      201     {object}  ColumnResponse
// @Failure      400     {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /columns [post]
func (h *ColumnHandler) Create(c *gin.Context) {
	var req ColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "title is required")
		return
	}
	column, err := h.columns.CreateColumn(c.Request.Context(), req.Title, req.Priority)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newColumnResponse(column))
}

// Update godoc
// @Summary      Rename or move a column
// @Tags         columns
// @Accept       json
// @Produce      json
// @Param        id      path      int                  true  "Column ID"
// @Param        column  body      ColumnUpdateRequest  true  "Changed fields"
// @Success      200     {object}  ColumnResponse
// @Failure      400     {object}  ErrorResponse
// @Failure      404     {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /columns/{id} [put]
func (h *ColumnHandler) Update(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req ColumnUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	column, err := h.columns.UpdateColumn(c.Request.Context(), id, req.Title, req.Priority)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newColumnResponse(column))
}

// Delete godoc
// @Summary      Delete a column
// @Description  Its tasks are kept without a column.
// @Tags         columns
// @Param        id   path  int  true  "Column ID"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /columns/{id} [delete]
func (h *ColumnHandler) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.columns.DeleteColumn(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
