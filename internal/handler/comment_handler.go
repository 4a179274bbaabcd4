package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/model"
	"taskboard/internal/service"
)

type CommentService interface {
	AddComment(ctx context.Context, taskID, authorID uint, content string) (*service.Outcome, error)
	ListComments(ctx context.Context, taskID, userID uint) ([]model.Comment, error)
	GetComment(ctx context.Context, commentID, userID uint) (*model.Comment, error)
	DeleteComment(ctx context.Context, commentID, userID uint) error
}

type CommentHandler struct {
	comments CommentService
}

func NewCommentHandler(comments CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

type CommentRequest struct {
	Task    uint   `json:"task" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// Create godoc
// @Summary      Comment on a task
// @Description  Emails the reporter and assignees, never the author.
// @Tags         comments
// @Accept       json
// @Produce      json
// @Param        comment  body      CommentRequest  true  "Comment"
// @Success      201      {object}  service.CommentView
// @Failure      400      {object}  ErrorResponse
// @Failure      403      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /comments [post]
func (h *CommentHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "task and content are required")
		return
	}
	outcome, err := h.comments.AddComment(c.Request.Context(), req.Task, userID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, service.NewCommentView(outcome.Comment))
}

// List godoc
// @Summary      Comments of a task
// @Tags         comments
// @Produce      json
// @Param        task  query     int  true  "Task ID"
// @Success      200   {array}   service.CommentView
// @Failure      403   {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /comments [get]
func (h *CommentHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := uintQuery(c, "task")
	if !ok {
		return
	}
	comments, err := h.comments.ListComments(c.Request.Context(), taskID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]service.CommentView, 0, len(comments))
	for i := range comments {
		out = append(out, service.NewCommentView(&comments[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *CommentHandler) GetByID(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	comment, err := h.comments.GetComment(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, service.NewCommentView(comment))
}

// Delete godoc
// @Summary      Delete a comment
// @Description  Only the author may delete.
// @Tags         comments
// @Param        id   path  int  true  "Comment ID"
// @Success      204
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /comments/{id} [delete]
func (h *CommentHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.comments.DeleteComment(c.Request.Context(), id, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
