package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/model"
	"taskboard/internal/service"
)

type TaskService interface {
	Create(ctx context.Context, in service.TaskInput, reporterID uint) (*model.Task, error)
	Get(ctx context.Context, taskID, userID uint) (*model.Task, error)
	Delete(ctx context.Context, taskID, userID uint) error
	Update(ctx context.Context, taskID uint, patch service.TaskPatch, actorID uint) (*service.Outcome, error)
	ChangeAssignees(ctx context.Context, taskID uint, userIDs []uint, actorID uint) (*service.Outcome, error)
	Reorder(ctx context.Context, actorID uint, orderedIDs []uint) (int, error)
	History(ctx context.Context, taskID, userID uint) ([]model.TaskHistory, error)
}

type BoardService interface {
	Board(ctx context.Context, userID uint) (*service.BoardResponse, error)
}

type TaskHandler struct {
	tasks TaskService
	board BoardService
}

func NewTaskHandler(tasks TaskService, board BoardService) *TaskHandler {
	return &TaskHandler{tasks: tasks, board: board}
}

// TaskRequest is the body of POST /tasks and PUT /tasks/:id. Dates use
// YYYY-MM-DD. On PUT every field is written, absent ones are cleared.
type TaskRequest struct {
	Name        string  `json:"name" example:"Fix login"`
	Description string  `json:"description"`
	Priority    string  `json:"priority" example:"medium"`
	StartDate   *string `json:"start_date" example:"2024-03-01"`
	EndDate     *string `json:"end_date" example:"2024-03-05"`
	Column      *uint   `json:"column"`
	Team        *uint   `json:"team"`
	Assignees   []uint  `json:"assignees"`
	Labels      []uint  `json:"labels"`
}

// TaskPatchRequest is the body of PATCH /tasks/:id. Only present fields are
// changed; null clears dates, column and team.
type TaskPatchRequest struct {
	Name        *string                  `json:"name"`
	Description *string                  `json:"description"`
	Priority    *string                  `json:"priority"`
	StartDate   service.Optional[string] `json:"start_date" swaggertype:"string"`
	EndDate     service.Optional[string] `json:"end_date" swaggertype:"string"`
	Column      service.Optional[uint]   `json:"column" swaggertype:"integer"`
	Team        service.Optional[uint]   `json:"team" swaggertype:"integer"`
	Order       *int                     `json:"order"`
	Labels      *[]uint                  `json:"labels"`
}

type AssigneesRequest struct {
	Assignees *[]uint `json:"assignees"`
}

type ReorderRequest struct {
	TaskOrders []uint `json:"task_orders"`
}

type ReorderResponse struct {
	Detail  string `json:"detail"`
	Updated int    `json:"updated"`
}

// Board godoc
// @Summary      Board of visible tasks
// @Tags         tasks
// @Produce      json
// @Success      200  {object}  service.BoardResponse
// @Failure      401  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /tasks [get]
func (h *TaskHandler) Board(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	board, err := h.board.Board(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

// Create godoc
// @Summary      Create a task
// @Description  The acting user becomes the reporter. Without a column the leftmost one is used.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        task  body      TaskRequest  true  "Task"
// @Success      201   {object}  service.TaskView
// @Failure      400   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), service.TaskInput{
		Name:        req.Name,
		Description: req.Description,
		Priority:    model.Priority(req.Priority),
		StartDate:   deref(req.StartDate),
		EndDate:     deref(req.EndDate),
		ColumnID:    req.Column,
		TeamID:      req.Team,
		AssigneeIDs: req.Assignees,
		LabelIDs:    req.Labels,
	}, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, service.NewTaskView(task))
}

// GetByID godoc
// @Summary      Task detail with comments and history
// @Tags         tasks
// @Produce      json
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  service.TaskView
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	task, err := h.tasks.Get(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, service.NewTaskView(task))
}

// Replace godoc
// @Summary      Replace a task
// @Description  Writes one history entry and emails the assignees.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id    path      int          true  "Task ID"
// @Param        task  body      TaskRequest  true  "Task"
// @Success      200   {object}  service.TaskView
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /tasks/{id} [put]
func (h *TaskHandler) Replace(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	priority := model.Priority(req.Priority)
	labels := req.Labels
	patch := service.TaskPatch{
		Name:        &req.Name,
		Description: &req.Description,
		Priority:    &priority,
		StartDate:   service.Optional[string]{Set: true, Value: req.StartDate},
		EndDate:     service.Optional[string]{Set: true, Value: req.EndDate},
		ColumnID:    service.Optional[uint]{Set: true, Value: req.Column},
		TeamID:      service.Optional[uint]{Set: true, Value: req.Team},
		LabelIDs:    &labels,
	}
	h.update(c, id, patch, userID)
}

// Patch godoc
// @Summary      Partially update a task
// @Description  Writes one history entry and emails the assignees.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id     path      int               true  "Task ID"
// @Param        patch  body      TaskPatchRequest  true  "Changed fields"
// @Success      200    {object}  service.TaskView
// @Failure      400    {object}  ErrorResponse
// @Failure      403    {object}  ErrorResponse
// @Failure      404    {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /tasks/{id} [patch]
func (h *TaskHandler) Patch(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req TaskPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	patch := service.TaskPatch{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		ColumnID:    req.Column,
		TeamID:      req.Team,
		Order:       req.Order,
		LabelIDs:    req.Labels,
	}
	if req.Priority != nil {
		p := model.Priority(*req.Priority)
		patch.Priority = &p
	}
	h.update(c, id, patch, userID)
}

func (h *TaskHandler) update(c *gin.Context, id uint, patch service.TaskPatch, userID uint) {
	outcome, err := h.tasks.Update(c.Request.Context(), id, patch, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, service.NewTaskView(outcome.Task))
}

// Delete godoc
// @Summary      Delete a task
// @Tags         tasks
// @Param        id   path  int  true  "Task ID"
// @Success      204
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.tasks.Delete(c.Request.Context(), id, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ChangeAssignees godoc
// @Summary      Replace the assignee set
// @Description  Writes one history entry and emails the resulting assignees. An empty list clears them.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id    path      int               true  "Task ID"
// @Param        body  body      AssigneesRequest  true  "User ids"
// @Success      200   {object}  service.TaskView
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /tasks/{id}/assignees [put]
func (h *TaskHandler) ChangeAssignees(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req AssigneesRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Assignees == nil {
		badRequest(c, "assignees is required")
		return
	}

	outcome, err := h.tasks.ChangeAssignees(c.Request.Context(), id, *req.Assignees, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, service.NewTaskView(outcome.Task))
}

// Reorder godoc
// @Summary      Reorder tasks
// @Description  Each listed task gets its index as order. Unknown or invisible ids are skipped.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        body  body      ReorderRequest  true  "Ordered task ids"
// @Success      200   {object}  ReorderResponse
// @Failure      400   {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /tasks/reorder [post]
func (h *TaskHandler) Reorder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	updated, err := h.tasks.Reorder(c.Request.Context(), userID, req.TaskOrders)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ReorderResponse{Detail: "Tasks reordered successfully.", Updated: updated})
}

// History godoc
// @Summary      History of a task
// @Tags         tasks
// @Produce      json
// @Param        task  query     int  true  "Task ID"
// @Success      200   {array}   service.HistoryView
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Security     BearerAuth
// @Router       /history [get]
func (h *TaskHandler) History(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := uintQuery(c, "task")
	if !ok {
		return
	}
	entries, err := h.tasks.History(c.Request.Context(), taskID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]service.HistoryView, 0, len(entries))
	for i := range entries {
		out = append(out, service.NewHistoryView(&entries[i]))
	}
	c.JSON(http.StatusOK, out)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
