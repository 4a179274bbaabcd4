package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"taskboard/internal/handler"
	"taskboard/internal/middleware"
	"taskboard/internal/model"
	"taskboard/internal/service"
)

// asUser stands in for the JWT middleware.
func asUser(id uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, id)
		c.Next()
	}
}

type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) Create(ctx context.Context, in service.TaskInput, reporterID uint) (*model.Task, error) {
	args := m.Called(ctx, in, reporterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskService) Get(ctx context.Context, taskID, userID uint) (*model.Task, error) {
	args := m.Called(ctx, taskID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskService) Delete(ctx context.Context, taskID, userID uint) error {
	return m.Called(ctx, taskID, userID).Error(0)
}

func (m *MockTaskService) Update(ctx context.Context, taskID uint, patch service.TaskPatch, actorID uint) (*service.Outcome, error) {
	args := m.Called(ctx, taskID, patch, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Outcome), args.Error(1)
}

func (m *MockTaskService) ChangeAssignees(ctx context.Context, taskID uint, userIDs []uint, actorID uint) (*service.Outcome, error) {
	args := m.Called(ctx, taskID, userIDs, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Outcome), args.Error(1)
}

func (m *MockTaskService) Reorder(ctx context.Context, actorID uint, orderedIDs []uint) (int, error) {
	args := m.Called(ctx, actorID, orderedIDs)
	return args.Int(0), args.Error(1)
}

func (m *MockTaskService) History(ctx context.Context, taskID, userID uint) ([]model.TaskHistory, error) {
	args := m.Called(ctx, taskID, userID)
	return args.Get(0).([]model.TaskHistory), args.Error(1)
}

type MockBoardService struct {
	mock.Mock
}

func (m *MockBoardService) Board(ctx context.Context, userID uint) (*service.BoardResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BoardResponse), args.Error(1)
}

func setupTaskTest() (*gin.Engine, *MockTaskService, *MockBoardService) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	tasks := new(MockTaskService)
	board := new(MockBoardService)
	h := handler.NewTaskHandler(tasks, board)

	authorized := r.Group("/", asUser(1))
	authorized.GET("/tasks", h.Board)
	authorized.POST("/tasks", h.Create)
	authorized.POST("/tasks/reorder", h.Reorder)
	authorized.GET("/tasks/:id", h.GetByID)
	authorized.PUT("/tasks/:id", h.Replace)
	authorized.PATCH("/tasks/:id", h.Patch)
	authorized.DELETE("/tasks/:id", h.Delete)
	authorized.PUT("/tasks/:id/assignees", h.ChangeAssignees)
	authorized.GET("/history", h.History)
	return r, tasks, board
}

func sampleTask() *model.Task {
	col := uint(1)
	return &model.Task{
		ID:       10,
		Name:     "Ship",
		Priority: model.PriorityHigh,
		ColumnID: &col,
		Column:   &model.Column{ID: 1, Title: "Todo"},
		Reporter: model.User{ID: 1, Username: "alice"},
	}
}

func TestBoard(t *testing.T) {
	router, _, board := setupTaskTest()
	view := service.Project([]model.Task{*sampleTask()}, []model.Column{{ID: 1, Title: "Todo", Priority: 1}})
	board.On("Board", mock.Anything, uint(1)).Return(&service.BoardResponse{Board: view}, nil)

	req, _ := http.NewRequest(http.MethodGet, "/tasks", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	var body map[string]map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, []any{"1"}, body["board"]["ordered"])
	assert.Contains(t, body["board"]["tasks"], "10")
}

func TestCreateTask(t *testing.T) {
	router, tasks, _ := setupTaskTest()
	start := "2024-03-01"
	team := uint(5)
	tasks.On("Create", mock.Anything, service.TaskInput{
		Name:        "Ship",
		Priority:    model.PriorityHigh,
		StartDate:   start,
		TeamID:      &team,
		AssigneeIDs: []uint{2},
	}, uint(1)).Return(sampleTask(), nil)

	resp := postJSON(router, http.MethodPost, "/tasks", map[string]any{
		"name":       "Ship",
		"priority":   "high",
		"start_date": start,
		"team":       5,
		"assignees":  []uint{2},
	})

	require.Equal(t, http.StatusCreated, resp.Code)
	var view service.TaskView
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &view))
	assert.Equal(t, uint(10), view.ID)
	assert.Equal(t, "Todo", *view.Status)
	tasks.AssertExpectations(t)
}

func TestCreateTask_ValidationError(t *testing.T) {
	router, tasks, _ := setupTaskTest()
	tasks.On("Create", mock.Anything, mock.Anything, uint(1)).
		Return(nil, &service.Error{Kind: service.ErrValidation, Message: "name is required"})

	resp := postJSON(router, http.MethodPost, "/tasks", map[string]any{"priority": "high"})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "name is required", errorBody(t, resp))
}

func TestPatchTask_DistinguishesNullFromAbsent(t *testing.T) {
	router, tasks, _ := setupTaskTest()
	tasks.On("Update", mock.Anything, uint(10), mock.MatchedBy(func(p service.TaskPatch) bool {
		return p.ColumnID.Set && p.ColumnID.Value == nil &&
			!p.TeamID.Set &&
			p.Name != nil && *p.Name == "Renamed" &&
			p.Priority == nil
	}), uint(1)).Return(&service.Outcome{Task: sampleTask(), Notified: true}, nil)

	resp := postJSON(router, http.MethodPatch, "/tasks/10", map[string]any{"name": "Renamed", "column": nil})

	assert.Equal(t, http.StatusOK, resp.Code)
	tasks.AssertExpectations(t)
}

func TestReplaceTask_ClearsAbsentFields(t *testing.T) {
	router, tasks, _ := setupTaskTest()
	tasks.On("Update", mock.Anything, uint(10), mock.MatchedBy(func(p service.TaskPatch) bool {
		return p.StartDate.Set && p.StartDate.Value == nil &&
			p.TeamID.Set && p.TeamID.Value == nil &&
			p.LabelIDs != nil && len(*p.LabelIDs) == 0
	}), uint(1)).Return(&service.Outcome{Task: sampleTask()}, nil)

	resp := postJSON(router, http.MethodPut, "/tasks/10", map[string]any{"name": "Ship", "priority": "high"})

	assert.Equal(t, http.StatusOK, resp.Code)
	tasks.AssertExpectations(t)
}

func TestTask_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"not found", &service.Error{Kind: service.ErrNotFound, Message: "task not found"}, http.StatusNotFound},
		{"out of scope", &service.Error{Kind: service.ErrUnauthorized, Message: "no access"}, http.StatusForbidden},
		{"conflict", &service.Error{Kind: service.ErrConflict, Message: "dup"}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, tasks, _ := setupTaskTest()
			tasks.On("Get", mock.Anything, uint(10), uint(1)).Return(nil, tt.err)

			req, _ := http.NewRequest(http.MethodGet, "/tasks/10", nil)
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			assert.Equal(t, tt.code, resp.Code)
		})
	}
}

func TestGetTask_InvalidID(t *testing.T) {
	router, tasks, _ := setupTaskTest()

	req, _ := http.NewRequest(http.MethodGet, "/tasks/abc", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	tasks.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestChangeAssignees(t *testing.T) {
	router, tasks, _ := setupTaskTest()
	tasks.On("ChangeAssignees", mock.Anything, uint(10), []uint{}, uint(1)).Return(&service.Outcome{Task: sampleTask()}, nil)

	resp := postJSON(router, http.MethodPut, "/tasks/10/assignees", map[string]any{"assignees": []uint{}})
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = postJSON(router, http.MethodPut, "/tasks/10/assignees", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	tasks.AssertNumberOfCalls(t, "ChangeAssignees", 1)
}

func TestReorder(t *testing.T) {
	router, tasks, _ := setupTaskTest()
	tasks.On("Reorder", mock.Anything, uint(1), []uint{30, 10, 20}).Return(3, nil)

	resp := postJSON(router, http.MethodPost, "/tasks/reorder", handler.ReorderRequest{TaskOrders: []uint{30, 10, 20}})

	require.Equal(t, http.StatusOK, resp.Code)
	var body handler.ReorderResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Updated)
}

func TestDeleteTask(t *testing.T) {
	router, tasks, _ := setupTaskTest()
	tasks.On("Delete", mock.Anything, uint(10), uint(1)).Return(nil)

	req, _ := http.NewRequest(http.MethodDelete, "/tasks/10", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusNoContent, resp.Code)
}

func TestHistory(t *testing.T) {
	router, tasks, _ := setupTaskTest()
	actor := uint(1)
	tasks.On("History", mock.Anything, uint(10), uint(1)).Return([]model.TaskHistory{
		{ID: 1, TaskID: 10, ChangedByID: &actor, ChangeDescription: "Task updated by alice"},
	}, nil)

	req, _ := http.NewRequest(http.MethodGet, "/history?task=10", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	var entries []service.HistoryView
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Task updated by alice", entries[0].ChangeDescription)

	req, _ = http.NewRequest(http.MethodGet, "/history", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
