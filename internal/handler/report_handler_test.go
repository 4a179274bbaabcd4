package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"taskboard/internal/handler"
	"taskboard/internal/service"
)

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Statistics(ctx context.Context, userID uint) (*service.Statistics, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Statistics), args.Error(1)
}

func (m *MockReportService) Gantt(ctx context.Context, userID uint) ([]service.GanttItem, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]service.GanttItem), args.Error(1)
}

func (m *MockReportService) Calendar(ctx context.Context, userID uint) ([]service.CalendarItem, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]service.CalendarItem), args.Error(1)
}

func (m *MockReportService) Choices(ctx context.Context) (*service.Choices, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Choices), args.Error(1)
}

func setupReportTest() (*gin.Engine, *MockReportService) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	reports := new(MockReportService)
	h := handler.NewReportHandler(reports)

	authorized := r.Group("/", asUser(2))
	authorized.GET("/statistics", h.Statistics)
	authorized.GET("/gantt-chart", h.Gantt)
	authorized.GET("/calendar", h.Calendar)
	return r, reports
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestStatistics(t *testing.T) {
	router, reports := setupReportTest()
	done := "Done"
	reports.On("Statistics", mock.Anything, uint(2)).Return(&service.Statistics{
		StatusDistribution:       []service.StatusCount{{Status: &done, Count: 2}},
		CompletedTasksLast30Days: 1,
	}, nil)

	resp := get(router, "/statistics")

	require.Equal(t, http.StatusOK, resp.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, float64(1), body["completed_tasks_last_30_days"])
	assert.Len(t, body["status_distribution"], 1)
}

func TestStatistics_InternalErrorIsGeneric(t *testing.T) {
	router, reports := setupReportTest()
	reports.On("Statistics", mock.Anything, uint(2)).Return(nil, errors.New("pq: relation does not exist"))

	resp := get(router, "/statistics")

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Equal(t, "Internal server error", errorBody(t, resp))
}

func TestCalendarAndGantt(t *testing.T) {
	router, reports := setupReportTest()
	reports.On("Calendar", mock.Anything, uint(2)).Return([]service.CalendarItem{
		{Title: "Ship", Start: "2024-06-01", End: "2024-06-04"},
	}, nil)
	reports.On("Gantt", mock.Anything, uint(2)).Return([]service.GanttItem{{ID: 10, Name: "Ship"}}, nil)

	resp := get(router, "/calendar")
	require.Equal(t, http.StatusOK, resp.Code)
	var items []service.CalendarItem
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &items))
	assert.Equal(t, "2024-06-04", items[0].End)

	resp = get(router, "/gantt-chart")
	require.Equal(t, http.StatusOK, resp.Code)
	var gantt []service.GanttItem
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &gantt))
	assert.Equal(t, uint(10), gantt[0].ID)
	reports.AssertExpectations(t)
}
