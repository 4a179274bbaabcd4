package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"

	"taskboard/internal/auth"
	"taskboard/internal/handler"
)

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger, _ := test.NewNullLogger()
	h := handlers{
		users:       handler.NewUserHandler(nil),
		tasks:       handler.NewTaskHandler(nil, nil),
		comments:    handler.NewCommentHandler(nil),
		columns:     handler.NewColumnHandler(nil),
		labels:      handler.NewLabelHandler(nil),
		teams:       handler.NewTeamHandler(nil),
		invitations: handler.NewInvitationHandler(nil),
		reports:     handler.NewReportHandler(nil),
	}
	return newRouter(h, auth.NewTokenManager("test-secret", time.Minute, time.Hour), logger)
}

func TestHealthz(t *testing.T) {
	router := testRouter()

	req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.NotEmpty(t, resp.Header().Get("X-Request-ID"))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := testRouter()
	routes := []struct{ method, path string }{
		{http.MethodGet, "/tasks"},
		{http.MethodPost, "/tasks/reorder"},
		{http.MethodGet, "/tasks/choices"},
		{http.MethodPatch, "/tasks/1"},
		{http.MethodPut, "/tasks/1/assignees"},
		{http.MethodGet, "/comments?task=1"},
		{http.MethodGet, "/history?task=1"},
		{http.MethodDelete, "/columns/1"},
		{http.MethodPost, "/labels"},
		{http.MethodPost, "/invitations"},
		{http.MethodGet, "/statistics"},
		{http.MethodGet, "/gantt-chart"},
		{http.MethodGet, "/calendar"},
		{http.MethodPatch, "/profile"},
	}
	for _, rt := range routes {
		req, _ := http.NewRequest(rt.method, rt.path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		assert.Equal(t, http.StatusUnauthorized, resp.Code, "%s %s", rt.method, rt.path)
	}
}

func TestAcceptInvitation_RejectsMalformedID(t *testing.T) {
	router := testRouter()

	req, _ := http.NewRequest(http.MethodPost, "/accept-invitation/not-a-uuid", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
