package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/service"
)

type ReportService interface {
	Statistics(ctx context.Context, userID uint) (*service.Statistics, error)
	Gantt(ctx context.Context, userID uint) ([]service.GanttItem, error)
	Calendar(ctx context.Context, userID uint) ([]service.CalendarItem, error)
	Choices(ctx context.Context) (*service.Choices, error)
}

// ReportHandler serves read-only views computed over the visible tasks.
type ReportHandler struct {
	reports ReportService
}

func NewReportHandler(reports ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Statistics godoc
// @Summary      Task statistics
// @Tags         reports
// @Produce      json
// @Success      200  {object}  service.Statistics
// @Security     BearerAuth
// @Router       /statistics [get]
func (h *ReportHandler) Statistics(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	stats, err := h.reports.Statistics(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Gantt godoc
// @Summary      Gantt chart rows
// @Tags         reports
// @Produce      json
// @Success      200  {array}  service.GanttItem
// @Security     BearerAuth
// @Router       /gantt-chart [get]
func (h *ReportHandler) Gantt(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	items, err := h.reports.Gantt(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Calendar godoc
// @Summary      Calendar events
// @Tags         reports
// @Produce      json
// @Success      200  {array}  service.CalendarItem
// @Security     BearerAuth
// @Router       /calendar [get]
func (h *ReportHandler) Calendar(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	items, err := h.reports.Calendar(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Choices godoc
// @Summary      Values for the task form
// @Tags         tasks
// @Produce      json
// @Success      200  {object}  service.Choices
// @Security     BearerAuth
// @Router       /tasks/choices [get]
func (h *ReportHandler) Choices(c *gin.Context) {
	choices, err := h.reports.Choices(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, choices)
}
