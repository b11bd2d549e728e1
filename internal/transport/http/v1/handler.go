// Package v1 provides the HTTP handlers of the meeting API.
package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/meetagent/internal/repository"
	"github.com/xiaot623/meetagent/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Conversation
	e.POST("/api/chat", h.Chat)

	// Meetings
	e.GET("/api/meetings", h.ListMeetings)
	e.GET("/api/meetings.ics", h.ExportCalendar)
	e.POST("/api/meetings", h.CreateMeeting)
	e.GET("/api/meetings/:id", h.GetMeeting)
	e.PUT("/api/meetings/:id", h.UpdateMeeting)
	e.DELETE("/api/meetings/:id", h.DeleteMeeting)

	// Tools
	e.GET("/api/tools", h.ListTools)
	e.POST("/api/tools/:tool_name/invoke", h.InvokeTool)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

// errorJSON maps service errors to status codes. Unexpected errors are
// logged and reported without detail.
func errorJSON(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "meeting not found"})
	case errors.Is(err, service.ErrUnknownTool):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
