package v1

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/meetagent/internal/domain"
)

// ListMeetings returns every meeting ordered by start time.
// GET /api/meetings
func (h *Handler) ListMeetings(c echo.Context) error {
	meetings, err := h.service.ListMeetings(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}
	if meetings == nil {
		meetings = []domain.Meeting{}
	}
	return c.JSON(http.StatusOK, meetings)
}

// GetMeeting returns one meeting.
// GET /api/meetings/:id
func (h *Handler) GetMeeting(c echo.Context) error {
	m, err := h.service.GetMeeting(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// CreateMeeting stores a meeting as given, without a conflict check.
// POST /api/meetings
func (h *Handler) CreateMeeting(c echo.Context) error {
	var in domain.MeetingInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	m, err := h.service.CreateMeeting(c.Request().Context(), in)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

// UpdateMeeting changes title, datetime, duration or notes.
// PUT /api/meetings/:id
func (h *Handler) UpdateMeeting(c echo.Context) error {
	var u domain.MeetingUpdate
	if err := c.Bind(&u); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	m, err := h.service.UpdateMeeting(c.Request().Context(), c.Param("id"), u)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// DeleteMeeting removes a meeting.
// DELETE /api/meetings/:id
func (h *Handler) DeleteMeeting(c echo.Context) error {
	if err := h.service.DeleteMeeting(c.Request().Context(), c.Param("id")); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

// ExportCalendar returns all meetings as an iCalendar feed.
// GET /api/meetings.ics
func (h *Handler) ExportCalendar(c echo.Context) error {
	var buf bytes.Buffer
	if err := h.service.ExportICS(c.Request().Context(), &buf); err != nil {
		return errorJSON(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="meetings.ics"`)
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}
