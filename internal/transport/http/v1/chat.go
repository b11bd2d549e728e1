package v1

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/meetagent/internal/domain"
)

// Chat runs one conversation turn.
// POST /api/chat
func (h *Handler) Chat(c echo.Context) error {
	var req domain.TurnRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.Message) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Message is required"})
	}

	resp := h.service.HandleTurn(c.Request().Context(), req)
	return c.JSON(http.StatusOK, resp)
}
