package v1

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ToolInvokeRequest is the body of a direct tool call.
type ToolInvokeRequest struct {
	Args json.RawMessage `json:"args"`
}

// ToolInvokeResponse is what a direct tool call returns.
type ToolInvokeResponse struct {
	Tool       string `json:"tool"`
	Reply      string `json:"reply"`
	Collecting string `json:"collecting,omitempty"`
}

// ListTools returns the tool names InvokeTool accepts.
// GET /api/tools
func (h *Handler) ListTools(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]string{"tools": h.service.Tools()})
}

// InvokeTool runs a meeting tool outside of a conversation.
// POST /api/tools/:tool_name/invoke
func (h *Handler) InvokeTool(c echo.Context) error {
	toolName := c.Param("tool_name")
	var req ToolInvokeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	res, err := h.service.InvokeTool(c.Request().Context(), toolName, req.Args)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, ToolInvokeResponse{
		Tool:       toolName,
		Reply:      res.Reply,
		Collecting: string(res.Collecting),
	})
}
