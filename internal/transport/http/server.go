// Package http provides the HTTP server for the meeting agent.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/xiaot623/meetagent/internal/service"
	v1 "github.com/xiaot623/meetagent/internal/transport/http/v1"
	"github.com/xiaot623/meetagent/internal/transport/ws"
)

// NewServer creates the public HTTP server: REST meeting API, chat turns and
// the WebSocket turn endpoint.
func NewServer(svc *service.Service, wsServer *ws.Server) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	v1.NewHandler(svc).RegisterRoutes(e)
	if wsServer != nil {
		e.GET("/ws/chat", wsServer.HandleWebSocket)
	}

	return e
}
