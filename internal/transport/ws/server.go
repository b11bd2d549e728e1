// Package ws serves conversation turns over WebSocket. The client keeps the
// conversation history and sends it with every turn.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/xiaot623/meetagent/internal/domain"
)

// TurnHandler answers one conversation turn.
type TurnHandler interface {
	HandleTurn(ctx context.Context, req domain.TurnRequest) domain.TurnResponse
}

// Options tune socket timeouts and limits.
type Options struct {
	PingInterval   time.Duration
	WriteTimeout   time.Duration
	ReadTimeout    time.Duration
	MaxMessageSize int64
}

// Server handles WebSocket connections.
type Server struct {
	turns    TurnHandler
	opts     Options
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewServer creates a new WebSocket server.
func NewServer(turns TurnHandler, opts Options, logger zerolog.Logger) *Server {
	if opts.PingInterval <= 0 {
		opts.PingInterval = 30 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 60 * time.Second
	}
	if opts.MaxMessageSize <= 0 {
		opts.MaxMessageSize = 64 * 1024
	}
	return &Server{
		turns: turns,
		opts:  opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger.With().Str("component", "ws").Logger(),
	}
}

// HandleWebSocket handles WebSocket upgrade and connection lifecycle.
func (s *Server) HandleWebSocket(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return err
	}

	conn := newConnection("conn_"+uuid.NewString()[:8], ws)
	ws.SetReadLimit(s.opts.MaxMessageSize)

	_ = conn.SendJSON(ReadyFrame{
		BaseFrame:    BaseFrame{Type: TypeReady, Ts: time.Now().UnixMilli()},
		ConnectionID: conn.ID,
	})

	go s.writePump(conn)
	go s.turnLoop(conn)
	go s.readPump(conn)
	s.logger.Debug().Str("connection_id", conn.ID).Msg("websocket connected")
	return nil
}

// readPump reads frames from the WebSocket connection.
func (s *Server) readPump(conn *Connection) {
	defer func() {
		conn.Close()
		s.logger.Debug().Str("connection_id", conn.ID).Msg("websocket closed")
	}()

	_ = conn.Conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout))
	conn.Conn.SetPongHandler(func(string) error {
		return conn.Conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout))
	})

	for {
		_, message, err := conn.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn().Err(err).Str("connection_id", conn.ID).Msg("websocket read failed")
			}
			return
		}
		_ = conn.Conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout))
		s.handleFrame(conn, message)
	}
}

// writePump writes queued frames and keeps the connection alive with pings.
func (s *Server) writePump(conn *Connection) {
	ticker := time.NewTicker(s.opts.PingInterval)
	defer func() {
		ticker.Stop()
		_ = conn.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{}, s.opts.WriteTimeout)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message, s.opts.WriteTimeout); err != nil {
				s.logger.Warn().Err(err).Str("connection_id", conn.ID).Msg("websocket write failed")
				return
			}

		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil, s.opts.WriteTimeout); err != nil {
				return
			}
		}
	}
}

// turnLoop answers turns one at a time in arrival order.
func (s *Server) turnLoop(conn *Connection) {
	for frame := range conn.turns {
		resp := s.turns.HandleTurn(conn.ctx, frame.TurnRequest)
		if conn.ctx.Err() != nil {
			return
		}
		reply := ReplyFrame{
			BaseFrame:    BaseFrame{Type: TypeReply, Ts: time.Now().UnixMilli(), RequestID: frame.RequestID},
			TurnResponse: resp,
		}
		if err := conn.SendJSON(reply); err != nil {
			s.logger.Warn().Err(err).Str("connection_id", conn.ID).Msg("dropping reply")
		}
	}
}

func (s *Server) handleFrame(conn *Connection, data []byte) {
	var base BaseFrame
	if err := json.Unmarshal(data, &base); err != nil {
		s.sendError(conn, "", ErrorCodeInvalidMessage, "invalid JSON message")
		return
	}

	switch base.Type {
	case TypeTurn:
		var frame TurnFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			s.sendError(conn, base.RequestID, ErrorCodeInvalidMessage, "invalid turn message")
			return
		}
		if frame.Message == "" {
			s.sendError(conn, frame.RequestID, ErrorCodeInvalidMessage, "message is required")
			return
		}
		select {
		case conn.turns <- frame:
		default:
			s.sendError(conn, frame.RequestID, ErrorCodeBusy, "too many turns in flight")
		}
	default:
		s.sendError(conn, base.RequestID, ErrorCodeInvalidMessage, "unknown message type: "+base.Type)
	}
}

func (s *Server) sendError(conn *Connection, requestID, code, message string) {
	_ = conn.SendJSON(ErrorFrame{
		BaseFrame: BaseFrame{Type: TypeError, Ts: time.Now().UnixMilli(), RequestID: requestID},
		Code:      code,
		Message:   message,
	})
}
