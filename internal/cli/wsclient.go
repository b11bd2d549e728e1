package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/xiaot623/meetagent/internal/domain"
	"github.com/xiaot623/meetagent/internal/transport/ws"
)

// WSClient sends turns over the WebSocket endpoint. It is not safe for
// concurrent use; a terminal only has one turn in flight.
type WSClient struct {
	conn         *websocket.Conn
	connectionID string
	seq          int
}

// DialWS connects to addr and waits for the ready frame.
func DialWS(ctx context.Context, addr string) (*WSClient, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	var ready ws.ReadyFrame
	if err := conn.ReadJSON(&ready); err != nil {
		conn.Close()
		return nil, fmt.Errorf("read ready: %w", err)
	}
	if ready.Type != ws.TypeReady {
		conn.Close()
		return nil, fmt.Errorf("expected ready, got: %s", ready.Type)
	}

	return &WSClient{conn: conn, connectionID: ready.ConnectionID}, nil
}

// Close closes the client connection.
func (c *WSClient) Close() error {
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}

// Turn sends req and waits for the reply carrying the same request id.
func (c *WSClient) Turn(ctx context.Context, req domain.TurnRequest) (domain.TurnResponse, error) {
	c.seq++
	requestID := fmt.Sprintf("req_%d", c.seq)

	frame := ws.TurnFrame{
		BaseFrame:   ws.BaseFrame{Type: ws.TypeTurn, Ts: time.Now().UnixMilli(), RequestID: requestID},
		TurnRequest: req,
	}
	if err := c.conn.WriteJSON(frame); err != nil {
		return domain.TurnResponse{}, fmt.Errorf("write turn: %w", err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetReadDeadline(deadline)
		defer c.conn.SetReadDeadline(time.Time{})
	}

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return domain.TurnResponse{}, fmt.Errorf("read reply: %w", err)
		}

		var base ws.BaseFrame
		if err := json.Unmarshal(data, &base); err != nil {
			return domain.TurnResponse{}, fmt.Errorf("unmarshal frame: %w", err)
		}
		if base.RequestID != requestID {
			continue
		}

		switch base.Type {
		case ws.TypeReply:
			var reply ws.ReplyFrame
			if err := json.Unmarshal(data, &reply); err != nil {
				return domain.TurnResponse{}, fmt.Errorf("unmarshal reply: %w", err)
			}
			return reply.TurnResponse, nil
		case ws.TypeError:
			var errFrame ws.ErrorFrame
			_ = json.Unmarshal(data, &errFrame)
			return domain.TurnResponse{}, fmt.Errorf("turn failed: %s - %s", errFrame.Code, errFrame.Message)
		}
	}
}
