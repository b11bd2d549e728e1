package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/meetagent/internal/domain"
)

type echoTurns struct {
	mu   sync.Mutex
	seen []domain.TurnRequest
}

func (e *echoTurns) HandleTurn(ctx context.Context, req domain.TurnRequest) domain.TurnResponse {
	e.mu.Lock()
	e.seen = append(e.seen, req)
	e.mu.Unlock()
	return domain.TurnResponse{
		Response:          "heard: " + req.Message,
		ConversationState: domain.ConversationState{Collecting: domain.CollectingMeeting},
	}
}

func dial(t *testing.T, turns TurnHandler) *websocket.Conn {
	t.Helper()
	e := echo.New()
	srv := NewServer(turns, Options{PingInterval: time.Second}, zerolog.Nop())
	e.GET("/ws/chat", srv.HandleWebSocket)

	ts := httptest.NewServer(e)
	t.Cleanup(ts.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws/chat", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var ready ReadyFrame
	require.NoError(t, conn.ReadJSON(&ready))
	assert.Equal(t, TypeReady, ready.Type)
	assert.True(t, strings.HasPrefix(ready.ConnectionID, "conn_"))
	return conn
}

func TestTurnRoundTrip(t *testing.T) {
	turns := &echoTurns{}
	conn := dial(t, turns)

	history := []domain.ConversationMessage{{Role: domain.RoleUser, Content: "hi"}, {Role: domain.RoleAssistant, Content: "hello"}}
	for i, msg := range []string{"schedule a meeting", "tomorrow at 9"} {
		require.NoError(t, conn.WriteJSON(TurnFrame{
			BaseFrame:   BaseFrame{Type: TypeTurn, RequestID: string(rune('a' + i))},
			TurnRequest: domain.TurnRequest{Message: msg, ConversationHistory: history},
		}))

		var reply ReplyFrame
		require.NoError(t, conn.ReadJSON(&reply))
		assert.Equal(t, TypeReply, reply.Type)
		assert.Equal(t, string(rune('a'+i)), reply.RequestID)
		assert.Equal(t, "heard: "+msg, reply.Response)
		assert.Equal(t, domain.CollectingMeeting, reply.ConversationState.Collecting)
	}

	turns.mu.Lock()
	defer turns.mu.Unlock()
	require.Len(t, turns.seen, 2)
	assert.Equal(t, history, turns.seen[1].ConversationHistory)
}

func TestInvalidFrames(t *testing.T) {
	conn := dial(t, &echoTurns{})

	for _, tt := range []struct {
		raw  string
		want string
	}{
		{`not json`, "invalid JSON message"},
		{`{"type":"shout"}`, "unknown message type: shout"},
		{`{"type":"turn","request_id":"r1","message":""}`, "message is required"},
	} {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(tt.raw)))
		var frame ErrorFrame
		require.NoError(t, conn.ReadJSON(&frame))
		assert.Equal(t, TypeError, frame.Type)
		assert.Equal(t, ErrorCodeInvalidMessage, frame.Code)
		assert.Equal(t, tt.want, frame.Message)
	}
}
