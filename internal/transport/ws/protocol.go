package ws

import "github.com/xiaot623/meetagent/internal/domain"

// Frame types from client to server
const (
	TypeTurn = "turn"
)

// Frame types from server to client
const (
	TypeReady = "ready"
	TypeReply = "reply"
	TypeError = "error"
)

// Error codes
const (
	ErrorCodeInvalidMessage = "invalid_message"
	ErrorCodeBusy           = "busy"
)

// BaseFrame contains common fields for all frames.
type BaseFrame struct {
	Type      string `json:"type"`
	Ts        int64  `json:"ts,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// ReadyFrame is sent once the connection is upgraded.
type ReadyFrame struct {
	BaseFrame
	ConnectionID string `json:"connection_id"`
}

// TurnFrame carries one user utterance and the history the client holds.
type TurnFrame struct {
	BaseFrame
	domain.TurnRequest
}

// ReplyFrame answers a TurnFrame with the same request id.
type ReplyFrame struct {
	BaseFrame
	domain.TurnResponse
}

// ErrorFrame reports a protocol problem. Turn failures are replies, not errors.
type ErrorFrame struct {
	BaseFrame
	Code    string `json:"code"`
	Message string `json:"message"`
}
