package types

import "github.com/erd-studio/engine/internal/editor"

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type Meta struct {
	RequestID string `json:"request_id,omitempty"`
	Page      int    `json:"page,omitempty"`
	PageSize  int    `json:"page_size,omitempty"`
	Total     int64  `json:"total,omitempty"`
}

// CommandResponse answers a diagram command with its result, if any, and the
// state after it was applied.
type CommandResponse struct {
	Result   interface{}     `json:"result,omitempty"`
	Snapshot editor.Snapshot `json:"snapshot"`
}

// LiveMessage is a server-to-client websocket frame.
type LiveMessage struct {
	Type     string           `json:"type"`
	Snapshot *editor.Snapshot `json:"snapshot,omitempty"`
	Result   interface{}      `json:"result,omitempty"`
	Error    *APIError        `json:"error,omitempty"`
}

const (
	LiveSnapshot = "snapshot"
	LiveResult   = "result"
	LiveError    = "error"
)
