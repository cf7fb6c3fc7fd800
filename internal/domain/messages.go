package domain

// WebSocket message types from client.
const (
	MsgTypeAuth        = "auth"
	MsgTypeJoinStream  = "join_stream"
	MsgTypeLeaveStream = "leave_stream"
	MsgTypeChatMessage = "chat_message"
	MsgTypePing        = "ping"
)

// WebSocket message types to client.
const (
	MsgTypeAuthResult   = "auth_result"
	MsgTypeStreamJoined = "stream_joined"
	MsgTypeError        = "error"
	MsgTypePong         = "pong"
)

// Error codes
const (
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeInternalError = "INTERNAL_ERROR"
	ErrCodeNotInStream   = "NOT_IN_STREAM"
)

// BaseMessage is the base structure for all WebSocket messages.
type BaseMessage struct {
	Type string `json:"type"`
}

// Client -> Server messages

type AuthMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

type JoinStreamMessage struct {
	Type     string `json:"type"`
	StreamID string `json:"stream_id"`
}

type ChatMessageWS struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type LeaveStreamMessage struct {
	Type string `json:"type"`
}

// Server -> Client messages

type AuthResultMessage struct {
	Type     string `json:"type"`
	Success  bool   `json:"success"`
	UserID   string `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
	Message  string `json:"message,omitempty"`
}

type StreamJoinedMessage struct {
	Type        string `json:"type"`
	StreamID    string `json:"stream_id"`
	ViewerCount int    `json:"viewer_count"`
}

type ChatMessageOut struct {
	Type      string `json:"type"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	StreamID  string `json:"stream_id"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewErrorMessage(code, message string) *ErrorMessage {
	return &ErrorMessage{
		Type:    MsgTypeError,
		Code:    code,
		Message: message,
	}
}
