package iris

type Config struct {
	Port              int    `json:"port"`
	PollingSpeed      int    `json:"pollingSpeed"`
	MessageRate       int    `json:"messageRate"`
	WebserverEndpoint string `json:"webserverEndpoint"`
}

type ReplyRequest struct {
	Type string `json:"type"`
	Room string `json:"room"`
	Data string `json:"data"`
}

type Message struct {
	Msg    string       `json:"msg"`
	Room   string       `json:"room"`
	Sender *string      `json:"sender,omitempty"`
	JSON   *MessageJSON `json:"json,omitempty"`
}

type MessageJSON struct {
	UserID    string `json:"user_id,omitempty"`
	Message   string `json:"message,omitempty"`
	ChatID    string `json:"chat_id,omitempty"`
	Type      string `json:"type,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// SenderName returns the display name, or "" when Iris omitted it.
func (m *Message) SenderName() string {
	if m.Sender == nil {
		return ""
	}
	return *m.Sender
}

// UserID prefers the stable KakaoTalk user id over the display name.
func (m *Message) UserID() string {
	if m.JSON != nil && m.JSON.UserID != "" {
		return m.JSON.UserID
	}
	return m.SenderName()
}

// ChatID is the room identifier replies are addressed to.
func (m *Message) ChatID() string {
	if m.JSON != nil && m.JSON.ChatID != "" {
		return m.JSON.ChatID
	}
	return m.Room
}

type WebSocketState string

const (
	WSStateConnecting   WebSocketState = "CONNECTING"
	WSStateConnected    WebSocketState = "CONNECTED"
	WSStateDisconnected WebSocketState = "DISCONNECTED"
	WSStateReconnecting WebSocketState = "RECONNECTING"
	WSStateFailed       WebSocketState = "FAILED"
)

func (s WebSocketState) String() string {
	return string(s)
}
