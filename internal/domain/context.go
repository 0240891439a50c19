package domain

import "time"

// CommandContext describes one incoming command: who sent it, where, and the
// surface replies go through.
type CommandContext struct {
	Room        string
	RoomName    string
	Sender      string
	UserID      string
	IsGroupChat bool
	Message     string
	Timestamp   time.Time
	Surface     Surface
}

func NewCommandContext(room, roomName, sender, message string, isGroupChat bool) *CommandContext {
	return &CommandContext{
		Room:        room,
		RoomName:    roomName,
		Sender:      sender,
		UserID:      sender,
		IsGroupChat: isGroupChat,
		Message:     message,
		Timestamp:   time.Now(),
	}
}

// WithSurface attaches the reply surface and returns the context.
func (c *CommandContext) WithSurface(surface Surface) *CommandContext {
	c.Surface = surface
	return c
}

// WithUserID overrides the sender-derived user identity.
func (c *CommandContext) WithUserID(userID string) *CommandContext {
	if userID != "" {
		c.UserID = userID
	}
	return c
}
