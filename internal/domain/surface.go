package domain

import "context"

// Surface is the outbound side of one chat room for one requesting user.
type Surface interface {
	// ShowPage posts a selection page and returns an identifier for later edits.
	ShowPage(ctx context.Context, page SelectionPage) (string, error)
	// ReplacePage re-renders a previously shown page.
	ReplacePage(ctx context.Context, viewID string, page SelectionPage) error
	// Notify sends a plain notice.
	Notify(ctx context.Context, text string) error
	// ShowVehicle sends the final result.
	ShowVehicle(ctx context.Context, image VehicleImage) error
}

// Inbox is the inbound side: it blocks until the requesting user replies or
// turns a page of viewID, whichever happens first.
type Inbox interface {
	Next(ctx context.Context, viewID string) (Input, error)
}

// IncomingMessage is a text message handed from a transport to the router.
type IncomingMessage struct {
	Room        string
	RoomName    string
	Sender      string
	UserID      string
	Text        string
	IsGroupChat bool
	Surface     Surface
}

// CommandContext converts the message into a command context.
func (m IncomingMessage) CommandContext() *CommandContext {
	return NewCommandContext(m.Room, m.RoomName, m.Sender, m.Text, m.IsGroupChat).
		WithUserID(m.UserID).
		WithSurface(m.Surface)
}

// MessageHandler receives inbound events from a chat transport. Both methods
// must return quickly; long work belongs on another goroutine.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg IncomingMessage)
	// HandlePageTurn reports whether the signal was claimed by a waiting
	// selection. An empty viewID matches any page.
	HandlePageTurn(room, userID, viewID string, kind InputKind) bool
}
