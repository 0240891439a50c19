package iris

import (
	"context"

	"github.com/kapu/carfinder-bot-go/internal/adapter"
	"github.com/kapu/carfinder-bot-go/internal/config"
	"github.com/kapu/carfinder-bot-go/internal/domain"
	"go.uber.org/zap"
)

// replier is the subset of Client a surface needs.
type replier interface {
	SendMessage(ctx context.Context, room, message string) error
	SendImage(ctx context.Context, room, imageBase64 string) error
	FetchImage(ctx context.Context, imageURL string) (string, error)
}

// Transport connects the bot to KakaoTalk through Iris. Iris cannot edit a
// sent message, so page changes repost the page and page turns are typed.
type Transport struct {
	client    replier
	api       *Client
	events    *EventStream
	formatter *adapter.ResponseFormatter
	logger    *zap.Logger
}

func NewTransport(client *Client, events *EventStream, formatter *adapter.ResponseFormatter, logger *zap.Logger) *Transport {
	return &Transport{
		client:    client,
		api:       client,
		events:    events,
		formatter: formatter,
		logger:    logger,
	}
}

func (t *Transport) Name() string {
	return config.TransportIris
}

// Start feeds Iris events to handler and blocks until ctx ends. A stream
// that gives up stays FAILED for health checks instead of stopping the bot.
func (t *Transport) Start(ctx context.Context, handler domain.MessageHandler) error {
	err := t.events.Run(ctx, func(message *Message) {
		handler.HandleMessage(ctx, t.incoming(message))
	})
	if err != nil {
		t.logger.Error("Iris event stream stopped", zap.Error(err))
	}

	<-ctx.Done()
	return nil
}

func (t *Transport) Stop() error {
	return t.events.Close()
}

func (t *Transport) Status() string {
	return t.events.State().String()
}

// Ping reports whether the Iris REST API answers.
func (t *Transport) Ping(ctx context.Context) bool {
	return t.api != nil && t.api.Ping(ctx)
}

func (t *Transport) incoming(message *Message) domain.IncomingMessage {
	room := message.ChatID()
	return domain.IncomingMessage{
		Room:        room,
		RoomName:    message.Room,
		Sender:      message.SenderName(),
		UserID:      message.UserID(),
		Text:        message.Msg,
		IsGroupChat: message.Room != message.SenderName(),
		Surface:     t.Surface(room),
	}
}

// Surface returns the reply surface for room.
func (t *Transport) Surface(room string) domain.Surface {
	return &surface{transport: t, room: room}
}

type surface struct {
	transport *Transport
	room      string
}

// ShowPage returns an empty view id: typed page turns apply to whatever page
// the user last saw.
func (s *surface) ShowPage(ctx context.Context, page domain.SelectionPage) (string, error) {
	return "", s.transport.client.SendMessage(ctx, s.room, s.transport.formatter.FormatSelectionPage(page, true))
}

func (s *surface) ReplacePage(ctx context.Context, _ string, page domain.SelectionPage) error {
	return s.transport.client.SendMessage(ctx, s.room, s.transport.formatter.FormatSelectionPage(page, true))
}

func (s *surface) Notify(ctx context.Context, text string) error {
	return s.transport.client.SendMessage(ctx, s.room, text)
}

// ShowVehicle relays the photo when it can be downloaded and always sends the
// caption with the link.
func (s *surface) ShowVehicle(ctx context.Context, image domain.VehicleImage) error {
	data, err := s.transport.client.FetchImage(ctx, image.URL)
	if err == nil {
		err = s.transport.client.SendImage(ctx, s.room, data)
	}
	if err != nil {
		s.transport.logger.Warn("Image relay failed, sending link only",
			zap.String("room", s.room),
			zap.String("url", image.URL),
			zap.Error(err),
		)
	}
	return s.transport.client.SendMessage(ctx, s.room, s.transport.formatter.FormatVehicleMessage(image))
}
