// Package telegram connects the bot to the Telegram Bot API.
package telegram

import (
	"context"
	"strconv"
	"strings"

	"github.com/kapu/carfinder-bot-go/internal/adapter"
	"github.com/kapu/carfinder-bot-go/internal/config"
	"github.com/kapu/carfinder-bot-go/internal/domain"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	uniquePrev = "page_prev"
	uniqueNext = "page_next"
)

// sender is the subset of *tele.Bot used to post and edit messages.
type sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Transport polls Telegram for updates. Page turns arrive as inline keyboard
// callbacks and pages are edited in place.
type Transport struct {
	bot       *tele.Bot
	api       sender
	formatter *adapter.ResponseFormatter
	logger    *zap.Logger
	prevBtn   tele.Btn
	nextBtn   tele.Btn
}

func NewTransport(cfg config.TelegramConfig, formatter *adapter.ResponseFormatter, logger *zap.Logger) (*Transport, error) {
	t := newTransport(nil, formatter, logger)

	b, err := tele.NewBot(tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: cfg.PollTimeout},
		OnError: func(err error, c tele.Context) {
			fields := []zap.Field{zap.Error(err)}
			if c != nil && c.Chat() != nil {
				fields = append(fields, zap.Int64("chat", c.Chat().ID))
			}
			logger.Error("Telegram handler error", fields...)
		},
	})
	if err != nil {
		return nil, err
	}

	t.bot = b
	t.api = b
	logger.Info("Telegram bot authorized", zap.String("username", b.Me.Username))
	return t, nil
}

func newTransport(api sender, formatter *adapter.ResponseFormatter, logger *zap.Logger) *Transport {
	if logger == nil {
		logger = zap.NewNop()
	}
	markup := &tele.ReplyMarkup{}
	return &Transport{
		api:       api,
		formatter: formatter,
		logger:    logger,
		prevBtn:   markup.Data("◀", uniquePrev),
		nextBtn:   markup.Data("▶", uniqueNext),
	}
}

func (t *Transport) Name() string {
	return config.TransportTelegram
}

// Start registers handlers and polls until ctx ends.
func (t *Transport) Start(ctx context.Context, handler domain.MessageHandler) error {
	t.bot.Handle(tele.OnText, t.onText(ctx, handler))
	t.bot.Handle(&t.prevBtn, t.onPageTurn(handler, domain.InputPrevPage))
	t.bot.Handle(&t.nextBtn, t.onPageTurn(handler, domain.InputNextPage))

	go t.bot.Start()
	t.logger.Info("Telegram polling started")

	<-ctx.Done()
	return nil
}

func (t *Transport) Stop() error {
	if t.bot != nil {
		t.bot.Stop()
	}
	return nil
}

func (t *Transport) Status() string {
	if t.bot == nil {
		return "DISCONNECTED"
	}
	return "POLLING"
}

func (t *Transport) onText(ctx context.Context, handler domain.MessageHandler) tele.HandlerFunc {
	return func(c tele.Context) error {
		chat, user := c.Chat(), c.Sender()
		if chat == nil || user == nil {
			return nil
		}

		handler.HandleMessage(ctx, domain.IncomingMessage{
			Room:        chatKey(chat.ID),
			RoomName:    chatTitle(chat),
			Sender:      displayName(user),
			UserID:      strconv.FormatInt(user.ID, 10),
			Text:        c.Text(),
			IsGroupChat: chat.Type != tele.ChatPrivate,
			Surface:     t.Surface(chat.ID),
		})
		return nil
	}
}

// onPageTurn always answers the callback so the client stops its spinner,
// whether or not a waiting selection claimed the press.
func (t *Transport) onPageTurn(handler domain.MessageHandler, kind domain.InputKind) tele.HandlerFunc {
	return func(c tele.Context) error {
		cb, user := c.Callback(), c.Sender()
		if cb == nil || cb.Message == nil || user == nil {
			return c.Respond()
		}

		claimed := handler.HandlePageTurn(
			chatKey(cb.Message.Chat.ID),
			strconv.FormatInt(user.ID, 10),
			strconv.Itoa(cb.Message.ID),
			kind,
		)
		if !claimed {
			t.logger.Debug("Page turn not claimed",
				zap.Int64("chat", cb.Message.Chat.ID),
				zap.Int64("user", user.ID),
			)
		}
		return c.Respond()
	}
}

// Surface returns the reply surface for a chat.
func (t *Transport) Surface(chatID int64) domain.Surface {
	return &surface{transport: t, chat: tele.ChatID(chatID)}
}

type surface struct {
	transport *Transport
	chat      tele.ChatID
}

func (s *surface) ShowPage(_ context.Context, page domain.SelectionPage) (string, error) {
	msg, err := s.transport.api.Send(s.chat, s.transport.formatter.FormatSelectionPage(page, false), s.transport.pageOptions(page)...)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(msg.ID), nil
}

func (s *surface) ReplacePage(_ context.Context, viewID string, page domain.SelectionPage) error {
	stored := tele.StoredMessage{MessageID: viewID, ChatID: int64(s.chat)}
	_, err := s.transport.api.Edit(stored, s.transport.formatter.FormatSelectionPage(page, false), s.transport.pageOptions(page)...)
	return err
}

func (s *surface) Notify(_ context.Context, text string) error {
	_, err := s.transport.api.Send(s.chat, text)
	return err
}

// ShowVehicle sends the photo by URL, falling back to a text link when
// Telegram cannot fetch it.
func (s *surface) ShowVehicle(_ context.Context, image domain.VehicleImage) error {
	photo := &tele.Photo{
		File:    tele.FromURL(image.URL),
		Caption: s.transport.formatter.FormatVehicleCaption(image),
	}
	if _, err := s.transport.api.Send(s.chat, photo); err != nil {
		s.transport.logger.Warn("Photo send failed, sending link",
			zap.String("url", image.URL),
			zap.Error(err),
		)
		_, err = s.transport.api.Send(s.chat, s.transport.formatter.FormatVehicleMessage(image))
		return err
	}
	return nil
}

// pageOptions attaches a ◀/▶ keyboard with only the directions that exist.
func (t *Transport) pageOptions(page domain.SelectionPage) []interface{} {
	var row tele.Row
	if page.HasPrev() {
		row = append(row, t.prevBtn)
	}
	if page.HasNext() {
		row = append(row, t.nextBtn)
	}
	if len(row) == 0 {
		return nil
	}

	markup := &tele.ReplyMarkup{}
	markup.Inline(row)
	return []interface{}{markup}
}

func chatKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

func chatTitle(chat *tele.Chat) string {
	if chat.Title != "" {
		return chat.Title
	}
	return chat.Username
}

func displayName(user *tele.User) string {
	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if name == "" {
		return user.Username
	}
	return name
}
