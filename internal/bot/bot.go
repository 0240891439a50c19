// Package bot routes transport events to commands and running dialogues and
// owns the runtime lifecycle.
package bot

import (
	"context"
	"fmt"
	"sync"

	"github.com/kapu/carfinder-bot-go/internal/adapter"
	"github.com/kapu/carfinder-bot-go/internal/command"
	"github.com/kapu/carfinder-bot-go/internal/domain"
	"github.com/kapu/carfinder-bot-go/internal/health"
	"github.com/kapu/carfinder-bot-go/internal/session"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"
)

// Transport is a chat platform connection.
type Transport interface {
	Name() string
	// Start delivers events to handler until ctx ends.
	Start(ctx context.Context, handler domain.MessageHandler) error
	Stop() error
	Status() string
}

// Dependencies bundles everything NewBot wires together.
type Dependencies struct {
	Logger         *zap.Logger
	Transport      Transport
	Sessions       *session.Hub
	MessageAdapter *adapter.MessageAdapter
	Formatter      *adapter.ResponseFormatter
	Dispatcher     command.Dispatcher
	Health         *health.Server
	// Closers run in reverse order after the transport stops.
	Closers []func()
}

type Bot struct {
	logger         *zap.Logger
	transport      Transport
	sessions       *session.Hub
	messageAdapter *adapter.MessageAdapter
	formatter      *adapter.ResponseFormatter
	dispatcher     command.Dispatcher
	health         *health.Server
	closers        []func()

	flows   conc.WaitGroup
	mu      sync.RWMutex
	cancel  context.CancelFunc
	closing bool
}

func NewBot(deps *Dependencies) (*Bot, error) {
	if deps == nil {
		return nil, fmt.Errorf("dependencies must not be nil")
	}
	if deps.Transport == nil || deps.Sessions == nil || deps.MessageAdapter == nil ||
		deps.Formatter == nil || deps.Dispatcher == nil {
		return nil, fmt.Errorf("incomplete bot dependencies")
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Bot{
		logger:         logger,
		transport:      deps.Transport,
		sessions:       deps.Sessions,
		messageAdapter: deps.MessageAdapter,
		formatter:      deps.Formatter,
		dispatcher:     deps.Dispatcher,
		health:         deps.Health,
		closers:        deps.Closers,
	}, nil
}

// Start runs the transport until ctx ends or Shutdown is called.
func (b *Bot) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)

	b.mu.Lock()
	if b.closing {
		b.mu.Unlock()
		cancel()
		return fmt.Errorf("bot is shutting down")
	}
	b.cancel = cancel
	b.mu.Unlock()

	if b.health != nil {
		b.health.Start()
	}

	b.logger.Info("Bot started", zap.String("transport", b.transport.Name()))
	if err := b.transport.Start(runCtx, b); err != nil {
		return fmt.Errorf("%s transport: %w", b.transport.Name(), err)
	}
	return nil
}

// HandleMessage routes one message. While the sender has a dialogue running,
// the message is offered to it first: page-turn tokens as signals, anything
// else as the typed reply. Unclaimed commands are dispatched on their own
// goroutine.
func (b *Bot) HandleMessage(ctx context.Context, msg domain.IncomingMessage) {
	key := session.Key{Room: msg.Room, UserID: msg.UserID}

	if b.sessions.Active(key) && b.deliver(key, msg.Text) {
		return
	}

	parsed := b.messageAdapter.ParseMessage(msg.Text)
	if parsed.Type == domain.CommandUnknown {
		return
	}

	b.logger.Info("Command received",
		zap.String("command", parsed.Type.String()),
		zap.String("room", msg.Room),
		zap.String("room_name", msg.RoomName),
		zap.String("user", msg.Sender),
	)

	b.spawn(func() {
		b.dispatch(ctx, msg, parsed)
	})
}

// HandlePageTurn forwards a button press to the sender's waiting selection.
func (b *Bot) HandlePageTurn(room, userID, viewID string, kind domain.InputKind) bool {
	return b.sessions.DeliverSignal(session.Key{Room: room, UserID: userID}, viewID, kind)
}

func (b *Bot) deliver(key session.Key, text string) bool {
	if kind, ok := adapter.ParsePageTurn(text); ok {
		return b.sessions.DeliverSignal(key, "", kind)
	}
	return b.sessions.DeliverText(key, text)
}

func (b *Bot) spawn(fn func()) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closing {
		return
	}

	b.flows.Go(func() {
		var pc panics.Catcher
		pc.Try(fn)
		if r := pc.Recovered(); r != nil {
			b.logger.Error("Command panicked",
				zap.Error(r.AsError()),
				zap.ByteString("stack", r.Stack),
			)
		}
	})
}

func (b *Bot) dispatch(ctx context.Context, msg domain.IncomingMessage, parsed *adapter.ParsedCommand) {
	cmdCtx := msg.CommandContext()
	event := command.CommandEvent{
		Type:   parsed.Type,
		Params: map[string]any{"args": parsed.Args},
	}

	if _, err := b.dispatcher.Publish(ctx, cmdCtx, event); err != nil {
		if ctx.Err() != nil {
			return
		}
		b.logger.Error("Command failed",
			zap.String("command", parsed.Type.String()),
			zap.String("room", msg.Room),
			zap.Error(err),
		)
		if msg.Surface == nil {
			return
		}
		if notifyErr := msg.Surface.Notify(ctx, b.formatter.FormatError(err.Error())); notifyErr != nil {
			b.logger.Warn("Failed to report command error", zap.Error(notifyErr))
		}
	}
}

// Shutdown cancels running dialogues, waits for them until ctx ends, then
// stops the transport and releases resources.
func (b *Bot) Shutdown(ctx context.Context) error {
	b.mu.Lock()
	b.closing = true
	cancel := b.cancel
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		b.flows.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		b.logger.Warn("Shutdown deadline reached with dialogues still running")
	}

	var firstErr error
	if err := b.transport.Stop(); err != nil {
		b.logger.Warn("Failed to stop transport", zap.Error(err))
		firstErr = err
	}
	if b.health != nil {
		if err := b.health.Shutdown(ctx); err != nil {
			b.logger.Warn("Failed to stop health endpoint", zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}

	b.logger.Info("Bot stopped")
	return firstErr
}
