package command

import (
	"context"

	"github.com/kapu/carfinder-bot-go/internal/adapter"
	"github.com/kapu/carfinder-bot-go/internal/domain"
	"github.com/kapu/carfinder-bot-go/internal/session"
	"go.uber.org/zap"
)

type Command interface {
	Name() string
	Description() string
	Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error
}

// FlowRunner drives one selection dialogue to its end.
type FlowRunner interface {
	Run(ctx context.Context, surface domain.Surface, inbox domain.Inbox) (domain.VehicleImage, error)
}

// SessionGuard hands out per-user inboxes and refuses overlapping flows.
type SessionGuard interface {
	Begin(key session.Key) (release func(), ok bool)
	Inbox(key session.Key) domain.Inbox
}

type Dependencies struct {
	Flow      FlowRunner
	Sessions  SessionGuard
	Formatter *adapter.ResponseFormatter
	Logger    *zap.Logger
}

// CommandEvent is one parsed command waiting for dispatch.
type CommandEvent struct {
	Type   domain.CommandType
	Params map[string]any
}

// Dispatcher executes command events against a registry.
type Dispatcher interface {
	Publish(ctx context.Context, cmdCtx *domain.CommandContext, events ...CommandEvent) (int, error)
}

// DefaultNormalize maps a command type onto the registry key of the same name.
func DefaultNormalize(cmdType domain.CommandType, params map[string]any) (string, map[string]any) {
	return cmdType.String(), params
}

// NewDefaultRegistry registers every built-in command.
func NewDefaultRegistry(deps *Dependencies) *Registry {
	registry := NewRegistry()
	registry.Register(NewCarCommand(deps))
	registry.Register(NewHelloCommand(deps))
	registry.Register(NewHelpCommand(deps, registry))
	return registry
}
