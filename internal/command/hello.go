package command

import (
	"context"

	"github.com/kapu/carfinder-bot-go/internal/domain"
)

type HelloCommand struct {
	deps *Dependencies
}

func NewHelloCommand(deps *Dependencies) *HelloCommand {
	return &HelloCommand{deps: deps}
}

func (c *HelloCommand) Name() string {
	return "hello"
}

func (c *HelloCommand) Description() string {
	return "Greets the sender"
}

func (c *HelloCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, _ map[string]any) error {
	return cmdCtx.Surface.Notify(ctx, c.deps.Formatter.FormatHello())
}
