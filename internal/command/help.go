package command

import (
	"context"

	"github.com/kapu/carfinder-bot-go/internal/adapter"
	"github.com/kapu/carfinder-bot-go/internal/domain"
)

// HelpCommand lists whatever is registered alongside it.
type HelpCommand struct {
	deps     *Dependencies
	registry *Registry
}

func NewHelpCommand(deps *Dependencies, registry *Registry) *HelpCommand {
	return &HelpCommand{deps: deps, registry: registry}
}

func (c *HelpCommand) Name() string {
	return "help"
}

func (c *HelpCommand) Description() string {
	return "Lists the available commands"
}

func (c *HelpCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, _ map[string]any) error {
	commands := c.registry.Commands()
	entries := make([]adapter.HelpEntry, 0, len(commands))
	for _, cmd := range commands {
		entries = append(entries, adapter.HelpEntry{Name: cmd.Name(), Description: cmd.Description()})
	}
	return cmdCtx.Surface.Notify(ctx, c.deps.Formatter.FormatHelp(entries))
}
