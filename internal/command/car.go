package command

import (
	"context"
	stderrors "errors"

	"github.com/kapu/carfinder-bot-go/internal/domain"
	"github.com/kapu/carfinder-bot-go/internal/session"
	"github.com/kapu/carfinder-bot-go/pkg/errors"
	"go.uber.org/zap"
)

// CarCommand runs the brand, model and year dialogue for the sender.
type CarCommand struct {
	deps *Dependencies
}

func NewCarCommand(deps *Dependencies) *CarCommand {
	return &CarCommand{deps: deps}
}

func (c *CarCommand) Name() string {
	return "car"
}

func (c *CarCommand) Description() string {
	return "Browse the catalog and show a photo of the chosen car"
}

// Execute blocks for the whole dialogue. Endings the user has already been
// told about are logged, not returned.
func (c *CarCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, _ map[string]any) error {
	key := session.Key{Room: cmdCtx.Room, UserID: cmdCtx.UserID}

	release, ok := c.deps.Sessions.Begin(key)
	if !ok {
		c.deps.Logger.Info("Car search already running",
			zap.String("room", cmdCtx.Room),
			zap.String("user", cmdCtx.UserID),
		)
		return cmdCtx.Surface.Notify(ctx, c.deps.Formatter.FormatBusy())
	}
	defer release()

	image, err := c.deps.Flow.Run(ctx, cmdCtx.Surface, c.deps.Sessions.Inbox(key))
	if err == nil {
		c.deps.Logger.Info("Car search completed",
			zap.String("room", cmdCtx.Room),
			zap.String("user", cmdCtx.UserID),
			zap.String("vehicle", image.Vehicle.String()),
			zap.String("url", image.URL),
		)
		return nil
	}

	var dialogueErr *errors.DialogueError
	if stderrors.As(err, &dialogueErr) {
		c.deps.Logger.Info("Car search ended",
			zap.String("room", cmdCtx.Room),
			zap.String("user", cmdCtx.UserID),
			zap.String("step", dialogueErr.Step),
			zap.String("code", dialogueErr.Code),
			zap.Error(dialogueErr.Cause),
		)
		return nil
	}
	if ctx.Err() != nil {
		c.deps.Logger.Debug("Car search cancelled", zap.String("room", cmdCtx.Room), zap.Error(err))
		return nil
	}
	return err
}
