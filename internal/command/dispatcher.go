package command

import (
	"context"
	"time"

	"github.com/kapu/carfinder-bot-go/internal/domain"
	"go.uber.org/zap"
)

// NormalizeFunc converts a domain command type plus params into the registry key
// and normalized parameter map used for execution.
type NormalizeFunc func(domain.CommandType, map[string]any) (string, map[string]any)

type sequentialDispatcher struct {
	registry  *Registry
	normalize NormalizeFunc
	logger    *zap.Logger
}

// NewSequentialDispatcher executes events in order and stops at the first
// failure. A nil normalize maps each type onto the key of the same name.
func NewSequentialDispatcher(registry *Registry, normalize NormalizeFunc, logger *zap.Logger) Dispatcher {
	if normalize == nil {
		normalize = DefaultNormalize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &sequentialDispatcher{registry: registry, normalize: normalize, logger: logger}
}

func (d *sequentialDispatcher) Publish(ctx context.Context, cmdCtx *domain.CommandContext, events ...CommandEvent) (int, error) {
	if d == nil || d.registry == nil {
		return 0, nil
	}

	executed := 0
	for _, event := range events {
		if event.Type == domain.CommandUnknown {
			continue
		}

		key, params := d.normalize(event.Type, cloneParams(event.Params))
		started := time.Now()
		err := d.registry.Execute(ctx, cmdCtx, key, params)
		d.logger.Debug("Command finished",
			zap.String("command", key),
			zap.String("room", cmdCtx.Room),
			zap.Duration("elapsed", time.Since(started)),
			zap.Bool("ok", err == nil),
		)
		if err != nil {
			return executed, err
		}
		executed++
	}
	return executed, nil
}

func cloneParams(src map[string]any) map[string]any {
	clone := make(map[string]any, len(src))
	for k, v := range src {
		clone[k] = v
	}
	return clone
}
