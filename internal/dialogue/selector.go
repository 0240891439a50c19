package dialogue

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/kapu/carfinder-bot-go/internal/constants"
	"github.com/kapu/carfinder-bot-go/internal/domain"
	"go.uber.org/zap"
)

// Prompt describes one selection step.
type Prompt struct {
	Step    domain.Step
	Title   string
	Text    string
	Options []string
}

// Selector runs a single paginated selection against one user's surface and
// inbox. It never returns without an outcome.
type Selector struct {
	surface  domain.Surface
	inbox    domain.Inbox
	pageSize int
	timeout  time.Duration
	logger   *zap.Logger
}

func NewSelector(surface domain.Surface, inbox domain.Inbox, pageSize int, timeout time.Duration, logger *zap.Logger) *Selector {
	if pageSize <= 0 {
		pageSize = constants.PaginationConfig.ItemsPerPage
	}
	if timeout <= 0 {
		timeout = constants.PaginationConfig.Timeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{
		surface:  surface,
		inbox:    inbox,
		pageSize: pageSize,
		timeout:  timeout,
		logger:   logger,
	}
}

// Run shows the first page and waits until the user picks an option, the
// wait window elapses, or ctx is cancelled. Every wait gets a fresh window.
func (s *Selector) Run(ctx context.Context, prompt Prompt) domain.Outcome {
	if len(prompt.Options) == 0 {
		s.logger.Warn("Selection has no options", zap.String("step", prompt.Step.String()))
		return domain.Aborted()
	}

	pager := NewPaginator(prompt.Options, s.pageSize)
	viewID, err := s.surface.ShowPage(ctx, s.render(prompt, pager))
	if err != nil {
		s.logger.Error("Failed to show selection page", zap.String("step", prompt.Step.String()), zap.Error(err))
		return domain.Aborted()
	}

	for {
		if ctx.Err() != nil {
			return domain.Aborted()
		}

		input, err := s.wait(ctx, viewID)
		if err != nil {
			if ctx.Err() == nil && stderrors.Is(err, context.DeadlineExceeded) {
				s.logger.Info("Selection timed out", zap.String("step", prompt.Step.String()))
				return domain.TimedOut()
			}
			s.logger.Debug("Selection aborted", zap.String("step", prompt.Step.String()), zap.Error(err))
			return domain.Aborted()
		}

		switch input.Kind {
		case domain.InputNextPage, domain.InputPrevPage:
			moved := pager.Next
			if input.Kind == domain.InputPrevPage {
				moved = pager.Prev
			}
			if !moved() {
				continue
			}
			if err := s.surface.ReplacePage(ctx, viewID, s.render(prompt, pager)); err != nil {
				s.logger.Warn("Failed to re-render selection page",
					zap.String("step", prompt.Step.String()),
					zap.Int("page", pager.Index()),
					zap.Error(err),
				)
			}

		case domain.InputText:
			if value, ok := pager.Match(input.Text); ok {
				s.logger.Debug("Selection resolved",
					zap.String("step", prompt.Step.String()),
					zap.String("value", value),
				)
				return domain.Resolved(value)
			}
			if err := s.surface.Notify(ctx, MsgInvalidSelection); err != nil {
				s.logger.Warn("Failed to send invalid selection notice", zap.Error(err))
			}
		}
	}
}

func (s *Selector) wait(ctx context.Context, viewID string) (domain.Input, error) {
	waitCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.inbox.Next(waitCtx, viewID)
}

func (s *Selector) render(prompt Prompt, pager *Paginator) domain.SelectionPage {
	return domain.SelectionPage{
		Step:    prompt.Step,
		Title:   prompt.Title,
		Prompt:  prompt.Text,
		Options: pager.Page(),
		Index:   pager.Index(),
		Total:   pager.Total(),
	}
}
