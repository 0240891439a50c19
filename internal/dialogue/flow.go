// Package dialogue drives the brand, model and year selection conversation.
package dialogue

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/kapu/carfinder-bot-go/internal/domain"
	"github.com/kapu/carfinder-bot-go/pkg/errors"
	"go.uber.org/zap"
)

// Catalog is the read-only vehicle index a flow browses.
type Catalog interface {
	Brands() []string
	Models(brand string) ([]string, bool)
	Years(brand, model string) ([]string, bool)
	Brand(text string) (string, bool)
	Model(brand, text string) (string, bool)
	Year(brand, model, text string) (string, bool)
}

// ImageResolver finds an image for a fully selected vehicle.
type ImageResolver interface {
	Resolve(ctx context.Context, vehicle domain.Vehicle) (domain.VehicleImage, error)
}

type FlowConfig struct {
	PageSize int
	Timeout  time.Duration
}

// Flow runs the three selection steps and then the image lookup.
type Flow struct {
	catalog  Catalog
	resolver ImageResolver
	cfg      FlowConfig
	logger   *zap.Logger
}

func NewFlow(catalog Catalog, resolver ImageResolver, cfg FlowConfig, logger *zap.Logger) *Flow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Flow{
		catalog:  catalog,
		resolver: resolver,
		cfg:      cfg,
		logger:   logger,
	}
}

// Run drives one user through the dialogue. Every terminal outcome is
// reported on surface before Run returns. The returned error is a
// *errors.DialogueError for user-facing endings and ctx.Err() on shutdown.
func (f *Flow) Run(ctx context.Context, surface domain.Surface, inbox domain.Inbox) (domain.VehicleImage, error) {
	selector := NewSelector(surface, inbox, f.cfg.PageSize, f.cfg.Timeout, f.logger)
	session := NewSession()

	for session.Step() != domain.StepDone {
		step := session.Step()

		prompt, ok := f.prompt(session)
		if !ok {
			return f.fail(ctx, surface, step, errors.CodeInvalidSelection, errors.ErrInvalidSelection, MsgNoOptions)
		}

		outcome := selector.Run(ctx, prompt)
		switch outcome.Kind {
		case domain.OutcomeTimedOut:
			return f.fail(ctx, surface, step, errors.CodeDialogueTimeout, errors.ErrDialogueTimeout, MsgTimedOut)
		case domain.OutcomeAborted:
			if err := ctx.Err(); err != nil {
				return domain.VehicleImage{}, err
			}
			return f.fail(ctx, surface, step, errors.CodeInvalidSelection, errors.ErrInvalidSelection, MsgNoOptions)
		}

		value, ok := f.validate(session, outcome.Value)
		if !ok {
			f.logger.Warn("Selection not in catalog",
				zap.String("step", step.String()),
				zap.String("value", outcome.Value),
			)
			return f.fail(ctx, surface, step, errors.CodeInvalidSelection, errors.ErrInvalidSelection, MsgNotInCatalog)
		}
		if err := session.Select(step, value); err != nil {
			return f.fail(ctx, surface, step, errors.CodeInvalidSelection, err, MsgNotInCatalog)
		}
	}

	vehicle, _ := session.Vehicle()
	f.logger.Info("Vehicle selected", zap.String("vehicle", vehicle.String()))

	image, err := f.resolver.Resolve(ctx, vehicle)
	if err != nil {
		if ctx.Err() != nil {
			return domain.VehicleImage{}, ctx.Err()
		}
		if !stderrors.Is(err, errors.ErrImageNotFound) {
			err = errors.NewImageNotFound(vehicle.Query(), err)
		}
		return f.fail(ctx, surface, domain.StepDone, errors.CodeImageNotFound, err, MsgNoImage)
	}

	if err := surface.ShowVehicle(ctx, image); err != nil {
		return domain.VehicleImage{}, err
	}
	return image, nil
}

func (f *Flow) prompt(s *Session) (Prompt, bool) {
	switch s.Step() {
	case domain.StepBrand:
		return Prompt{Step: domain.StepBrand, Title: titleBrands, Text: brandPrompt(), Options: f.catalog.Brands()}, true
	case domain.StepModel:
		models, ok := f.catalog.Models(s.Brand())
		return Prompt{Step: domain.StepModel, Title: titleModels, Text: modelPrompt(s.Brand()), Options: models}, ok && len(models) > 0
	case domain.StepYear:
		years, ok := f.catalog.Years(s.Brand(), s.Model())
		return Prompt{Step: domain.StepYear, Title: titleYears, Text: yearPrompt(s.Brand(), s.Model()), Options: years}, ok && len(years) > 0
	}
	return Prompt{}, false
}

// validate re-checks a resolved option against the catalog and returns its
// canonical spelling.
func (f *Flow) validate(s *Session, value string) (string, bool) {
	switch s.Step() {
	case domain.StepBrand:
		return f.catalog.Brand(value)
	case domain.StepModel:
		return f.catalog.Model(s.Brand(), value)
	case domain.StepYear:
		return f.catalog.Year(s.Brand(), s.Model(), value)
	}
	return "", false
}

func (f *Flow) fail(ctx context.Context, surface domain.Surface, step domain.Step, code string, cause error, notice string) (domain.VehicleImage, error) {
	if err := surface.Notify(ctx, notice); err != nil {
		f.logger.Warn("Failed to send dialogue notice", zap.String("notice", notice), zap.Error(err))
	}
	return domain.VehicleImage{}, errors.NewDialogueError(code, step.String(), cause)
}
