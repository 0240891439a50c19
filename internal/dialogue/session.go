package dialogue

import (
	"fmt"

	"github.com/kapu/carfinder-bot-go/internal/domain"
)

// Session accumulates one flow's selections. Selections only widen: brand,
// then model, then year.
type Session struct {
	step  domain.Step
	brand string
	model string
	year  string
}

func NewSession() *Session {
	return &Session{step: domain.StepBrand}
}

func (s *Session) Step() domain.Step {
	return s.step
}

// Select records value for step and advances. Out-of-order selections are
// rejected and leave the session unchanged.
func (s *Session) Select(step domain.Step, value string) error {
	if step != s.step {
		return fmt.Errorf("cannot select %s while at %s", step, s.step)
	}

	switch step {
	case domain.StepBrand:
		s.brand = value
		s.step = domain.StepModel
	case domain.StepModel:
		s.model = value
		s.step = domain.StepYear
	case domain.StepYear:
		s.year = value
		s.step = domain.StepDone
	default:
		return fmt.Errorf("session already complete")
	}
	return nil
}

func (s *Session) Brand() string { return s.brand }
func (s *Session) Model() string { return s.model }

// Vehicle returns the full selection once every step is done.
func (s *Session) Vehicle() (domain.Vehicle, bool) {
	if s.step != domain.StepDone {
		return domain.Vehicle{}, false
	}
	return domain.Vehicle{Brand: s.brand, Model: s.model, Year: s.year}, true
}
