package dialogue

import (
	"context"
	"fmt"
	"sync"

	"github.com/kapu/carfinder-bot-go/internal/domain"
)

type fakeSurface struct {
	mu       sync.Mutex
	shown    []domain.SelectionPage
	replaced []domain.SelectionPage
	notices  []string
	vehicles []domain.VehicleImage
	views    int
}

func (s *fakeSurface) ShowPage(_ context.Context, page domain.SelectionPage) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views++
	s.shown = append(s.shown, page)
	return fmt.Sprintf("view-%d", s.views), nil
}

func (s *fakeSurface) ReplacePage(_ context.Context, _ string, page domain.SelectionPage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaced = append(s.replaced, page)
	return nil
}

func (s *fakeSurface) Notify(_ context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, text)
	return nil
}

func (s *fakeSurface) ShowVehicle(_ context.Context, image domain.VehicleImage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vehicles = append(s.vehicles, image)
	return nil
}

// scriptedInbox replays inputs in order, then blocks until the wait expires.
type scriptedInbox struct {
	inputs []domain.Input
	waits  int
}

func (in *scriptedInbox) Next(ctx context.Context, _ string) (domain.Input, error) {
	in.waits++
	if len(in.inputs) > 0 {
		next := in.inputs[0]
		in.inputs = in.inputs[1:]
		return next, nil
	}
	<-ctx.Done()
	return domain.Input{}, ctx.Err()
}

func texts(values ...string) []domain.Input {
	out := make([]domain.Input, len(values))
	for i, v := range values {
		out[i] = domain.TextInput(v)
	}
	return out
}

func numbered(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%02d", prefix, i+1)
	}
	return out
}

type stubCatalog struct {
	brands []string
	models map[string][]string
	years  map[string][]string
}

func (c *stubCatalog) Brands() []string { return c.brands }

func (c *stubCatalog) Models(brand string) ([]string, bool) {
	m, ok := c.models[brand]
	return m, ok
}

func (c *stubCatalog) Years(brand, model string) ([]string, bool) {
	y, ok := c.years[brand+"/"+model]
	return y, ok
}

func (c *stubCatalog) Brand(text string) (string, bool) {
	return find(c.brands, text)
}

func (c *stubCatalog) Model(brand, text string) (string, bool) {
	return find(c.models[brand], text)
}

func (c *stubCatalog) Year(brand, model, text string) (string, bool) {
	return find(c.years[brand+"/"+model], text)
}

func find(list []string, text string) (string, bool) {
	for _, v := range list {
		if v == text {
			return v, true
		}
	}
	return "", false
}

type recordingResolver struct {
	calls []domain.Vehicle
	url   string
	err   error
}

func (r *recordingResolver) Resolve(_ context.Context, v domain.Vehicle) (domain.VehicleImage, error) {
	r.calls = append(r.calls, v)
	if r.err != nil {
		return domain.VehicleImage{}, r.err
	}
	return domain.VehicleImage{Vehicle: v, URL: r.url}, nil
}
