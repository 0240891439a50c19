package command

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kapu/carfinder-bot-go/internal/adapter"
	"github.com/kapu/carfinder-bot-go/internal/domain"
	"github.com/kapu/carfinder-bot-go/internal/session"
	"github.com/kapu/carfinder-bot-go/pkg/errors"
	"go.uber.org/zap"
)

type noticeSurface struct {
	mu      sync.Mutex
	notices []string
}

func (s *noticeSurface) ShowPage(context.Context, domain.SelectionPage) (string, error) {
	return "view", nil
}

func (s *noticeSurface) ReplacePage(context.Context, string, domain.SelectionPage) error {
	return nil
}

func (s *noticeSurface) Notify(_ context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, text)
	return nil
}

func (s *noticeSurface) ShowVehicle(context.Context, domain.VehicleImage) error {
	return nil
}

type fakeFlow struct {
	err     error
	started chan struct{}
	block   chan struct{}
	calls   int
}

func (f *fakeFlow) Run(ctx context.Context, _ domain.Surface, _ domain.Inbox) (domain.VehicleImage, error) {
	f.calls++
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return domain.VehicleImage{}, ctx.Err()
		}
	}
	return domain.VehicleImage{}, f.err
}

func newDeps(flow FlowRunner) *Dependencies {
	return &Dependencies{
		Flow:      flow,
		Sessions:  session.NewHub(nil),
		Formatter: adapter.NewResponseFormatter("/", 30*time.Second),
		Logger:    zap.NewNop(),
	}
}

func newCmdCtx(surface domain.Surface) *domain.CommandContext {
	return domain.NewCommandContext("room-1", "Garage", "alice", "/car", true).WithSurface(surface)
}

func TestDispatcherRunsRegisteredCommands(t *testing.T) {
	surface := &noticeSurface{}
	registry := NewDefaultRegistry(newDeps(&fakeFlow{}))
	dispatcher := NewSequentialDispatcher(registry, nil, zap.NewNop())

	executed, err := dispatcher.Publish(context.Background(), newCmdCtx(surface),
		CommandEvent{Type: domain.CommandHello},
		CommandEvent{Type: domain.CommandUnknown},
		CommandEvent{Type: domain.CommandHelp},
	)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if executed != 2 {
		t.Fatalf("executed = %d, want 2", executed)
	}
	if len(surface.notices) != 2 || surface.notices[0] != "Hello fellow car guy!" {
		t.Fatalf("notices = %v", surface.notices)
	}
	if !strings.Contains(surface.notices[1], "/car") {
		t.Fatalf("help should list /car, got %q", surface.notices[1])
	}
}

func TestRegistryUnknownKey(t *testing.T) {
	registry := NewRegistry()
	err := registry.Execute(context.Background(), newCmdCtx(&noticeSurface{}), "boat", nil)
	if !stderrors.Is(err, ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}

	registry = NewDefaultRegistry(newDeps(&fakeFlow{}))
	if registry.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", registry.Count())
	}
	if got := strings.Join(registry.Names(), ","); got != "car,hello,help" {
		t.Fatalf("Names() = %s", got)
	}
}

func TestCarCommandSwallowsDialogueEndings(t *testing.T) {
	flow := &fakeFlow{err: errors.NewDialogueError(errors.CodeDialogueTimeout, "brand", errors.ErrDialogueTimeout)}
	cmd := NewCarCommand(newDeps(flow))

	if err := cmd.Execute(context.Background(), newCmdCtx(&noticeSurface{}), nil); err != nil {
		t.Fatalf("expected dialogue ending to be handled, got %v", err)
	}
}

func TestCarCommandReturnsUnexpectedErrors(t *testing.T) {
	boom := stderrors.New("telegram unreachable")
	cmd := NewCarCommand(newDeps(&fakeFlow{err: boom}))

	if err := cmd.Execute(context.Background(), newCmdCtx(&noticeSurface{}), nil); !stderrors.Is(err, boom) {
		t.Fatalf("expected %v, got %v", boom, err)
	}
}

func TestCarCommandRefusesConcurrentSearch(t *testing.T) {
	flow := &fakeFlow{started: make(chan struct{}), block: make(chan struct{})}
	deps := newDeps(flow)
	cmd := NewCarCommand(deps)

	first := &noticeSurface{}
	done := make(chan error, 1)
	go func() {
		done <- cmd.Execute(context.Background(), newCmdCtx(first), nil)
	}()
	<-flow.started

	second := &noticeSurface{}
	if err := cmd.Execute(context.Background(), newCmdCtx(second), nil); err != nil {
		t.Fatalf("expected refusal notice, got %v", err)
	}
	if len(second.notices) != 1 || !strings.Contains(second.notices[0], "already") {
		t.Fatalf("notices = %v", second.notices)
	}

	close(flow.block)
	if err := <-done; err != nil {
		t.Fatalf("first search failed: %v", err)
	}
	if flow.calls != 1 {
		t.Fatalf("flow ran %d times, want 1", flow.calls)
	}
}

func TestCarCommandCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := NewCarCommand(newDeps(&fakeFlow{block: make(chan struct{})}))
	if err := cmd.Execute(ctx, newCmdCtx(&noticeSurface{}), nil); err != nil {
		t.Fatalf("cancellation must not surface as an error, got %v", err)
	}
}
