package iris

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// EventStream reads chat events from the Iris websocket and hands each
// non-empty message to one handler. A dropped connection is redialed after a
// fixed delay; consecutive failed attempts beyond maxRedials end the stream.
type EventStream struct {
	url         string
	maxRedials  int
	redialDelay time.Duration
	dialer      websocket.Dialer
	logger      *zap.Logger

	mu    sync.Mutex
	conn  *websocket.Conn
	state WebSocketState

	closed    chan struct{}
	closeOnce sync.Once
	running   sync.WaitGroup
}

func NewEventStream(url string, maxRedials int, redialDelay time.Duration, logger *zap.Logger) *EventStream {
	if logger == nil {
		logger = zap.NewNop()
	}
	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	return &EventStream{
		url:         url,
		maxRedials:  maxRedials,
		redialDelay: redialDelay,
		dialer:      dialer,
		logger:      logger,
		state:       WSStateDisconnected,
		closed:      make(chan struct{}),
	}
}

// Run blocks until ctx ends, Close is called, or the redial budget is spent.
// Only the last case returns an error.
func (s *EventStream) Run(ctx context.Context, handle func(*Message)) error {
	s.running.Add(1)
	defer s.running.Done()

	stop := context.AfterFunc(ctx, s.dropConn)
	defer stop()

	failures := 0
	for {
		if conn, err := s.dial(ctx); err == nil {
			failures = 0
			s.read(conn, handle)
		} else if !s.stopping(ctx) {
			s.logger.Error("Failed to connect WebSocket", zap.String("url", s.url), zap.Error(err))
		}

		if s.stopping(ctx) {
			s.setState(WSStateDisconnected)
			return nil
		}

		failures++
		if failures > s.maxRedials {
			s.setState(WSStateFailed)
			return fmt.Errorf("iris websocket: gave up after %d attempts", failures)
		}

		s.setState(WSStateReconnecting)
		s.logger.Info("Scheduling reconnect",
			zap.Int("attempt", failures),
			zap.Int("max", s.maxRedials),
			zap.Duration("delay", s.redialDelay),
		)

		timer := time.NewTimer(s.redialDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
		case <-s.closed:
		}
		timer.Stop()
	}
}

func (s *EventStream) dial(ctx context.Context) (*websocket.Conn, error) {
	s.setState(WSStateConnecting)

	conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	select {
	case <-s.closed:
		s.mu.Unlock()
		conn.Close()
		return nil, fmt.Errorf("iris websocket closed")
	default:
	}
	s.conn = conn
	s.mu.Unlock()

	s.setState(WSStateConnected)
	s.logger.Info("WebSocket connected", zap.String("url", s.url))
	return conn, nil
}

// read consumes conn until it fails or is closed from outside.
func (s *EventStream) read(conn *websocket.Conn, handle func(*Message)) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			dropped := s.conn != conn
			if !dropped {
				s.conn = nil
			}
			s.mu.Unlock()
			conn.Close()

			if !dropped {
				s.logger.Warn("WebSocket read error", zap.Error(err))
				s.setState(WSStateDisconnected)
			}
			return
		}

		if message, ok := s.decode(data); ok {
			handle(message)
		}
	}
}

func (s *EventStream) decode(data []byte) (*Message, bool) {
	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		preview := string(data)
		if len(preview) > 200 {
			preview = preview[:200]
		}
		s.logger.Warn("Failed to parse Iris event", zap.Error(err), zap.String("data", preview))
		return nil, false
	}
	if strings.TrimSpace(message.Msg) == "" {
		return nil, false
	}
	return &message, true
}

func (s *EventStream) stopping(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

// dropConn closes the live connection so a blocked read returns.
func (s *EventStream) dropConn() {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn != nil {
		if err := conn.Close(); err != nil {
			s.logger.Debug("WebSocket close", zap.Error(err))
		}
	}
}

func (s *EventStream) setState(state WebSocketState) {
	s.mu.Lock()
	old := s.state
	s.state = state
	s.mu.Unlock()

	if old != state {
		s.logger.Info("WebSocket state changed",
			zap.String("from", old.String()),
			zap.String("to", state.String()),
		)
	}
}

func (s *EventStream) State() WebSocketState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close stops Run and waits briefly for it to return. It is safe to call
// more than once.
func (s *EventStream) Close() error {
	s.closeOnce.Do(func() {
		close(s.closed)
	})
	s.dropConn()

	done := make(chan struct{})
	go func() {
		s.running.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		return fmt.Errorf("iris websocket: timed out waiting for reader")
	}
	s.setState(WSStateDisconnected)
	return nil
}
