package wikimedia

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kapu/carfinder-bot-go/internal/constants"
	"github.com/kapu/carfinder-bot-go/internal/domain"
	"github.com/kapu/carfinder-bot-go/internal/util"
	"github.com/kapu/carfinder-bot-go/pkg/errors"
)

var civic = domain.Vehicle{Brand: "Honda", Model: "Civic", Year: "2020"}

func newTestResolver(t *testing.T, handler http.HandlerFunc, cache ImageCache) *Resolver {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewResolver(Config{
		APIURL:    srv.URL,
		FileURL:   "https://files.example/%s",
		UserAgent: "carfinder-test",
	}, srv.Client(), cache, nil)
}

func TestResolveBuildsFileURL(t *testing.T) {
	var gotQuery, gotUA string
	r := newTestResolver(t, func(w http.ResponseWriter, req *http.Request) {
		gotQuery = req.URL.Query().Get("srsearch")
		gotUA = req.Header.Get("User-Agent")
		if req.URL.Query().Get("srnamespace") != "6" || req.URL.Query().Get("srlimit") != "1" {
			t.Errorf("unexpected params %v", req.URL.Query())
		}
		w.Write([]byte(`{"query":{"search":[{"title":"File:Honda Civic 2020.jpg"}]}}`))
	}, nil)

	image, err := r.Resolve(context.Background(), civic)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotQuery != "Honda Civic 2020" {
		t.Fatalf("srsearch = %q", gotQuery)
	}
	if gotUA != "carfinder-test" {
		t.Fatalf("User-Agent = %q", gotUA)
	}
	if image.URL != "https://files.example/Honda_Civic_2020.jpg" {
		t.Fatalf("URL = %q", image.URL)
	}
	if image.Vehicle != civic {
		t.Fatalf("vehicle = %+v", image.Vehicle)
	}
}

func TestResolveEscapesFileName(t *testing.T) {
	r := newTestResolver(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"query":{"search":[{"title":"File:Citroën C4 (2020)?.jpg"}]}}`))
	}, nil)

	image, err := r.Resolve(context.Background(), civic)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := "https://files.example/Citro%C3%ABn_C4_%282020%29%3F.jpg"
	if image.URL != want {
		t.Fatalf("URL = %q, want %q", image.URL, want)
	}
}

func TestResolveNotFound(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"empty search", func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"query":{"search":[]}}`))
		}},
		{"missing query", func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{}`))
		}},
		{"malformed body", func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`not json`))
		}},
		{"server error", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"non-200 success status", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestResolver(t, tt.handler, nil)
			_, err := r.Resolve(context.Background(), civic)
			if !stderrors.Is(err, errors.ErrImageNotFound) {
				t.Fatalf("expected ErrImageNotFound, got %v", err)
			}
		})
	}
}

func TestResolveTransportError(t *testing.T) {
	r := NewResolver(Config{APIURL: "http://127.0.0.1:1", Timeout: time.Second}, nil, nil, nil)
	_, err := r.Resolve(context.Background(), civic)
	if !stderrors.Is(err, errors.ErrImageNotFound) {
		t.Fatalf("expected ErrImageNotFound, got %v", err)
	}
}

func TestResolveOpensCircuitAfterServerErrors(t *testing.T) {
	var calls int32
	r := newTestResolver(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}, nil)

	for i := 0; i < constants.CircuitBreakerConfig.FailureThreshold+2; i++ {
		if _, err := r.Resolve(context.Background(), civic); !stderrors.Is(err, errors.ErrImageNotFound) {
			t.Fatalf("attempt %d: expected ErrImageNotFound, got %v", i, err)
		}
	}

	if got := atomic.LoadInt32(&calls); int(got) != constants.CircuitBreakerConfig.FailureThreshold {
		t.Fatalf("expected %d upstream calls before the circuit opened, got %d",
			constants.CircuitBreakerConfig.FailureThreshold, got)
	}
	if r.Status().State != util.CircuitStateOpen {
		t.Fatalf("expected open circuit, got %s", r.Status().State)
	}
}

type memoryCache struct {
	values map[string]string
	sets   int
}

func (m *memoryCache) Get(_ context.Context, key string, dest any) (bool, error) {
	v, ok := m.values[key]
	if !ok {
		return false, nil
	}
	*(dest.(*string)) = v
	return true, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.values[key] = value.(string)
	m.sets++
	return nil
}

func TestResolveUsesCache(t *testing.T) {
	var calls int32
	cache := &memoryCache{values: map[string]string{}}
	r := newTestResolver(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"query":{"search":[{"title":"File:Honda Civic 2020.jpg"}]}}`))
	}, cache)

	first, err := r.Resolve(context.Background(), civic)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	second, err := r.Resolve(context.Background(), domain.Vehicle{Brand: "honda", Model: "CIVIC", Year: "2020"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected one upstream call, got %d", calls)
	}
	if first.URL != second.URL || cache.sets != 1 {
		t.Fatalf("expected cached URL reuse, got %q vs %q (sets=%d)", first.URL, second.URL, cache.sets)
	}
}

func TestResolveDoesNotCacheMisses(t *testing.T) {
	cache := &memoryCache{values: map[string]string{}}
	r := newTestResolver(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"query":{"search":[]}}`))
	}, cache)

	if _, err := r.Resolve(context.Background(), civic); err == nil {
		t.Fatalf("expected error")
	}
	if cache.sets != 0 {
		t.Fatalf("misses must not be cached")
	}
}

func TestResolveCancelledCallerDoesNotTripCircuit(t *testing.T) {
	r := newTestResolver(t, func(w http.ResponseWriter, req *http.Request) {
		<-req.Context().Done()
	}, nil)

	for i := 0; i < constants.CircuitBreakerConfig.FailureThreshold+1; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		_, err := r.Resolve(ctx, civic)
		cancel()
		if !stderrors.Is(err, errors.ErrImageNotFound) {
			t.Fatalf("attempt %d: expected ErrImageNotFound, got %v", i, err)
		}
	}

	status := r.Status()
	if status.State != util.CircuitStateClosed || status.FailureCount != 0 {
		t.Fatalf("cancelled lookups must not count as failures, got %+v", status)
	}
}
