// Package wikimedia finds a representative photo of a vehicle on Wikimedia
// Commons.
package wikimedia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kapu/carfinder-bot-go/internal/constants"
	"github.com/kapu/carfinder-bot-go/internal/domain"
	"github.com/kapu/carfinder-bot-go/internal/util"
	"github.com/kapu/carfinder-bot-go/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// ImageCache remembers resolved URLs. A nil cache disables caching.
type ImageCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

type Config struct {
	APIURL    string
	FileURL   string
	UserAgent string
	Timeout   time.Duration
}

// Resolver turns a vehicle into a direct image URL. Every failure, whether a
// transport error, a non-200 reply, an unreadable body or an empty search,
// surfaces as errors.ErrImageNotFound.
type Resolver struct {
	httpClient *http.Client
	cfg        Config
	cache      ImageCache
	breaker    *util.CircuitBreaker
	logger     *zap.Logger
}

func NewResolver(cfg Config, httpClient *http.Client, cache ImageCache, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.APIURL == "" {
		cfg.APIURL = constants.APIConfig.WikimediaBaseURL
	}
	if cfg.FileURL == "" {
		cfg.FileURL = constants.APIConfig.WikimediaFileURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = constants.APIConfig.DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = constants.APIConfig.WikimediaTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	return &Resolver{
		httpClient: httpClient,
		cfg:        cfg,
		cache:      cache,
		breaker: util.NewCircuitBreaker("wikimedia",
			constants.CircuitBreakerConfig.FailureThreshold,
			constants.CircuitBreakerConfig.ResetTimeout,
			logger,
		),
		logger: logger,
	}
}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

// Resolve looks up the first Commons file matching "{brand} {model} {year}".
func (r *Resolver) Resolve(ctx context.Context, vehicle domain.Vehicle) (domain.VehicleImage, error) {
	query := vehicle.Query()
	key := cacheKey(vehicle)

	if r.cache != nil {
		var cached string
		if found, err := r.cache.Get(ctx, key, &cached); err == nil && found && cached != "" {
			r.logger.Debug("Image URL cache hit", zap.String("query", query))
			return domain.VehicleImage{Vehicle: vehicle, URL: cached}, nil
		}
	}

	title, err := r.search(ctx, query)
	if err != nil {
		r.logger.Info("Image lookup failed", zap.String("query", query), zap.Error(err))
		return domain.VehicleImage{}, errors.NewImageNotFound(query, err)
	}

	image := domain.VehicleImage{Vehicle: vehicle, URL: r.fileURL(title)}

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, image.URL, constants.CacheTTL.ImageURL); err != nil {
			r.logger.Warn("Failed to cache image URL", zap.String("query", query), zap.Error(err))
		}
	}

	return image, nil
}

// Status exposes the circuit breaker state for health reporting.
func (r *Resolver) Status() util.CircuitBreakerStatus {
	return r.breaker.GetStatus()
}

func (r *Resolver) search(ctx context.Context, query string) (string, error) {
	if !r.breaker.CanExecute() {
		return "", errors.NewAPIError("wikimedia circuit open", http.StatusServiceUnavailable, nil)
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srnamespace", constants.APIConfig.FileNamespace)
	params.Set("srlimit", constants.APIConfig.SearchResultLimit)
	params.Set("srprop", "size|url")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.APIURL+"?"+params.Encode(), nil)
	if err != nil {
		r.breaker.Release()
		return "", err
	}
	req.Header.Set("User-Agent", r.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		// A cancelled caller says nothing about Commons.
		if ctx.Err() != nil {
			r.breaker.Release()
		} else {
			r.breaker.RecordFailure()
		}
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			r.breaker.RecordFailure()
		} else {
			r.breaker.Release()
		}
		return "", errors.NewAPIError(fmt.Sprintf("wikimedia status %d", resp.StatusCode), resp.StatusCode, map[string]any{
			"query": query,
		})
	}
	r.breaker.RecordSuccess()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read search response: %w", err)
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode search response: %w", err)
	}
	if len(result.Query.Search) == 0 || strings.TrimSpace(result.Query.Search[0].Title) == "" {
		return "", fmt.Errorf("no search results")
	}

	return result.Query.Search[0].Title, nil
}

// fileURL maps "File:Honda Civic 2020.jpg" to the direct file path URL.
func (r *Resolver) fileURL(title string) string {
	name := strings.TrimPrefix(title, constants.APIConfig.FileTitlePrefix)
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	return fmt.Sprintf(r.cfg.FileURL, url.PathEscape(name))
}

func cacheKey(v domain.Vehicle) string {
	return constants.CacheKeys.ImageURLPrefix + util.NormalizeKey(v.Brand, v.Model, v.Year)
}
