// Package legacy talks to the catalog that owned the old "JW" id namespace.
// It is only consulted while migrating old URLs.
package legacy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Digital-Shane/media-resolver/internal/media"
	"github.com/Digital-Shane/media-resolver/internal/provider"
	"github.com/avast/retry-go/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	providerName = "legacy"

	DefaultBaseURL = "https://apis.justwatch.com"

	defaultAttempts = 3
	defaultDelay    = 300 * time.Millisecond
	requestTimeout  = 15 * time.Second
)

// External id providers, most preferred first.
var (
	imdbProviders = []string{"imdb_latest", "imdb"}
	tmdbProviders = []string{"tmdb_latest", "tmdb"}
)

// ExternalID links a legacy record to another catalog.
type ExternalID struct {
	Provider   string `json:"provider"`
	ExternalID string `json:"external_id"`
}

// Title is the detailed title shape of the legacy catalog.
type Title struct {
	ID                  int          `json:"id"`
	Title               string       `json:"title"`
	ObjectType          string       `json:"object_type"`
	OriginalReleaseYear int          `json:"original_release_year"`
	ExternalIDs         []ExternalID `json:"external_ids"`
}

// IMDbID returns the imdb_latest link, else the imdb link, else "".
func (t *Title) IMDbID() string {
	return t.external(imdbProviders)
}

// TMDBID returns the tmdb_latest link, else the tmdb link, else "".
func (t *Title) TMDBID() string {
	return t.external(tmdbProviders)
}

func (t *Title) external(preferred []string) string {
	for _, name := range preferred {
		for _, link := range t.ExternalIDs {
			if link.Provider == name && link.ExternalID != "" {
				return link.ExternalID
			}
		}
	}
	return ""
}

// Config configures a Client.
type Config struct {
	BaseURL    string
	Locale     provider.Locale
	HTTPClient *http.Client
	Logger     *slog.Logger

	// Attempts and Delay control retries of rate limited and 5xx responses.
	Attempts uint
	Delay    time.Duration
}

// Client is a locale aware REST client for the legacy catalog.
type Client struct {
	baseURL  string
	locale   provider.Locale
	httpc    *http.Client
	logger   *slog.Logger
	attempts uint
	delay    time.Duration
}

// New creates a Client, defaulting anything cfg leaves empty.
func New(cfg Config) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		locale:   cfg.Locale,
		httpc:    cfg.HTTPClient,
		logger:   cfg.Logger,
		attempts: cfg.Attempts,
		delay:    cfg.Delay,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.httpc == nil {
		c.httpc = &http.Client{
			Timeout:   requestTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.attempts == 0 {
		c.attempts = defaultAttempts
	}
	if c.delay <= 0 {
		c.delay = defaultDelay
	}
	return c
}

// Title fetches the detailed record of a movie or show. A record the catalog
// does not know (HTTP 400 or 404) yields nil, nil.
func (c *Client) Title(ctx context.Context, itemType, id string) (*Title, error) {
	if _, err := media.ParseItemType(itemType); err != nil {
		return nil, err
	}

	lang := provider.DefaultLanguage
	if c.locale != nil {
		lang = c.locale.Language()
	}
	u := fmt.Sprintf("%s/content/titles/%s/%s/locale/%s",
		c.baseURL, itemType, url.PathEscape(id), provider.UnderscoreLocale(lang))

	title, err := retry.DoWithData(
		func() (*Title, error) {
			return c.get(ctx, u)
		},
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("legacy catalog request failed",
				"url", u,
				"attempt", n+1,
				"error", err)
		}),
	)
	if err != nil {
		if isMissing(err) {
			return nil, nil
		}
		return nil, err
	}
	return title, nil
}

func (c *Client) get(ctx context.Context, u string) (*Title, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, retry.Unrecoverable(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, provider.StatusError(providerName, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var title Title
	if err := json.NewDecoder(resp.Body).Decode(&title); err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("decode legacy title: %w", err))
	}
	return &title, nil
}

// retryable retries transport failures and provider errors flagged as
// transient (429, 5xx). Everything else is final.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var perr *provider.ProviderError
	if errors.As(err, &perr) {
		return perr.Retry
	}
	return true
}

func isMissing(err error) bool {
	var perr *provider.ProviderError
	if !errors.As(err, &perr) {
		return false
	}
	return perr.Status == http.StatusBadRequest || perr.Status == http.StatusNotFound
}
