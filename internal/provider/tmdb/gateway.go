package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Digital-Shane/media-resolver/internal/metrics"
	"github.com/Digital-Shane/media-resolver/internal/provider"
	"github.com/Digital-Shane/media-resolver/internal/provider/proxy"
	"github.com/avast/retry-go/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

const (
	providerName = "tmdb"

	DefaultBaseURL     = "https://api.themoviedb.org/3"
	DefaultFallbackURL = "https://api.tmdb.org/3"

	defaultProxyTimeout    = 5 * time.Second
	defaultDirectTimeout   = 5 * time.Second
	defaultFallbackTimeout = 30 * time.Second

	maxBodySize = 8 << 20
)

// Attempt stages, used as the metrics label.
const (
	stageProxy    = "proxy"
	stageDirect   = "direct"
	stageFallback = "fallback"
)

// GatewayConfig holds the collaborators of a Gateway. Only Token is required.
type GatewayConfig struct {
	Token       string
	BaseURL     string
	FallbackURL string
	Locale      provider.Locale
	Rotator     *proxy.Rotator
	HTTPClient  *http.Client
	Logger      *slog.Logger
	Limiter     *rate.Limiter
}

// Gateway dispatches catalog requests through an optional proxy, then the
// primary host, then the secondary host. Each stage has its own timeout.
type Gateway struct {
	token       string
	baseURL     string
	fallbackURL string
	locale      provider.Locale
	rotator     *proxy.Rotator
	client      *http.Client
	logger      *slog.Logger
	limiter     *rate.Limiter

	ProxyTimeout    time.Duration
	DirectTimeout   time.Duration
	FallbackTimeout time.Duration
}

// NewGateway validates cfg and fills in defaults. A missing token is a
// configuration error and fails immediately.
func NewGateway(cfg GatewayConfig) (*Gateway, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, provider.ErrInvalidAPIKey
	}

	g := &Gateway{
		token:           token,
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		fallbackURL:     strings.TrimRight(cfg.FallbackURL, "/"),
		locale:          cfg.Locale,
		rotator:         cfg.Rotator,
		client:          cfg.HTTPClient,
		logger:          cfg.Logger,
		limiter:         cfg.Limiter,
		ProxyTimeout:    defaultProxyTimeout,
		DirectTimeout:   defaultDirectTimeout,
		FallbackTimeout: defaultFallbackTimeout,
	}
	if g.baseURL == "" {
		g.baseURL = DefaultBaseURL
	}
	if g.fallbackURL == "" {
		g.fallbackURL = DefaultFallbackURL
	}
	if g.rotator == nil {
		g.rotator = proxy.New(nil)
	}
	if g.client == nil {
		g.client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	if g.limiter == nil {
		g.limiter = newRateLimiter(rateLimitRequests, rateLimitWindow)
	}
	return g, nil
}

// Fetch requests path with params plus the current language and returns the
// raw JSON body. At most three network attempts are made. A proxy failure is
// logged and never returned; the secondary host's error is returned as is.
func (g *Gateway) Fetch(ctx context.Context, path string, params map[string]string) (json.RawMessage, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("tmdb rate limit: %w", err)
	}

	query := g.query(params)

	endpoint, hasProxy := g.rotator.Next()
	if hasProxy && g.rotator.Enabled() {
		target := proxy.Destination(endpoint, requestURL(g.baseURL, path, query))
		body, err := g.attempt(ctx, stageProxy, target, g.ProxyTimeout)
		if err == nil {
			return body, nil
		}
		g.logger.Warn("proxy request failed, going direct",
			"proxy", endpoint,
			"path", path,
			"error", err)
	}

	hosts := []struct {
		stage   string
		base    string
		timeout time.Duration
	}{
		{stageDirect, g.baseURL, g.DirectTimeout},
		{stageFallback, g.fallbackURL, g.FallbackTimeout},
	}

	n := 0
	return retry.DoWithData(
		func() (json.RawMessage, error) {
			h := hosts[n]
			n++
			return g.attempt(ctx, h.stage, requestURL(h.base, path, query), h.timeout)
		},
		retry.Attempts(uint(len(hosts))),
		retry.Delay(0),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.RetryIf(func(error) bool { return ctx.Err() == nil }),
		retry.OnRetry(func(attempt uint, err error) {
			if int(attempt)+1 < len(hosts) {
				g.logger.Warn("primary host failed, trying fallback host",
					"path", path,
					"fallback", g.fallbackURL,
					"error", err)
			}
		}),
	)
}

func (g *Gateway) query(params map[string]string) url.Values {
	lang := provider.DefaultLanguage
	if g.locale != nil {
		lang = provider.NormalizeLanguage(g.locale.Language())
	}

	values := url.Values{}
	values.Set("language", lang)
	for k, v := range params {
		values.Set(k, v)
	}
	return values
}

func (g *Gateway) attempt(ctx context.Context, stage, target string, timeout time.Duration) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	body, err := g.do(ctx, target)
	metrics.GatewayAttemptDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.GatewayAttemptsTotal.WithLabelValues(stage, outcome).Inc()
	return body, err
}

func (g *Gateway) do(ctx context.Context, target string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.token)
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read tmdb response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, provider.StatusError(providerName, resp.StatusCode, snippet(body))
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("tmdb returned invalid JSON (%d bytes)", len(body))
	}
	return json.RawMessage(body), nil
}

func requestURL(base, path string, query url.Values) string {
	u := strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
