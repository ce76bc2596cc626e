package probe

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/GriffinCanCode/AgentOS/launcher/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/infrastructure/tracing"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrUnsupportedScheme is returned for addresses that are neither http(s) nor file
var ErrUnsupportedScheme = errors.New("unsupported address scheme")

// errServerStatus marks 5xx answers as failures for the breaker only
var errServerStatus = errors.New("server error status")

// Config controls probe behavior
type Config struct {
	Timeout       time.Duration
	Retries       int
	RetryWait     time.Duration
	RetryMaxWait  time.Duration
	RatePerSecond float64 // 0 = unlimited
	Burst         int
	UserAgent     string
	Breaker       resilience.Settings
}

// DefaultConfig returns settings for probing local application servers
func DefaultConfig() Config {
	return Config{
		Timeout:      5 * time.Second,
		Retries:      1,
		RetryWait:    200 * time.Millisecond,
		RetryMaxWait: 2 * time.Second,
		UserAgent:    "AgentOS-Launcher/1.0",
		Breaker:      resilience.DefaultSettings(),
	}
}

// Client answers reachability probes. HTTP targets get a GET without
// following redirects; file targets are checked by stat.
type Client struct {
	resty    *resty.Client
	limiter  *rate.Limiter
	breakers *resilience.Group
	logger   *zap.Logger
}

// NewClient creates a prober with rate limiting and a breaker per host
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultConfig().UserAgent
	}

	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil

	restyClient := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(cfg.RetryMaxWait).
		SetHeader("User-Agent", cfg.UserAgent).
		SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		})).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			// transport failures only; a status is a verdict
			return err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		})
	restyClient.SetTransport(retryClient.HTTPClient.Transport)

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = int(cfg.RatePerSecond) + 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	breakerSettings := cfg.Breaker
	userHook := breakerSettings.OnStateChange
	breakerSettings.OnStateChange = func(name string, from, to resilience.State) {
		logger.Info("Probe circuit changed",
			zap.String("target", name),
			zap.Stringer("from", from),
			zap.Stringer("to", to))
		if userHook != nil {
			userHook(name, from, to)
		}
	}

	return &Client{
		resty:    restyClient,
		limiter:  limiter,
		breakers: resilience.NewGroup(breakerSettings),
		logger:   logger.Named("probe"),
	}
}

// Probe returns the status answered by address. An error means no
// answer: transport failure, timeout, open circuit or bad address.
func (c *Client) Probe(ctx context.Context, address string, headers map[string]string) (int, error) {
	u, err := url.Parse(address)
	if err != nil {
		return 0, fmt.Errorf("parse address: %w", err)
	}

	switch u.Scheme {
	case "http", "https":
		return c.probeHTTP(ctx, u, headers)
	case "file":
		return probeFile(u.Path)
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

func (c *Client) probeHTTP(ctx context.Context, u *url.URL, headers map[string]string) (int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limit: %w", err)
	}

	outgoing := make(map[string]string, len(headers)+2)
	for k, v := range headers {
		outgoing[k] = v
	}
	tracing.InjectTraceContext(ctx, outgoing)

	var status int
	err := c.breakers.Do(u.Host, func() error {
		resp, err := c.resty.R().
			SetContext(ctx).
			SetHeaders(outgoing).
			SetDoNotParseResponse(true).
			Get(u.String())
		if err != nil {
			return err
		}
		if body := resp.RawBody(); body != nil {
			body.Close()
		}

		status = resp.StatusCode()
		if status >= http.StatusInternalServerError {
			return errServerStatus
		}
		return nil
	})

	switch {
	case errors.Is(err, errServerStatus):
		return status, nil
	case err != nil:
		c.logger.Debug("Probe failed", zap.String("host", u.Host), zap.Error(err))
		return 0, fmt.Errorf("probe %s: %w", u.Host, err)
	}
	return status, nil
}

// probeFile maps a local path onto HTTP-like statuses
func probeFile(path string) (int, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound, nil
	case errors.Is(err, fs.ErrPermission):
		return http.StatusForbidden, nil
	case err != nil:
		return 0, fmt.Errorf("stat %s: %w", path, err)
	case info.IsDir():
		return http.StatusNotFound, nil
	}
	return http.StatusOK, nil
}

// BreakerStates reports the circuit state per probed host
func (c *Client) BreakerStates() map[string]string {
	states := c.breakers.States()
	out := make(map[string]string, len(states))
	for host, s := range states {
		out[host] = s.String()
	}
	return out
}
