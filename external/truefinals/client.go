package truefinals

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/platform/logging"
	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/platform/resilience"
	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/usecase"
)

const (
	// SourceName identifies this adapter in logs and raw match records.
	SourceName = "truefinals"

	defaultBaseURL = "https://truefinals.com/tournament"
	defaultTimeout = 15 * time.Second
)

var errTrueFinalsTransient = crerr.New("truefinals transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	TournamentID   string
	Extractor      Extractor
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client fetches the tournament bracket page and hands the markup to the
// extractor. Page structure belongs to the extractor; the client only owns
// transport concerns.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	tournamentID   string
	extractor      Extractor
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultTimeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	tournamentID := strings.TrimSpace(cfg.TournamentID)
	extractor := cfg.Extractor
	if extractor == nil {
		extractor = NewBracketExtractor(tournamentID)
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		tournamentID:   tournamentID,
		extractor:      extractor,
		maxRetries:     cfg.MaxRetries,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) Name() string { return SourceName }

// FetchMatches pulls and extracts the configured tournament's bracket.
func (c *Client) FetchMatches(ctx context.Context) ([]usecase.RawMatch, error) {
	if c.tournamentID == "" {
		return nil, fmt.Errorf("tournament id is required")
	}

	raw, err := c.fetchPage(ctx, c.baseURL+"/"+c.tournamentID)
	if err != nil {
		return nil, fmt.Errorf("fetch bracket tournament=%s: %w", c.tournamentID, err)
	}

	matches, err := c.extractor.Extract(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("extract bracket tournament=%s: %w", c.tournamentID, err)
	}
	return matches, nil
}

func (c *Client) fetchPage(ctx context.Context, fullURL string) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "truefinals circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: bracket provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && isTransient(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}
	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "text/html")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errTrueFinalsTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errTrueFinalsTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d", errTrueFinalsTransient, resp.StatusCode)
			default:
				return nil, fmt.Errorf("provider status=%d", resp.StatusCode)
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "truefinals request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func isTransient(err error) bool {
	return stderrors.Is(err, errTrueFinalsTransient)
}
