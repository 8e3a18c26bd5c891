package brettzone

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/platform/logging"
	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/platform/resilience"
	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/usecase"
)

const (
	// SourceName identifies this adapter in logs and raw match records.
	SourceName = "brettzone"

	defaultBaseURL = "https://brettzone.nhrl.io/brettZone"
	defaultTimeout = 15 * time.Second
)

var errBrettZoneTransient = crerr.New("brettzone transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	TournamentID   string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads the results API backing the live results page. The endpoint
// returns every match of a tournament as one JSON array; each side carries a
// binary win flag plus a played marker.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	tournamentID   string
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
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		tournamentID:   strings.TrimSpace(cfg.TournamentID),
		maxRetries:     cfg.MaxRetries,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) Name() string { return SourceName }

// FetchMatches pulls the configured tournament's match list.
func (c *Client) FetchMatches(ctx context.Context) ([]usecase.RawMatch, error) {
	return c.FetchTournamentMatches(ctx, c.tournamentID)
}

func (c *Client) FetchTournamentMatches(ctx context.Context, tournamentID string) ([]usecase.RawMatch, error) {
	tournamentID = strings.TrimSpace(tournamentID)
	if tournamentID == "" {
		return nil, fmt.Errorf("tournament id is required")
	}

	var entries []matchEntry
	if err := c.doJSON(ctx, "/getNewMatches.php", map[string]string{"tournamentID": tournamentID}, &entries); err != nil {
		return nil, fmt.Errorf("fetch matches tournament=%s: %w", tournamentID, err)
	}

	out := make([]usecase.RawMatch, 0, len(entries))
	for _, entry := range entries {
		raw, ok := c.mapEntry(ctx, entry, tournamentID)
		if !ok {
			continue
		}
		out = append(out, raw)
	}
	return out, nil
}

// matchEntry is the provider's wire shape. Flags arrive as 0/1 numbers.
type matchEntry struct {
	BotOneName   string `json:"bot1_name"`
	BotTwoName   string `json:"bot2_name"`
	BotOneWin    *int   `json:"bot1_win"`
	BotTwoWin    *int   `json:"bot2_win"`
	MatchPlayed  *int   `json:"match_complete"`
	WinMethod    string `json:"win_method"`
	CageName     string `json:"cage_name"`
	MatchTime    int64  `json:"match_time"`
	MatchSeconds *int   `json:"match_length"`
}

func (c *Client) mapEntry(ctx context.Context, entry matchEntry, tournamentID string) (usecase.RawMatch, bool) {
	botOne := strings.TrimSpace(entry.BotOneName)
	botTwo := strings.TrimSpace(entry.BotTwoName)
	if botOne == "" || botTwo == "" {
		c.logger.WarnContext(ctx, "dropping malformed match entry",
			"source", SourceName, "tournament", tournamentID,
			"bot1", botOne, "bot2", botTwo)
		return usecase.RawMatch{}, false
	}

	return usecase.RawMatch{
		Source:          SourceName,
		EntrantA:        botOne,
		EntrantB:        botTwo,
		WinFlagA:        intFlag(entry.BotOneWin),
		WinFlagB:        intFlag(entry.BotTwoWin),
		Played:          intFlag(entry.MatchPlayed),
		OutcomeNote:     strings.TrimSpace(entry.WinMethod),
		CageLabel:       strings.TrimSpace(entry.CageName),
		Epoch:           entry.MatchTime,
		DurationSeconds: entry.MatchSeconds,
		Competition:     tournamentID,
	}, true
}

func intFlag(value *int) *bool {
	if value == nil {
		return nil
	}
	flag := *value != 0
	return &flag
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "brettzone circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: results provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
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
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errBrettZoneTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errBrettZoneTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d", errBrettZoneTransient, resp.StatusCode)
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
	c.logger.WarnContext(ctx, "brettzone request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func isTransient(err error) bool {
	return stderrors.Is(err, errBrettZoneTransient)
}
