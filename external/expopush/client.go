package expopush

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/platform/logging"
	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/platform/resilience"
)

const (
	// DefaultEndpoint is the Expo push gateway.
	DefaultEndpoint = "https://exp.host/--/api/v2/push/send"

	defaultTimeout = 10 * time.Second
)

var errExpoPushTransient = crerr.New("expo push transient failure")

// ErrDeviceNotRegistered marks tokens the gateway reports as dead; callers
// should deactivate the subscriber instead of retrying.
var ErrDeviceNotRegistered = crerr.New("device not registered")

type ClientConfig struct {
	HTTPClient     *http.Client
	Endpoint       string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client posts one message per call to the Expo push gateway.
type Client struct {
	httpClient     *http.Client
	endpoint       string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
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

	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		endpoint:       endpoint,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

type pushMessage struct {
	To    string `json:"to"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

type pushReceipt struct {
	Data struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Details struct {
			Error string `json:"error"`
		} `json:"details"`
	} `json:"data"`
}

// Send delivers one message to one device token.
func (c *Client) Send(ctx context.Context, token, title, body string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return crerr.New("push token is required")
	}

	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "expo push circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("push gateway is temporarily unavailable: %w", err)
		}
	}

	payload, err := sonic.Marshal(pushMessage{To: token, Title: title, Body: body})
	if err != nil {
		return crerr.Wrap(err, "marshal push message")
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	_, _ = buf.Write(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(buf.String()))
	if err != nil {
		return crerr.Wrap(err, "create push request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		callErr := fmt.Errorf("%w: send push: %v", errExpoPushTransient, err)
		c.recordCircuitResult(callErr)
		return callErr
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode/100 != 2 {
		if isRetryableStatus(resp.StatusCode) {
			callErr := fmt.Errorf("%w: push gateway status=%d body=%s",
				errExpoPushTransient, resp.StatusCode, strings.TrimSpace(string(raw)))
			c.recordCircuitResult(callErr)
			return callErr
		}
		callErr := fmt.Errorf("push gateway status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(raw)))
		c.recordCircuitResult(callErr)
		return callErr
	}
	c.recordCircuitResult(nil)

	var receipt pushReceipt
	if err := sonic.Unmarshal(raw, &receipt); err != nil {
		// The push was accepted; an unreadable receipt is not a delivery
		// failure.
		c.logger.WarnContext(ctx, "unreadable push receipt", "error", err)
		return nil
	}
	if receipt.Data.Status == "error" {
		if receipt.Data.Details.Error == "DeviceNotRegistered" {
			return fmt.Errorf("%w: token rejected by gateway", ErrDeviceNotRegistered)
		}
		return fmt.Errorf("push rejected: %s", receipt.Data.Message)
	}
	return nil
}

func (c *Client) recordCircuitResult(err error) {
	if !c.circuitEnabled || c.breaker == nil {
		return
	}
	if err != nil && stderrors.Is(err, errExpoPushTransient) {
		c.breaker.RecordFailure()
		return
	}
	c.breaker.RecordSuccess()
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}
