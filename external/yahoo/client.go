// Package yahoo reads fantasy data from the Yahoo Fantasy Sports API and
// normalizes it into the use case DTOs.
package yahoo

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

	"github.com/riskibarqy/fantasy-trade-market/internal/platform/logging"
	"github.com/riskibarqy/fantasy-trade-market/internal/platform/payload"
	"github.com/riskibarqy/fantasy-trade-market/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-trade-market/internal/usecase"
)

const (
	defaultBaseURL   = "https://fantasysports.yahooapis.com/fantasy/v2"
	defaultGameCodes = "nba,nfl,mlb,nhl"
	maxResponseBytes = 8 << 20
)

var errYahooTransient = crerr.New("yahoo transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	GameCodes      []string
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client is safe for concurrent use; the access token travels with each call.
type Client struct {
	httpClient *http.Client
	baseURL    string
	gameCodes  string
	maxRetries int
	backoff    time.Duration
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
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
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	codes := strings.Join(cfg.GameCodes, ",")
	if strings.TrimSpace(codes) == "" {
		codes = defaultGameCodes
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		gameCodes:  codes,
		maxRetries: max(cfg.MaxRetries, 0),
		backoff:    backoff,
		logger:     logger,
		breaker:    cfg.CircuitBreaker.Build(),
	}
}

func (c *Client) FetchTopology(ctx context.Context, accessToken string) ([]usecase.ExternalGame, error) {
	doc, err := c.doJSON(ctx, accessToken, "/users;use_login=1/games;game_codes="+c.gameCodes+"/leagues")
	if err != nil {
		return nil, fmt.Errorf("fetch topology: %w", err)
	}
	return parseTopology(ctx, c.logger, doc), nil
}

func (c *Client) FetchLeagueTeams(ctx context.Context, accessToken, leagueKey string) ([]usecase.ExternalTeam, error) {
	doc, err := c.doJSON(ctx, accessToken, "/league/"+leagueKey+"/standings")
	if err != nil {
		return nil, fmt.Errorf("fetch league teams league=%s: %w", leagueKey, err)
	}
	return parseLeagueTeams(ctx, c.logger, doc), nil
}

func (c *Client) FetchLeagueTransactions(ctx context.Context, accessToken, leagueKey string) ([]usecase.ExternalTransaction, error) {
	doc, err := c.doJSON(ctx, accessToken, "/league/"+leagueKey+"/transactions")
	if err != nil {
		return nil, fmt.Errorf("fetch transactions league=%s: %w", leagueKey, err)
	}
	return parseTransactions(ctx, c.logger, doc), nil
}

func (c *Client) FetchRoster(ctx context.Context, accessToken, teamKey string) ([]usecase.ExternalPlayer, error) {
	doc, err := c.doJSON(ctx, accessToken, "/team/"+teamKey+"/roster/players/stats")
	if err != nil {
		return nil, fmt.Errorf("fetch roster team=%s: %w", teamKey, err)
	}
	return parseRoster(ctx, c.logger, doc), nil
}

// FetchPendingTrades lists trades awaiting a response that involve teamKey.
func (c *Client) FetchPendingTrades(ctx context.Context, accessToken, teamKey string) ([]usecase.ExternalTransaction, error) {
	path := fmt.Sprintf("/league/%s/transactions;team_key=%s;type=pending_trade", leagueOfTeam(teamKey), teamKey)
	doc, err := c.doJSON(ctx, accessToken, path)
	if err != nil {
		return nil, fmt.Errorf("fetch pending trades team=%s: %w", teamKey, err)
	}
	return parseTransactions(ctx, c.logger, doc), nil
}

// doJSON issues a GET and decodes into a generic tree. Errors wrap
// usecase.ErrTokenExpired for a 401 and usecase.ErrProvider for anything else.
func (c *Client) doJSON(ctx context.Context, accessToken, path string) (any, error) {
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "yahoo circuit breaker rejected request", "state", c.breaker.State(), "path", path)
		return nil, fmt.Errorf("%w: fantasy provider is temporarily unavailable: %w", usecase.ErrProvider, err)
	}

	fullURL := c.baseURL + path + "?" + url.Values{"format": []string{"json"}}.Encode()
	raw, err := c.executeRequest(ctx, accessToken, fullURL)
	switch {
	case err == nil:
		c.breaker.RecordSuccess()
	case stderrors.Is(err, errYahooTransient):
		c.breaker.RecordFailure()
	default:
		c.breaker.RecordSuccess()
	}
	if err != nil {
		return nil, err
	}

	var doc any
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode provider payload: %v", usecase.ErrProvider, err)
	}
	content, ok := payload.Field(doc, "fantasy_content")
	if !ok {
		return nil, fmt.Errorf("%w: response has no fantasy_content", usecase.ErrProvider)
	}
	return content, nil
}

func (c *Client) executeRequest(ctx context.Context, accessToken, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: build request: %v", usecase.ErrProvider, err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+accessToken)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: %w: send request: %s", usecase.ErrProvider, errYahooTransient, redact(err.Error(), accessToken))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: %w: read response body: %v", usecase.ErrProvider, errYahooTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case resp.StatusCode == http.StatusUnauthorized:
				return nil, fmt.Errorf("%w: provider status=401 body=%s", usecase.ErrTokenExpired, abbreviateBody(raw))
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: %w: provider status=%d body=%s", usecase.ErrProvider, errYahooTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("%w: provider status=%d body=%s", usecase.ErrProvider, resp.StatusCode, abbreviateBody(raw))
			}
		}

		if ctx.Err() != nil || attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * c.backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %w", usecase.ErrProvider, ctx.Err())
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("%w: request failed", usecase.ErrProvider)
	}
	if ctxErr := ctx.Err(); ctxErr != nil && !stderrors.Is(lastErr, ctxErr) {
		lastErr = fmt.Errorf("%w: %w", lastErr, ctxErr)
	}
	c.logger.WarnContext(ctx, "yahoo request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

func redact(value, token string) string {
	value = strings.TrimSpace(value)
	if token != "" {
		value = strings.ReplaceAll(value, token, "REDACTED")
	}
	return value
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > 256 {
		return text[:256] + "..."
	}
	return text
}

func leagueOfTeam(teamKey string) string {
	if i := strings.LastIndex(teamKey, ".t."); i > 0 {
		return teamKey[:i]
	}
	return teamKey
}
