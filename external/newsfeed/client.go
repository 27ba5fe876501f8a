// Package newsfeed reads recent headlines from the public ESPN site API.
package newsfeed

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/fantasy-trade-market/internal/domain/news"
	"github.com/riskibarqy/fantasy-trade-market/internal/platform/logging"
	"github.com/riskibarqy/fantasy-trade-market/internal/platform/resilience"
)

const defaultBaseURL = "https://site.api.espn.com/apis/site/v2/sports"

var errNewsTransient = crerr.New("news feed transient failure")

// sportPaths maps provider game codes to the feed's sport/league path.
var sportPaths = map[string]string{
	"nba": "basketball/nba",
	"nfl": "football/nfl",
	"mlb": "baseball/mlb",
	"nhl": "hockey/nhl",
}

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient *http.Client
	baseURL    string
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
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 8 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     logger,
		breaker:    cfg.CircuitBreaker.Build(),
	}
}

type feedResponse struct {
	Articles []feedArticle `json:"articles"`
}

type feedArticle struct {
	Headline    string `json:"headline"`
	Description string `json:"description"`
	Published   string `json:"published"`
	Images      []struct {
		URL string `json:"url"`
	} `json:"images"`
	Links struct {
		Web struct {
			Href string `json:"href"`
		} `json:"web"`
	} `json:"links"`
}

// FetchHeadlines returns up to limit headlines for gameCode. Unknown codes
// yield no items and no error.
func (c *Client) FetchHeadlines(ctx context.Context, gameCode string, limit int) ([]news.Item, error) {
	sport, ok := sportPaths[strings.ToLower(strings.TrimSpace(gameCode))]
	if !ok {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	if err := c.breaker.Allow(); err != nil {
		return nil, fmt.Errorf("news feed unavailable: %w", err)
	}
	raw, err := c.get(ctx, c.baseURL+"/"+sport+"/news?limit="+strconv.Itoa(limit))
	switch {
	case err == nil:
		c.breaker.RecordSuccess()
	case stderrors.Is(err, errNewsTransient):
		c.breaker.RecordFailure()
	default:
		c.breaker.RecordSuccess()
	}
	if err != nil {
		return nil, err
	}

	var resp feedResponse
	if err := sonic.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode news feed: %w", err)
	}

	items := make([]news.Item, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		link := strings.TrimSpace(a.Links.Web.Href)
		if link == "" || strings.TrimSpace(a.Headline) == "" {
			c.logger.DebugContext(ctx, "skip headline without link", "game_code", gameCode)
			continue
		}
		item := news.Item{
			Link:        link,
			GameCode:    gameCode,
			Headline:    strings.TrimSpace(a.Headline),
			Description: strings.TrimSpace(a.Description),
			PublishedAt: parsePublished(a.Published),
		}
		if len(a.Images) > 0 {
			item.ImageURL = a.Images[0].URL
		}
		items = append(items, item)
		if len(items) == limit {
			break
		}
	}
	return items, nil
}

func (c *Client) get(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build news request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: send news request: %v", errNewsTransient, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read news response: %v", errNewsTransient, err)
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: news feed status=%d", errNewsTransient, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("news feed status=%d", resp.StatusCode)
	}
	return raw, nil
}

func parsePublished(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04Z"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
