package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/fantasy-trade-market/internal/domain/news"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/valuation"
)

// YahooProvider is the read surface of the fantasy provider. Every method
// takes the access token explicitly so calls can be wrapped by WithTokenRefresh.
// Errors wrap ErrTokenExpired on provider 401 and ErrProvider otherwise.
type YahooProvider interface {
	FetchTopology(ctx context.Context, accessToken string) ([]ExternalGame, error)
	FetchLeagueTeams(ctx context.Context, accessToken, leagueKey string) ([]ExternalTeam, error)
	FetchLeagueTransactions(ctx context.Context, accessToken, leagueKey string) ([]ExternalTransaction, error)
	FetchRoster(ctx context.Context, accessToken, teamKey string) ([]ExternalPlayer, error)
	FetchPendingTrades(ctx context.Context, accessToken, teamKey string) ([]ExternalTransaction, error)
}

// OAuthToken is a token endpoint response. ExpiresIn is in seconds.
type OAuthToken struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	Expiry       time.Time
}

type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (OAuthToken, error)
}

type AuthCodeExchanger interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (OAuthToken, error)
}

type NewsProvider interface {
	FetchHeadlines(ctx context.Context, gameCode string, limit int) ([]news.Item, error)
}

type ExternalGame struct {
	Key     string
	Code    string
	Name    string
	Season  string
	Leagues []ExternalLeague
}

type ExternalLeague struct {
	Key         string
	Name        string
	URL         string
	NumTeams    int
	ScoringType string
	CurrentWeek int
}

type ExternalTeam struct {
	Key     string
	Name    string
	LogoURL string
	// ManagedByCurrentUser is set when the provider flags the caller as a manager of the team.
	ManagedByCurrentUser bool
	Wins                 int
	Losses               int
	Ties                 int
	Rank                 int
}

type ExternalPlayer struct {
	Key            string
	FullName       string
	TeamAbbr       string
	PhotoURL       string
	Position       string
	Status         string
	PercentOwned   float64
	PercentStarted float64
	Valuation      valuation.Inputs
	Stats          map[string]string
}

// ExternalTransaction is a provider transaction with its player moves in provider order.
type ExternalTransaction struct {
	Key           string
	Type          string
	Status        string
	Timestamp     time.Time
	TraderTeamKey string
	TradeeTeamKey string
	Moves         []ExternalMove
	RawJSON       string
	RawHash       string
}

type ExternalMove struct {
	PlayerKey          string
	PlayerName         string
	Type               string
	SourceTeamKey      string
	DestinationTeamKey string
}
