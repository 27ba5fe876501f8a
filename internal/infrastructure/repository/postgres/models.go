package postgres

import (
	"database/sql"
	"time"
)

type credentialTableModel struct {
	UserID       string    `db:"user_id"`
	Provider     string    `db:"provider"`
	AccessToken  string    `db:"access_token"`
	RefreshToken string    `db:"refresh_token"`
	ExpiresAt    time.Time `db:"expires_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type gameTableModel struct {
	Key    string `db:"key"`
	Code   string `db:"code"`
	Name   string `db:"name"`
	Season string `db:"season"`
}

type leagueTableModel struct {
	Key         string       `db:"key"`
	GameKey     string       `db:"game_key"`
	Name        string       `db:"name"`
	URL         string       `db:"url"`
	NumTeams    int          `db:"num_teams"`
	ScoringType string       `db:"scoring_type"`
	CurrentWeek int          `db:"current_week"`
	LastSyncAt  sql.NullTime `db:"last_sync_at"`
}

type teamTableModel struct {
	Key           string `db:"key"`
	LeagueKey     string `db:"league_key"`
	ManagerUserID string `db:"manager_user_id"`
	Name          string `db:"name"`
	LogoURL       string `db:"logo_url"`
	Wins          int    `db:"wins"`
	Losses        int    `db:"losses"`
	Ties          int    `db:"ties"`
	Rank          int    `db:"rank"`
}

type playerTableModel struct {
	Key             string  `db:"key"`
	FullName        string  `db:"full_name"`
	TeamAbbr        string  `db:"team_abbr"`
	PhotoURL        string  `db:"photo_url"`
	Position        string  `db:"position"`
	Status          string  `db:"status"`
	FantasyPoints   float64 `db:"fantasy_points"`
	ProjectedPoints float64 `db:"projected_points"`
	PercentOwned    float64 `db:"percent_owned"`
	PercentStarted  float64 `db:"percent_started"`
	MarketValue     int64   `db:"market_value"`
	Stats           string  `db:"stats"`
}

type transactionTableModel struct {
	Key         string    `db:"key"`
	LeagueKey   string    `db:"league_key"`
	Type        string    `db:"type"`
	Status      string    `db:"status"`
	OccurredAt  time.Time `db:"occurred_at"`
	Payload     string    `db:"payload"`
	PayloadHash string    `db:"payload_hash"`
}

type tradeTableModel struct {
	Key           string    `db:"key"`
	LeagueKey     string    `db:"league_key"`
	Status        string    `db:"status"`
	TraderTeamKey string    `db:"trader_team_key"`
	TradeeTeamKey string    `db:"tradee_team_key"`
	ProposedAt    time.Time `db:"proposed_at"`
}

type tradeItemTableModel struct {
	TradeKey        string `db:"trade_key"`
	PlayerKey       string `db:"player_key"`
	SenderTeamKey   string `db:"sender_team_key"`
	ReceiverTeamKey string `db:"receiver_team_key"`
}

type listingTableModel struct {
	ID           string    `db:"id"`
	SellerUserID string    `db:"seller_user_id"`
	PlayerKey    string    `db:"player_key"`
	Status       string    `db:"status"`
	Notes        string    `db:"notes"`
	Resolution   string    `db:"resolution"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type offerTableModel struct {
	ID               string    `db:"id"`
	ListingID        string    `db:"listing_id"`
	OffererUserID    string    `db:"offerer_user_id"`
	OfferedPlayerKey string    `db:"offered_player_key"`
	OfferedCredits   int64     `db:"offered_credits"`
	Status           string    `db:"status"`
	Resolution       string    `db:"resolution"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

type notificationTableModel struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Type      string    `db:"type"`
	Title     string    `db:"title"`
	Message   string    `db:"message"`
	Link      string    `db:"link"`
	Read      bool      `db:"read"`
	CreatedAt time.Time `db:"created_at"`
}

type newsTableModel struct {
	Link        string    `db:"link"`
	GameCode    string    `db:"game_code"`
	Headline    string    `db:"headline"`
	Description string    `db:"description"`
	ImageURL    string    `db:"image_url"`
	PublishedAt time.Time `db:"published_at"`
}
