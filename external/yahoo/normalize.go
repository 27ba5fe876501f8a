package yahoo

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/fantasy-trade-market/internal/domain/valuation"
	"github.com/riskibarqy/fantasy-trade-market/internal/platform/logging"
	"github.com/riskibarqy/fantasy-trade-market/internal/platform/payload"
	"github.com/riskibarqy/fantasy-trade-market/internal/usecase"
)

// Stat id the basketball games use for games played.
const gamesPlayedStatID = "0"

func parseTopology(ctx context.Context, logger *logging.Logger, content any) []usecase.ExternalGame {
	var out []usecase.ExternalGame
	for _, u := range payload.Children(content, "users", "user") {
		for _, g := range payload.Children(u, "games", "game") {
			key := payload.String(g, "game_key")
			if key == "" {
				logger.WarnContext(ctx, "skip game without key")
				continue
			}
			item := usecase.ExternalGame{
				Key:    key,
				Code:   payload.String(g, "code"),
				Name:   payload.String(g, "name"),
				Season: payload.String(g, "season"),
			}
			for _, l := range payload.Children(g, "leagues", "league") {
				lk := payload.String(l, "league_key")
				if lk == "" {
					logger.WarnContext(ctx, "skip league without key", "game_key", key)
					continue
				}
				item.Leagues = append(item.Leagues, usecase.ExternalLeague{
					Key:         lk,
					Name:        payload.String(l, "name"),
					URL:         payload.String(l, "url"),
					NumTeams:    int(payload.Int(l, "num_teams")),
					ScoringType: payload.String(l, "scoring_type"),
					CurrentWeek: int(payload.Int(l, "current_week")),
				})
			}
			out = append(out, item)
		}
	}
	return out
}

// parseLeagueTeams reads teams from a standings response, or from a plain
// teams collection when standings are absent.
func parseLeagueTeams(ctx context.Context, logger *logging.Logger, content any) []usecase.ExternalTeam {
	lg, _ := payload.Field(content, "league")
	source := lg
	if standings, ok := payload.Field(lg, "standings"); ok {
		source = standings
	}

	var out []usecase.ExternalTeam
	for _, t := range payload.Children(source, "teams", "team") {
		key := payload.String(t, "team_key")
		if key == "" {
			logger.WarnContext(ctx, "skip team without key")
			continue
		}
		item := usecase.ExternalTeam{
			Key:                  key,
			Name:                 payload.String(t, "name"),
			LogoURL:              teamLogo(t),
			ManagedByCurrentUser: managedByCurrentUser(t),
		}
		if st := payload.Object(t, "team_standings"); st != nil {
			item.Rank = int(payload.Int(st, "rank"))
			totals := payload.Object(st, "outcome_totals")
			item.Wins = int(payload.Int(totals, "wins"))
			item.Losses = int(payload.Int(totals, "losses"))
			item.Ties = int(payload.Int(totals, "ties"))
		}
		out = append(out, item)
	}
	return out
}

func teamLogo(team any) string {
	logos, _ := payload.Field(team, "team_logos")
	return payload.String(payload.Single(logos, "team_logo"), "url")
}

func managedByCurrentUser(team any) bool {
	if payload.Bool(team, "is_owned_by_current_login") {
		return true
	}
	managers, _ := payload.Field(team, "managers")
	for _, m := range payload.Counted(managers) {
		if payload.Bool(payload.Single(m, "manager"), "is_current_login") {
			return true
		}
	}
	return false
}

func parseRoster(ctx context.Context, logger *logging.Logger, content any) []usecase.ExternalPlayer {
	tm, _ := payload.Field(content, "team")
	roster, _ := payload.Field(tm, "roster")

	var out []usecase.ExternalPlayer
	for _, p := range payload.Children(payload.Single(roster, ""), "players", "player") {
		item, ok := parsePlayer(p)
		if !ok {
			logger.WarnContext(ctx, "skip roster entry without player key")
			continue
		}
		out = append(out, item)
	}
	return out
}

func parsePlayer(p any) (usecase.ExternalPlayer, bool) {
	key := payload.String(p, "player_key")
	if key == "" {
		return usecase.ExternalPlayer{}, false
	}

	status := payload.String(p, "status")
	item := usecase.ExternalPlayer{
		Key:            key,
		FullName:       payload.String(payload.Object(p, "name"), "full"),
		TeamAbbr:       payload.String(p, "editorial_team_abbr"),
		PhotoURL:       playerPhoto(p),
		Position:       firstNonEmpty(payload.String(p, "primary_position"), payload.String(p, "display_position")),
		Status:         status,
		PercentOwned:   percentOf(p, "percent_owned"),
		PercentStarted: percentOf(p, "percent_started"),
		Valuation:      valuation.Inputs{Status: status},
	}

	for _, raw := range payload.All(p, "player_points") {
		pts := payload.Single(raw, "")
		total := payload.Float(pts, "total")
		if isPrediction(payload.String(pts, "coverage_type")) {
			item.Valuation.Predictions = append(item.Valuation.Predictions, total)
			continue
		}
		item.Valuation.Points = append(item.Valuation.Points, total)
	}

	for _, raw := range payload.All(p, "player_stats") {
		ps := payload.Single(raw, "")
		coverage := payload.String(ps, "coverage_type")
		stats := statValues(ps)
		switch {
		case isPrediction(coverage):
			if payload.Has(ps, "total") {
				item.Valuation.Predictions = append(item.Valuation.Predictions, payload.Float(ps, "total"))
			}
		case coverage == "season":
			item.Valuation.SeasonTotal = payload.Float(ps, "total")
			item.Valuation.GamesPlayed = payload.Float(ps, "games_played")
			if item.Valuation.GamesPlayed == 0 {
				item.Valuation.GamesPlayed = payload.AsFloat(stats[gamesPlayedStatID])
			}
			fallthrough
		default:
			if item.Stats == nil && len(stats) > 0 {
				item.Stats = stats
			}
		}
	}
	return item, true
}

func statValues(playerStats map[string]any) map[string]string {
	list, _ := payload.Field(playerStats, "stats")
	out := make(map[string]string)
	for _, raw := range payload.Counted(list) {
		stat := payload.Single(raw, "stat")
		id := payload.String(stat, "stat_id")
		if id == "" {
			continue
		}
		out[id] = payload.String(stat, "value")
	}
	return out
}

// percentOf reads {"percent_owned": [{"coverage_type": ...}, {"value": 87}]} or the object form.
func percentOf(p any, key string) float64 {
	v, ok := payload.Field(p, key)
	if !ok {
		return 0
	}
	if n := payload.AsFloat(v); n != 0 {
		return n
	}
	return payload.Float(v, "value")
}

func playerPhoto(p any) string {
	if u := payload.String(payload.Object(p, "headshot"), "url"); u != "" {
		return u
	}
	return payload.String(p, "image_url")
}

func isPrediction(coverage string) bool {
	c := strings.ToLower(coverage)
	return strings.Contains(c, "predict") || strings.Contains(c, "project")
}

// parseTransactions reads a league transactions collection, trades and moves alike.
func parseTransactions(ctx context.Context, logger *logging.Logger, content any) []usecase.ExternalTransaction {
	lg, _ := payload.Field(content, "league")

	var out []usecase.ExternalTransaction
	for _, raw := range payload.Children(lg, "transactions", "transaction") {
		key := payload.String(raw, "transaction_key")
		if key == "" {
			logger.WarnContext(ctx, "skip transaction without key")
			continue
		}
		item := usecase.ExternalTransaction{
			Key:           key,
			Type:          payload.String(raw, "type"),
			Status:        payload.String(raw, "status"),
			Timestamp:     transactionTime(raw),
			TraderTeamKey: payload.String(raw, "trader_team_key"),
			TradeeTeamKey: payload.String(raw, "tradee_team_key"),
		}
		for _, p := range payload.Children(raw, "players", "player") {
			move, ok := parseMove(p)
			if !ok {
				logger.WarnContext(ctx, "skip transaction player without key", "transaction_key", key)
				continue
			}
			item.Moves = append(item.Moves, move)
		}
		item.RawJSON, item.RawHash = snapshot(raw)
		out = append(out, item)
	}
	return out
}

// parseMove reads one player entry. transaction_data is an array for add/drop
// and a bare object for trades.
func parseMove(p any) (usecase.ExternalMove, bool) {
	key := payload.String(p, "player_key")
	if key == "" {
		return usecase.ExternalMove{}, false
	}
	td, _ := payload.Field(p, "transaction_data")
	data := payload.Single(td, "")
	return usecase.ExternalMove{
		PlayerKey:          key,
		PlayerName:         payload.String(payload.Object(p, "name"), "full"),
		Type:               payload.String(data, "type"),
		SourceTeamKey:      payload.String(data, "source_team_key"),
		DestinationTeamKey: payload.String(data, "destination_team_key"),
	}, true
}

func transactionTime(raw any) time.Time {
	for _, key := range []string{"timestamp", "trade_proposed_time"} {
		if secs := payload.Int(raw, key); secs > 0 {
			return time.Unix(secs, 0).UTC()
		}
	}
	return time.Time{}
}

// snapshot re-encodes the transaction node and fingerprints it.
func snapshot(raw any) (string, string) {
	encoded, err := sonic.MarshalString(raw)
	if err != nil {
		return "", ""
	}
	sum := sha256.Sum256([]byte(encoded))
	return encoded, hex.EncodeToString(sum[:])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
