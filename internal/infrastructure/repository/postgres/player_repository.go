package postgres

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fantasy-trade-market/internal/domain/player"
	qb "github.com/riskibarqy/fantasy-trade-market/internal/platform/querybuilder"
)

var playerUpdateColumns = []string{
	"full_name", "team_abbr", "photo_url", "position", "status",
	"fantasy_points", "projected_points", "percent_owned", "percent_started", "market_value", "stats",
}

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) Upsert(ctx context.Context, p player.Player) error {
	if err := p.Validate(); err != nil {
		return err
	}
	stats := p.Stats
	if stats == nil {
		stats = map[string]string{}
	}
	encoded, err := sonic.MarshalString(stats)
	if err != nil {
		return fmt.Errorf("encode player stats: %w", err)
	}

	query, args, err := qb.InsertModel("players", playerTableModel{
		Key:             p.Key,
		FullName:        p.FullName,
		TeamAbbr:        p.TeamAbbr,
		PhotoURL:        p.PhotoURL,
		Position:        p.Position,
		Status:          p.Status,
		FantasyPoints:   p.FantasyPoints,
		ProjectedPoints: p.ProjectedPoints,
		PercentOwned:    p.PercentOwned,
		PercentStarted:  p.PercentStarted,
		MarketValue:     p.MarketValue,
		Stats:           encoded,
	}, "ON CONFLICT (key) DO UPDATE SET "+qb.Excluded(playerUpdateColumns...))
	if err != nil {
		return fmt.Errorf("build upsert player query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert player %s: %w", p.Key, err)
	}
	return nil
}

func (r *PlayerRepository) EnsureExists(ctx context.Context, key, fullName string) error {
	if key == "" {
		return player.Player{}.Validate()
	}
	query, args, err := qb.InsertInto("players").
		Columns("key", "full_name").
		Values(key, fullName).
		Suffix("ON CONFLICT (key) DO NOTHING").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build ensure player query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("ensure player %s: %w", key, err)
	}
	return nil
}

func (r *PlayerRepository) GetByKey(ctx context.Context, key string) (player.Player, bool, error) {
	rows, err := r.selectPlayers(ctx, qb.Eq("key", key))
	if err != nil {
		return player.Player{}, false, err
	}
	if len(rows) == 0 {
		return player.Player{}, false, nil
	}
	return rows[0], true, nil
}

func (r *PlayerRepository) List(ctx context.Context) ([]player.Player, error) {
	return r.selectPlayers(ctx)
}

func (r *PlayerRepository) selectPlayers(ctx context.Context, where ...qb.Condition) ([]player.Player, error) {
	query, args, err := qb.Select("*").From("players").Where(where...).OrderBy("key").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players query: %w", err)
	}
	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select players: %w", err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		var stats map[string]string
		if len(row.Stats) > 0 {
			if err := sonic.UnmarshalString(row.Stats, &stats); err != nil {
				return nil, fmt.Errorf("decode stats of player %s: %w", row.Key, err)
			}
		}
		out = append(out, player.Player{
			Key:             row.Key,
			FullName:        row.FullName,
			TeamAbbr:        row.TeamAbbr,
			PhotoURL:        row.PhotoURL,
			Position:        row.Position,
			Status:          row.Status,
			FantasyPoints:   row.FantasyPoints,
			ProjectedPoints: row.ProjectedPoints,
			PercentOwned:    row.PercentOwned,
			PercentStarted:  row.PercentStarted,
			MarketValue:     row.MarketValue,
			Stats:           stats,
		})
	}
	return out, nil
}
