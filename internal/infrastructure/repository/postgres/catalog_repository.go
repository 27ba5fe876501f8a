package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fantasy-trade-market/internal/domain/game"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/league"
	qb "github.com/riskibarqy/fantasy-trade-market/internal/platform/querybuilder"
)

type GameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) Upsert(ctx context.Context, g game.Game) error {
	if err := g.Validate(); err != nil {
		return err
	}
	query, args, err := qb.InsertModel("games", gameTableModel{
		Key: g.Key, Code: g.Code, Name: g.Name, Season: g.Season,
	}, "ON CONFLICT (key) DO UPDATE SET "+qb.Excluded("code", "name", "season"))
	if err != nil {
		return fmt.Errorf("build upsert game query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert game %s: %w", g.Key, err)
	}
	return nil
}

func (r *GameRepository) GetByKey(ctx context.Context, key string) (game.Game, bool, error) {
	query, args, err := qb.Select("key", "code", "name", "season").From("games").
		Where(qb.Eq("key", key)).
		ToSQL()
	if err != nil {
		return game.Game{}, false, fmt.Errorf("build select game query: %w", err)
	}
	var row gameTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, fmt.Errorf("select game: %w", err)
	}
	return game.Game{Key: row.Key, Code: row.Code, Name: row.Name, Season: row.Season}, true, nil
}

type LeagueRepository struct {
	db *sqlx.DB
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

func (r *LeagueRepository) Upsert(ctx context.Context, l league.League) error {
	if err := l.Validate(); err != nil {
		return err
	}
	row := leagueTableModel{
		Key:         l.Key,
		GameKey:     l.GameKey,
		Name:        l.Name,
		URL:         l.URL,
		NumTeams:    l.NumTeams,
		ScoringType: l.ScoringType,
		CurrentWeek: l.CurrentWeek,
		LastSyncAt:  sql.NullTime{Time: l.LastSyncAt, Valid: !l.LastSyncAt.IsZero()},
	}
	query, args, err := qb.InsertModel("leagues", row,
		"ON CONFLICT (key) DO UPDATE SET "+qb.Excluded("game_key", "name", "url", "num_teams", "scoring_type", "current_week", "last_sync_at"))
	if err != nil {
		return fmt.Errorf("build upsert league query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert league %s: %w", l.Key, err)
	}
	return nil
}

func (r *LeagueRepository) GetByKey(ctx context.Context, key string) (league.League, bool, error) {
	query, args, err := qb.Select("*").From("leagues").Where(qb.Eq("key", key)).ToSQL()
	if err != nil {
		return league.League{}, false, fmt.Errorf("build select league query: %w", err)
	}
	var row leagueTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.League{}, false, nil
		}
		return league.League{}, false, fmt.Errorf("select league: %w", err)
	}
	return league.League{
		Key:         row.Key,
		GameKey:     row.GameKey,
		Name:        row.Name,
		URL:         row.URL,
		NumTeams:    row.NumTeams,
		ScoringType: row.ScoringType,
		CurrentWeek: row.CurrentWeek,
		LastSyncAt:  row.LastSyncAt.Time,
	}, true, nil
}
