package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"github.com/riskibarqy/fantasy-trade-market/internal/domain/team"
	qb "github.com/riskibarqy/fantasy-trade-market/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) Upsert(ctx context.Context, t team.Team) error {
	if err := t.Validate(); err != nil {
		return err
	}
	const upsertTeamQuery = `
INSERT INTO teams (key, league_key, manager_user_id, name, logo_url, wins, losses, ties, rank)
VALUES (:key, :league_key, :manager_user_id, :name, :logo_url, :wins, :losses, :ties, :rank)
ON CONFLICT (key) DO UPDATE SET
    league_key = EXCLUDED.league_key,
    manager_user_id = CASE WHEN EXCLUDED.manager_user_id = '' THEN teams.manager_user_id ELSE EXCLUDED.manager_user_id END,
    name = EXCLUDED.name,
    logo_url = EXCLUDED.logo_url,
    wins = EXCLUDED.wins,
    losses = EXCLUDED.losses,
    ties = EXCLUDED.ties,
    rank = EXCLUDED.rank`

	query, args, err := sqlx.Named(upsertTeamQuery, teamTableModel{
		Key:           t.Key,
		LeagueKey:     t.LeagueKey,
		ManagerUserID: t.ManagerUserID,
		Name:          t.Name,
		LogoURL:       t.LogoURL,
		Wins:          t.Wins,
		Losses:        t.Losses,
		Ties:          t.Ties,
		Rank:          t.Rank,
	})
	if err != nil {
		return fmt.Errorf("bind upsert team query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("upsert team %s: %w", t.Key, err)
	}
	return nil
}

func (r *TeamRepository) GetByKey(ctx context.Context, key string) (team.Team, bool, error) {
	rows, err := r.selectTeams(ctx, qb.Eq("key", key))
	if err != nil {
		return team.Team{}, false, err
	}
	if len(rows) == 0 {
		return team.Team{}, false, nil
	}
	return rows[0], true, nil
}

func (r *TeamRepository) ListByLeague(ctx context.Context, leagueKey string) ([]team.Team, error) {
	return r.selectTeams(ctx, qb.Eq("league_key", leagueKey))
}

func (r *TeamRepository) ListByManager(ctx context.Context, userID string) ([]team.Team, error) {
	if userID == "" {
		return nil, nil
	}
	return r.selectTeams(ctx, qb.Eq("manager_user_id", userID))
}

func (r *TeamRepository) selectTeams(ctx context.Context, where ...qb.Condition) ([]team.Team, error) {
	query, args, err := qb.Select("*").From("teams").Where(where...).OrderBy("key").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select teams query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select teams: %w", err)
	}
	return lo.Map(rows, func(row teamTableModel, _ int) team.Team {
		return team.Team{
			Key:           row.Key,
			LeagueKey:     row.LeagueKey,
			ManagerUserID: row.ManagerUserID,
			Name:          row.Name,
			LogoURL:       row.LogoURL,
			Wins:          row.Wins,
			Losses:        row.Losses,
			Ties:          row.Ties,
			Rank:          row.Rank,
		}
	}), nil
}

type RosterRepository struct {
	db *sqlx.DB
}

func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

// SetMembers replaces the team's membership in one transaction.
func (r *RosterRepository) SetMembers(ctx context.Context, teamKey string, playerKeys []string) error {
	keys := lo.Uniq(lo.Compact(playerKeys))
	return withTx(ctx, r.db, "roster replace", func(tx *sqlx.Tx) error {
		query, args, err := qb.DeleteFrom("team_players").
			Where(qb.Eq("team_key", teamKey), qb.NotIn("player_key", qb.Strings(keys))).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build prune roster query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("prune roster %s: %w", teamKey, err)
		}
		if len(keys) == 0 {
			return nil
		}

		insert := qb.InsertInto("team_players").Columns("team_key", "player_key")
		for _, key := range keys {
			insert.Values(teamKey, key)
		}
		query, args, err = insert.Suffix("ON CONFLICT (team_key, player_key) DO NOTHING").ToSQL()
		if err != nil {
			return fmt.Errorf("build insert roster query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert roster %s: %w", teamKey, err)
		}
		return nil
	})
}

func (r *RosterRepository) Connect(ctx context.Context, teamKey, playerKey string) error {
	query, args, err := qb.InsertInto("team_players").
		Columns("team_key", "player_key").
		Values(teamKey, playerKey).
		Suffix("ON CONFLICT (team_key, player_key) DO NOTHING").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build connect roster query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("connect %s to %s: %w", playerKey, teamKey, err)
	}
	return nil
}

func (r *RosterRepository) Disconnect(ctx context.Context, teamKey, playerKey string) error {
	query, args, err := qb.DeleteFrom("team_players").
		Where(qb.Eq("team_key", teamKey), qb.Eq("player_key", playerKey)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build disconnect roster query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("disconnect %s from %s: %w", playerKey, teamKey, err)
	}
	return nil
}

func (r *RosterRepository) Members(ctx context.Context, teamKey string) ([]string, error) {
	return r.column(ctx, "player_key", qb.Eq("team_key", teamKey))
}

func (r *RosterRepository) TeamsForPlayer(ctx context.Context, playerKey string) ([]string, error) {
	return r.column(ctx, "team_key", qb.Eq("player_key", playerKey))
}

func (r *RosterRepository) column(ctx context.Context, column string, where qb.Condition) ([]string, error) {
	query, args, err := qb.Select(column).From("team_players").Where(where).OrderBy(column).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build roster query: %w", err)
	}
	var out []string
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("select roster %s: %w", column, err)
	}
	return out, nil
}
