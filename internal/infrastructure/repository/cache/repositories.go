package cache

import (
	"context"
	"strings"

	"github.com/riskibarqy/fantasy-trade-market/internal/domain/game"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/league"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/team"
	basecache "github.com/riskibarqy/fantasy-trade-market/internal/platform/cache"
)

// Keys are grouped under "league:{key}:" and "user:{id}:" so a sync can drop
// everything it touched with one prefix delete.

type GameRepository struct {
	next  game.Repository
	cache *basecache.Store
}

func NewGameRepository(next game.Repository, cache *basecache.Store) *GameRepository {
	return &GameRepository{next: next, cache: cache}
}

func (r *GameRepository) Upsert(ctx context.Context, g game.Game) error {
	if err := r.next.Upsert(ctx, g); err != nil {
		return err
	}
	r.cache.Delete(ctx, "game:"+g.Key)
	return nil
}

func (r *GameRepository) GetByKey(ctx context.Context, key string) (game.Game, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, "game:"+key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByKey(ctx, key)
		if err != nil {
			return nil, err
		}
		return cachedGame{value: item, exists: exists}, nil
	})
	if err != nil {
		return game.Game{}, false, err
	}

	cached, _ := v.(cachedGame)
	return cached.value, cached.exists, nil
}

type cachedGame struct {
	value  game.Game
	exists bool
}

type LeagueRepository struct {
	next  league.Repository
	cache *basecache.Store
}

func NewLeagueRepository(next league.Repository, cache *basecache.Store) *LeagueRepository {
	return &LeagueRepository{next: next, cache: cache}
}

func (r *LeagueRepository) Upsert(ctx context.Context, l league.League) error {
	if err := r.next.Upsert(ctx, l); err != nil {
		return err
	}
	r.cache.Delete(ctx, leaguePrefix(l.Key)+"meta")
	return nil
}

func (r *LeagueRepository) GetByKey(ctx context.Context, key string) (league.League, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, leaguePrefix(key)+"meta", func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByKey(ctx, key)
		if err != nil {
			return nil, err
		}
		return cachedLeague{value: item, exists: exists}, nil
	})
	if err != nil {
		return league.League{}, false, err
	}

	cached, _ := v.(cachedLeague)
	return cached.value, cached.exists, nil
}

type cachedLeague struct {
	value  league.League
	exists bool
}

type TeamRepository struct {
	next  team.Repository
	cache *basecache.Store
}

func NewTeamRepository(next team.Repository, cache *basecache.Store) *TeamRepository {
	return &TeamRepository{next: next, cache: cache}
}

// Upsert drops the league's team entries and, when known, the manager's.
// A manager change also needs the previous manager's entries gone, which
// the sync's user prefix delete covers.
func (r *TeamRepository) Upsert(ctx context.Context, t team.Team) error {
	if err := r.next.Upsert(ctx, t); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, leaguePrefix(t.LeagueKey)+"team")
	if t.ManagerUserID != "" {
		r.cache.Delete(ctx, userPrefix(t.ManagerUserID)+"teams")
	}
	return nil
}

func (r *TeamRepository) GetByKey(ctx context.Context, key string) (team.Team, bool, error) {
	cacheKey := leaguePrefix(leagueOfTeam(key)) + "team:" + key
	v, err := r.cache.GetOrLoad(ctx, cacheKey, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByKey(ctx, key)
		if err != nil {
			return nil, err
		}
		return cachedTeam{value: item, exists: exists}, nil
	})
	if err != nil {
		return team.Team{}, false, err
	}

	cached, _ := v.(cachedTeam)
	return cached.value, cached.exists, nil
}

func (r *TeamRepository) ListByLeague(ctx context.Context, leagueKey string) ([]team.Team, error) {
	return r.list(ctx, leaguePrefix(leagueKey)+"teams", func(ctx context.Context) ([]team.Team, error) {
		return r.next.ListByLeague(ctx, leagueKey)
	})
}

func (r *TeamRepository) ListByManager(ctx context.Context, userID string) ([]team.Team, error) {
	if userID == "" {
		return nil, nil
	}
	return r.list(ctx, userPrefix(userID)+"teams", func(ctx context.Context) ([]team.Team, error) {
		return r.next.ListByManager(ctx, userID)
	})
}

func (r *TeamRepository) list(ctx context.Context, key string, load func(context.Context) ([]team.Team, error)) ([]team.Team, error) {
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return append([]team.Team(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]team.Team)
	return append([]team.Team(nil), items...), nil
}

type cachedTeam struct {
	value  team.Team
	exists bool
}

func leaguePrefix(leagueKey string) string {
	return "league:" + leagueKey + ":"
}

func userPrefix(userID string) string {
	return "user:" + userID + ":"
}

func leagueOfTeam(teamKey string) string {
	if i := strings.LastIndex(teamKey, ".t."); i > 0 {
		return teamKey[:i]
	}
	return teamKey
}
