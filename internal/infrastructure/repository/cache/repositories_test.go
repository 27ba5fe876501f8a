package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/fantasy-trade-market/internal/domain/team"
	"github.com/riskibarqy/fantasy-trade-market/internal/infrastructure/repository/memory"
	basecache "github.com/riskibarqy/fantasy-trade-market/internal/platform/cache"
)

type countingTeams struct {
	*memory.TeamRepository
	listByLeague int
}

func (c *countingTeams) ListByLeague(ctx context.Context, leagueKey string) ([]team.Team, error) {
	c.listByLeague++
	return c.TeamRepository.ListByLeague(ctx, leagueKey)
}

func TestTeamRepositoryCachesAndInvalidatesOnUpsert(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := &countingTeams{TeamRepository: memory.NewTeamRepository()}
	repo := NewTeamRepository(next, basecache.NewStore(64, time.Minute))

	require.NoError(t, repo.Upsert(ctx, team.Team{Key: "428.l.1.t.1", LeagueKey: "428.l.1", Name: "A"}))

	first, err := repo.ListByLeague(ctx, "428.l.1")
	require.NoError(t, err)
	require.Len(t, first, 1)

	_, err = repo.ListByLeague(ctx, "428.l.1")
	require.NoError(t, err)
	require.Equal(t, 1, next.listByLeague)

	require.NoError(t, repo.Upsert(ctx, team.Team{Key: "428.l.1.t.2", LeagueKey: "428.l.1", Name: "B"}))

	second, err := repo.ListByLeague(ctx, "428.l.1")
	require.NoError(t, err)
	require.Len(t, second, 2)
	require.Equal(t, 2, next.listByLeague)
}

func TestTeamRepositoryManagerListDropsOnSyncPrefix(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := basecache.NewStore(64, time.Minute)
	next := memory.NewTeamRepository()
	repo := NewTeamRepository(next, store)

	require.NoError(t, next.Upsert(ctx, team.Team{Key: "428.l.1.t.1", LeagueKey: "428.l.1", ManagerUserID: "u1"}))
	teams, err := repo.ListByManager(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, teams, 1)

	require.NoError(t, next.Upsert(ctx, team.Team{Key: "428.l.2.t.4", LeagueKey: "428.l.2", ManagerUserID: "u1"}))
	stale, err := repo.ListByManager(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, stale, 1)

	require.Equal(t, 1, store.DeletePrefix(ctx, "user:u1:"))
	fresh, err := repo.ListByManager(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, fresh, 2)
}

func TestLeagueOfTeam(t *testing.T) {
	t.Parallel()

	require.Equal(t, "428.l.1234", leagueOfTeam("428.l.1234.t.5"))
	require.Equal(t, "odd", leagueOfTeam("odd"))
}
