package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/fantasy-trade-market/internal/domain/credential"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/notification"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/player"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/team"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/valuation"
	"github.com/riskibarqy/fantasy-trade-market/internal/infrastructure/repository/memory"
	idgen "github.com/riskibarqy/fantasy-trade-market/internal/platform/id"
	"github.com/riskibarqy/fantasy-trade-market/internal/platform/logging"
	"github.com/riskibarqy/fantasy-trade-market/internal/usecase"
)

type staticTokens struct {
	mu      sync.Mutex
	token   string
	err     error
	refresh int
}

func (s *staticTokens) GetValidToken(context.Context, string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.err
}

func (s *staticTokens) ForceRefresh(context.Context, string, string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh++
	s.token = fmt.Sprintf("tok-%d", s.refresh)
	return s.token, nil
}

type fakeProvider struct {
	mu           sync.Mutex
	topology     []usecase.ExternalGame
	topologyErr  error
	teams        map[string][]usecase.ExternalTeam
	teamsErr     map[string]error
	transactions map[string][]usecase.ExternalTransaction
	rosters      map[string][]usecase.ExternalPlayer
	pending      map[string][]usecase.ExternalTransaction
	// staleToken is rejected as expired by every call.
	staleToken string
}

func (p *fakeProvider) check(token string) error {
	if p.staleToken != "" && token == p.staleToken {
		return fmt.Errorf("%w: status 401", usecase.ErrTokenExpired)
	}
	return nil
}

func (p *fakeProvider) FetchTopology(_ context.Context, token string) ([]usecase.ExternalGame, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.check(token); err != nil {
		return nil, err
	}
	return p.topology, p.topologyErr
}

func (p *fakeProvider) FetchLeagueTeams(_ context.Context, token, leagueKey string) ([]usecase.ExternalTeam, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.check(token); err != nil {
		return nil, err
	}
	if err := p.teamsErr[leagueKey]; err != nil {
		return nil, err
	}
	return p.teams[leagueKey], nil
}

func (p *fakeProvider) FetchLeagueTransactions(_ context.Context, token, leagueKey string) ([]usecase.ExternalTransaction, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.check(token); err != nil {
		return nil, err
	}
	return p.transactions[leagueKey], nil
}

func (p *fakeProvider) FetchRoster(_ context.Context, token, teamKey string) ([]usecase.ExternalPlayer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.check(token); err != nil {
		return nil, err
	}
	return p.rosters[teamKey], nil
}

func (p *fakeProvider) FetchPendingTrades(_ context.Context, token, teamKey string) ([]usecase.ExternalTransaction, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.check(token); err != nil {
		return nil, err
	}
	return p.pending[teamKey], nil
}

type syncEnv struct {
	svc           *usecase.YahooSyncService
	provider      *fakeProvider
	tokens        *staticTokens
	teams         *memory.TeamRepository
	roster        *memory.RosterRepository
	players       *memory.PlayerRepository
	leagues       *memory.LeagueRepository
	txs           *memory.ProviderTxRepository
	notifications *memory.NotificationRepository
}

func twoLeagueProvider() *fakeProvider {
	return &fakeProvider{
		topology: []usecase.ExternalGame{{
			Key: "428", Code: "nba", Name: "Basketball", Season: "2023",
			Leagues: []usecase.ExternalLeague{
				{Key: "428.l.1", Name: "One"},
				{Key: "428.l.2", Name: "Two"},
			},
		}},
		teams: map[string][]usecase.ExternalTeam{
			"428.l.1": {
				{Key: "428.l.1.t.1", Name: "Mine", ManagedByCurrentUser: true},
				{Key: "428.l.1.t.2", Name: "Theirs"},
			},
			"428.l.2": {{Key: "428.l.2.t.4", Name: "Also mine", ManagedByCurrentUser: true}},
		},
		teamsErr: map[string]error{},
		transactions: map[string][]usecase.ExternalTransaction{
			"428.l.1": {{
				Key: "428.l.1.tr.1", Type: "add", Timestamp: time.Unix(100, 0),
				Moves: []usecase.ExternalMove{{PlayerKey: "428.p.9", PlayerName: "Added", DestinationTeamKey: "428.l.1.t.2"}},
			}},
		},
		rosters: map[string][]usecase.ExternalPlayer{
			"428.l.1.t.1": {
				{Key: "428.p.1", FullName: "Alpha", Status: "", Valuation: valuation.Inputs{SeasonTotal: 500, GamesPlayed: 50}},
				{Key: "428.p.2", FullName: "Beta", Status: "INJ"},
				{Key: ""},
			},
			"428.l.1.t.2": {{Key: "428.p.3", FullName: "Gamma"}},
			"428.l.2.t.4": {{Key: "428.p.1", FullName: "Alpha"}},
		},
		pending: map[string][]usecase.ExternalTransaction{
			"428.l.1.t.1": {{
				Key: "428.l.1.pt.7", Type: "trade", Status: "proposed", Timestamp: time.Unix(200, 0),
				TraderTeamKey: "428.l.1.t.1", TradeeTeamKey: "428.l.1.t.2",
				Moves: []usecase.ExternalMove{{PlayerKey: "428.p.1", SourceTeamKey: "428.l.1.t.1", DestinationTeamKey: "428.l.1.t.2"}},
			}},
		},
	}
}

func newSyncEnv(t *testing.T, provider *fakeProvider) syncEnv {
	t.Helper()
	env := syncEnv{
		provider:      provider,
		tokens:        &staticTokens{token: "tok-0"},
		teams:         memory.NewTeamRepository(),
		players:       memory.NewPlayerRepository(),
		leagues:       memory.NewLeagueRepository(),
		txs:           memory.NewProviderTxRepository(),
		notifications: memory.NewNotificationRepository(),
	}
	env.roster = memory.NewRosterRepository(env.teams)
	logger := logging.NewNop()
	env.svc = usecase.NewYahooSyncService(usecase.YahooSyncDeps{
		Tokens:     env.tokens,
		Provider:   provider,
		Games:      memory.NewGameRepository(),
		Leagues:    env.leagues,
		Teams:      env.teams,
		Roster:     env.roster,
		Players:    env.players,
		Reconciler: usecase.NewTransactionReconciler(env.txs, env.roster, env.players, logger),
		Notifier:   usecase.NewNotificationService(env.notifications, idgen.NewUUIDGenerator(), logger),
	}, usecase.SyncConfig{LeagueWorkers: 2}, logger)
	return env
}

func TestYahooSync_MirrorsTopologyRostersAndTrades(t *testing.T) {
	t.Parallel()

	env := newSyncEnv(t, twoLeagueProvider())
	ctx := context.Background()

	res := env.svc.SyncUserLeagues(ctx, "u1")
	require.True(t, res.Success, res.Message)
	require.Equal(t, 1, res.Games)
	require.Equal(t, 2, res.Leagues)
	require.Equal(t, 3, res.Teams)
	require.Equal(t, 4, res.Players)
	require.Zero(t, res.SkippedUnits)
	require.False(t, res.FinishedAt.Before(res.StartedAt))

	mine, err := env.teams.ListByManager(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)

	theirs, _, _ := env.teams.GetByKey(ctx, "428.l.1.t.2")
	require.Empty(t, theirs.ManagerUserID)

	// The roster full replace runs after the log, so the added player is absent from the authoritative roster.
	members, err := env.roster.Members(ctx, "428.l.1.t.2")
	require.NoError(t, err)
	require.Equal(t, []string{"428.p.3"}, members)
	_, found, _ := env.txs.GetTransaction(ctx, "428.l.1.tr.1")
	require.True(t, found)

	alpha, found, _ := env.players.GetByKey(ctx, "428.p.1")
	require.True(t, found)
	require.Greater(t, alpha.MarketValue, int64(0))
	beta, _, _ := env.players.GetByKey(ctx, "428.p.2")
	require.Less(t, beta.MarketValue, alpha.MarketValue)

	pt, found, _ := env.txs.GetTrade(ctx, "428.l.1.pt.7")
	require.True(t, found)
	require.Equal(t, "proposed", pt.Status)

	lg, found, _ := env.leagues.GetByKey(ctx, "428.l.1")
	require.True(t, found)
	require.False(t, lg.LastSyncAt.IsZero())

	got, _ := env.notifications.ListByUser(ctx, "u1", 10)
	require.Len(t, got, 1)
	require.Equal(t, notification.TypeSyncComplete, got[0].Type)
}

func TestYahooSync_LeagueFailureIsSkipped(t *testing.T) {
	t.Parallel()

	provider := twoLeagueProvider()
	provider.teamsErr["428.l.2"] = fmt.Errorf("%w: status 500", usecase.ErrProvider)
	env := newSyncEnv(t, provider)

	res := env.svc.SyncUserLeagues(context.Background(), "u1")
	require.True(t, res.Success)
	require.Equal(t, 1, res.Leagues)
	require.Equal(t, 1, res.SkippedUnits)
}

func TestYahooSync_TopologyFailureFailsRun(t *testing.T) {
	t.Parallel()

	provider := twoLeagueProvider()
	provider.topologyErr = errors.New("boom")
	env := newSyncEnv(t, provider)

	res := env.svc.SyncUserLeagues(context.Background(), "u1")
	require.False(t, res.Success)
	require.Contains(t, res.Message, "boom")

	got, _ := env.notifications.ListByUser(context.Background(), "u1", 10)
	require.Empty(t, got)
}

func TestYahooSync_NotLinkedMessage(t *testing.T) {
	t.Parallel()

	env := newSyncEnv(t, twoLeagueProvider())
	env.tokens.err = usecase.ErrNotLinked

	res := env.svc.SyncUserLeagues(context.Background(), "u1")
	require.False(t, res.Success)
	require.Equal(t, "sync failed: yahoo account is not linked", res.Message)

	res = env.svc.SyncUserLeagues(context.Background(), " ")
	require.False(t, res.Success)
}

func TestYahooSync_RefreshesExpiredTokenMidRun(t *testing.T) {
	t.Parallel()

	provider := twoLeagueProvider()
	provider.staleToken = "tok-0"
	env := newSyncEnv(t, provider)

	res := env.svc.SyncUserLeagues(context.Background(), "u1")
	require.True(t, res.Success, res.Message)
	require.Equal(t, 2, res.Leagues)
	require.Equal(t, 1, env.tokens.refresh)
}

func TestYahooSync_SecondPassIsIdempotent(t *testing.T) {
	t.Parallel()

	env := newSyncEnv(t, twoLeagueProvider())
	ctx := context.Background()

	first := env.svc.SyncUserLeagues(ctx, "u1")
	require.True(t, first.Success)
	second := env.svc.SyncUserLeagues(ctx, "u1")
	require.True(t, second.Success)
	require.Equal(t, first.Players, second.Players)

	members, _ := env.roster.Members(ctx, "428.l.1.t.1")
	require.Equal(t, []string{"428.p.1", "428.p.2"}, members)
}

func credentialFor(userID string) credential.Credential {
	return credential.Credential{
		UserID:       userID,
		Provider:     credential.ProviderYahoo,
		AccessToken:  "a-" + userID,
		RefreshToken: "r-" + userID,
		ExpiresAt:    time.Now().Add(time.Hour),
	}
}

type countingSyncer struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool
}

func (c *countingSyncer) SyncUserLeagues(_ context.Context, userID string) usecase.SyncResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, userID)
	if c.fail[userID] {
		return usecase.SyncResult{Message: "sync failed: yahoo account is not linked"}
	}
	return usecase.SyncResult{Success: true, Message: "synced 1 leagues"}
}

func TestScheduledSync_FansOutOverLinkedUsers(t *testing.T) {
	t.Parallel()

	repo := memory.NewCredentialRepository()
	ctx := context.Background()
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, repo.Upsert(ctx, credentialFor(id)))
	}
	syncer := &countingSyncer{fail: map[string]bool{"b": true}}

	res, err := usecase.NewScheduledSyncService(repo, syncer, 2, logging.NewNop()).SyncAllLinkedUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, res.UserCount)
	require.Equal(t, 2, res.SuccessCount)
	require.Equal(t, 1, res.FailedCount)
	require.Equal(t, 2, res.WorkerCount)
	require.Len(t, res.Users, 3)
	require.Equal(t, "a", res.Users[0].UserID)
	require.False(t, res.Users[1].Success)
	require.ElementsMatch(t, []string{"a", "b", "c"}, syncer.calls)
}

func TestScheduledSync_NoUsers(t *testing.T) {
	t.Parallel()

	res, err := usecase.NewScheduledSyncService(memory.NewCredentialRepository(), &countingSyncer{}, 4, logging.NewNop()).
		SyncAllLinkedUsers(context.Background())
	require.NoError(t, err)
	require.Zero(t, res.UserCount)
	require.Empty(t, res.Users)
}

// flakyPlayers fails Upsert for the listed keys.
type flakyPlayers struct {
	*memory.PlayerRepository
	fail map[string]bool
}

func (p *flakyPlayers) Upsert(ctx context.Context, pl player.Player) error {
	if p.fail[pl.Key] {
		return errors.New("write timeout")
	}
	return p.PlayerRepository.Upsert(ctx, pl)
}

func TestYahooSync_RosterKeepsKnownPlayerWhenUpsertFails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := twoLeagueProvider()
	env := newSyncEnv(t, provider)
	players := &flakyPlayers{
		PlayerRepository: env.players,
		fail:             map[string]bool{"428.p.1": true, "428.p.2": true},
	}
	logger := logging.NewNop()
	svc := usecase.NewYahooSyncService(usecase.YahooSyncDeps{
		Tokens:     env.tokens,
		Provider:   provider,
		Games:      memory.NewGameRepository(),
		Leagues:    env.leagues,
		Teams:      env.teams,
		Roster:     env.roster,
		Players:    players,
		Reconciler: usecase.NewTransactionReconciler(env.txs, env.roster, players, logger),
		Notifier:   usecase.NewNotificationService(env.notifications, idgen.NewUUIDGenerator(), logger),
	}, usecase.SyncConfig{LeagueWorkers: 1}, logger)

	require.NoError(t, env.teams.Upsert(ctx, team.Team{Key: "428.l.1.t.1", LeagueKey: "428.l.1", ManagerUserID: "u1"}))
	require.NoError(t, env.players.Upsert(ctx, player.Player{Key: "428.p.1", FullName: "Alpha"}))
	require.NoError(t, env.roster.SetMembers(ctx, "428.l.1.t.1", []string{"428.p.1"}))

	n, err := svc.SyncRoster(ctx, "u1", "428.l.1.t.1")
	require.NoError(t, err)
	require.Equal(t, 1, n)

	members, err := env.roster.Members(ctx, "428.l.1.t.1")
	require.NoError(t, err)
	require.Equal(t, []string{"428.p.1"}, members, "known player stays, unknown player is skipped")
}
