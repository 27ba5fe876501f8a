package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/fantasy-trade-market/internal/domain/providertx"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/team"
	"github.com/riskibarqy/fantasy-trade-market/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-trade-market/internal/platform/logging"
	"github.com/riskibarqy/fantasy-trade-market/internal/usecase"
)

const (
	recLeague = "428.l.1"
	teamA     = "428.l.1.t.1"
	teamB     = "428.l.1.t.2"
)

type reconcilerEnv struct {
	rec     *usecase.TransactionReconciler
	txs     *memory.ProviderTxRepository
	roster  *memory.RosterRepository
	players *memory.PlayerRepository
}

func newReconcilerEnv(t *testing.T) reconcilerEnv {
	t.Helper()
	teams := memory.NewTeamRepository()
	for _, key := range []string{teamA, teamB} {
		require.NoError(t, teams.Upsert(context.Background(), team.Team{Key: key, LeagueKey: recLeague}))
	}
	env := reconcilerEnv{
		txs:     memory.NewProviderTxRepository(),
		roster:  memory.NewRosterRepository(teams),
		players: memory.NewPlayerRepository(),
	}
	env.rec = usecase.NewTransactionReconciler(env.txs, env.roster, env.players, logging.NewNop())
	return env
}

func (e reconcilerEnv) members(t *testing.T, teamKey string) []string {
	t.Helper()
	out, err := e.roster.Members(context.Background(), teamKey)
	require.NoError(t, err)
	return out
}

func tradeTx(key, status string, at time.Time) usecase.ExternalTransaction {
	return usecase.ExternalTransaction{
		Key:           key,
		Type:          "trade",
		Status:        status,
		Timestamp:     at,
		TraderTeamKey: teamA,
		TradeeTeamKey: teamB,
		Moves: []usecase.ExternalMove{
			{PlayerKey: "p1", PlayerName: "One", Type: "trade", SourceTeamKey: teamA, DestinationTeamKey: teamB},
			{PlayerKey: "p2", PlayerName: "Two", Type: "trade", SourceTeamKey: teamB, DestinationTeamKey: teamA},
		},
	}
}

func TestReconciler_AddDropAppliedOnce(t *testing.T) {
	t.Parallel()

	env := newReconcilerEnv(t)
	require.NoError(t, env.roster.Connect(context.Background(), teamA, "p9"))

	tx := usecase.ExternalTransaction{
		Key:       "428.l.1.tr.10",
		Type:      "add/drop",
		Status:    "successful",
		Timestamp: time.Unix(100, 0),
		Moves: []usecase.ExternalMove{
			{PlayerKey: "p1", PlayerName: "One", Type: "add", DestinationTeamKey: teamA},
			{PlayerKey: "p9", PlayerName: "Nine", Type: "drop", SourceTeamKey: teamA},
		},
	}

	summary := env.rec.ReconcileLeague(context.Background(), recLeague, []usecase.ExternalTransaction{tx})
	require.Equal(t, usecase.ReconcileSummary{Applied: 1}, summary)
	require.Equal(t, []string{"p1"}, env.members(t, teamA))

	// The drop is replayed after the player was re-added locally; the claimed key prevents the second drop.
	require.NoError(t, env.roster.Connect(context.Background(), teamA, "p9"))
	summary = env.rec.ReconcileLeague(context.Background(), recLeague, []usecase.ExternalTransaction{tx})
	require.Equal(t, usecase.ReconcileSummary{Skipped: 1}, summary)
	require.Equal(t, []string{"p1", "p9"}, env.members(t, teamA))

	_, ok, err := env.players.GetByKey(context.Background(), "p1")
	require.NoError(t, err)
	require.True(t, ok, "moved players get a stub record")
}

func TestReconciler_MoveTypeFallsBackToTransactionType(t *testing.T) {
	t.Parallel()

	env := newReconcilerEnv(t)
	tx := usecase.ExternalTransaction{
		Key:       "428.l.1.tr.11",
		Type:      "add",
		Timestamp: time.Unix(100, 0),
		Moves:     []usecase.ExternalMove{{PlayerKey: "p3", DestinationTeamKey: teamB}},
	}

	summary := env.rec.ReconcileLeague(context.Background(), recLeague, []usecase.ExternalTransaction{tx})
	require.Equal(t, 1, summary.Applied)
	require.Equal(t, []string{"p3"}, env.members(t, teamB))
}

func TestReconciler_ProcessesInTimestampOrder(t *testing.T) {
	t.Parallel()

	env := newReconcilerEnv(t)
	drop := usecase.ExternalTransaction{
		Key: "tx-drop", Type: "drop", Timestamp: time.Unix(200, 0),
		Moves: []usecase.ExternalMove{{PlayerKey: "p1", SourceTeamKey: teamA}},
	}
	add := usecase.ExternalTransaction{
		Key: "tx-add", Type: "add", Timestamp: time.Unix(100, 0),
		Moves: []usecase.ExternalMove{{PlayerKey: "p1", DestinationTeamKey: teamA}},
	}

	// Newest first, as the provider returns it.
	summary := env.rec.ReconcileLeague(context.Background(), recLeague, []usecase.ExternalTransaction{drop, add})
	require.Equal(t, 2, summary.Applied)
	require.Empty(t, env.members(t, teamA))
}

func TestReconciler_TradeMovesOnlyOnSuccessTransition(t *testing.T) {
	t.Parallel()

	env := newReconcilerEnv(t)
	ctx := context.Background()
	require.NoError(t, env.roster.SetMembers(ctx, teamA, []string{"p1"}))
	require.NoError(t, env.roster.SetMembers(ctx, teamB, []string{"p2"}))

	at := time.Unix(100, 0)
	summary := env.rec.ReconcileLeague(ctx, recLeague, []usecase.ExternalTransaction{tradeTx("tr-1", "proposed", at)})
	require.Equal(t, usecase.ReconcileSummary{Skipped: 1}, summary)
	require.Equal(t, []string{"p1"}, env.members(t, teamA))

	items, err := env.txs.ListTradeItems(ctx, "tr-1")
	require.NoError(t, err)
	require.Len(t, items, 2)

	summary = env.rec.ReconcileLeague(ctx, recLeague, []usecase.ExternalTransaction{tradeTx("tr-1", "Successful", at)})
	require.Equal(t, usecase.ReconcileSummary{Applied: 1, TradesMoved: 1}, summary)
	require.Equal(t, []string{"p2"}, env.members(t, teamA))
	require.Equal(t, []string{"p1"}, env.members(t, teamB))

	stored, found, err := env.txs.GetTrade(ctx, "tr-1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, providertx.TradeStatusSuccessful, stored.Status)

	// Seeing the same successful trade again must not swap the players back.
	summary = env.rec.ReconcileLeague(ctx, recLeague, []usecase.ExternalTransaction{tradeTx("tr-1", "successful", at)})
	require.Equal(t, usecase.ReconcileSummary{Skipped: 1}, summary)
	require.Equal(t, []string{"p2"}, env.members(t, teamA))
}

func TestReconciler_FailingTransactionDoesNotStopLog(t *testing.T) {
	t.Parallel()

	env := newReconcilerEnv(t)
	bad := usecase.ExternalTransaction{
		Key: "tx-bad", Type: "add", Timestamp: time.Unix(100, 0),
		Moves: []usecase.ExternalMove{{PlayerKey: "p1", DestinationTeamKey: "428.l.1.t.99"}},
	}
	good := usecase.ExternalTransaction{
		Key: "tx-good", Type: "add", Timestamp: time.Unix(200, 0),
		Moves: []usecase.ExternalMove{{PlayerKey: "p2", DestinationTeamKey: teamA}},
	}
	unkeyed := usecase.ExternalTransaction{Type: "add", Timestamp: time.Unix(300, 0)}

	summary := env.rec.ReconcileLeague(context.Background(), recLeague, []usecase.ExternalTransaction{bad, good, unkeyed})
	require.Equal(t, 2, summary.Failed)
	require.Equal(t, 1, summary.Applied)
	require.Equal(t, []string{"p2"}, env.members(t, teamA))
}

func TestReconciler_MirrorPendingTradesSkipsSuccessful(t *testing.T) {
	t.Parallel()

	env := newReconcilerEnv(t)
	ctx := context.Background()
	at := time.Unix(100, 0)

	mirrored, err := env.rec.MirrorPendingTrades(ctx, recLeague, []usecase.ExternalTransaction{
		tradeTx("tr-p", "proposed", at),
		tradeTx("tr-s", "successful", at),
		{Type: "trade"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, mirrored)

	trades, err := env.txs.ListTradesByLeague(ctx, recLeague)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	require.Equal(t, "tr-p", trades[0].Key)
	require.Equal(t, providertx.TradeStatusProposed, trades[0].Status)

	require.Empty(t, env.members(t, teamA), "pending trades never move players")
}

func TestReconciler_MirrorDoesNotDowngradeSuccessfulTrade(t *testing.T) {
	t.Parallel()

	env := newReconcilerEnv(t)
	ctx := context.Background()
	require.NoError(t, env.txs.UpsertTrade(ctx, providertx.Trade{Key: "tr-1", LeagueKey: recLeague, Status: providertx.TradeStatusSuccessful}))

	mirrored, err := env.rec.MirrorPendingTrades(ctx, recLeague, []usecase.ExternalTransaction{tradeTx("tr-1", "accepted", time.Unix(1, 0))})
	require.NoError(t, err)
	require.Zero(t, mirrored)

	stored, _, _ := env.txs.GetTrade(ctx, "tr-1")
	require.Equal(t, providertx.TradeStatusSuccessful, stored.Status)
}
