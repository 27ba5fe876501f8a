package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/fantasy-trade-market/internal/domain/news"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/notification"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/player"
	"github.com/riskibarqy/fantasy-trade-market/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-trade-market/internal/platform/cache"
	idgen "github.com/riskibarqy/fantasy-trade-market/internal/platform/id"
	"github.com/riskibarqy/fantasy-trade-market/internal/platform/logging"
	"github.com/riskibarqy/fantasy-trade-market/internal/usecase"
)

func TestPlayerSearch_RanksByName(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := memory.NewPlayerRepository()
	for _, p := range []player.Player{
		{Key: "428.p.1", FullName: "LeBron James"},
		{Key: "428.p.2", FullName: "James Harden"},
		{Key: "428.p.3", FullName: "Stephen Curry"},
	} {
		require.NoError(t, repo.Upsert(ctx, p))
	}
	svc := usecase.NewPlayerSearchService(repo, nil)

	got, err := svc.Search(ctx, "james", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, p := range got {
		require.Contains(t, p.FullName, "James")
	}

	got, err = svc.Search(ctx, "curry", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "428.p.3", got[0].Key)

	_, err = svc.Search(ctx, "j", 10)
	require.ErrorIs(t, err, usecase.ErrInvalidInput)
}

func TestPlayerSearch_HonoursLimitAndCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := memory.NewPlayerRepository()
	require.NoError(t, repo.Upsert(ctx, player.Player{Key: "428.p.1", FullName: "Anthony Davis"}))
	require.NoError(t, repo.Upsert(ctx, player.Player{Key: "428.p.2", FullName: "Anthony Edwards"}))
	store := cache.NewStore(8, time.Minute)
	svc := usecase.NewPlayerSearchService(repo, store)

	got, err := svc.Search(ctx, "anthony", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)

	// Served from the cached pool until the market prefix is dropped.
	require.NoError(t, repo.Upsert(ctx, player.Player{Key: "428.p.3", FullName: "Anthony Black"}))
	got, err = svc.Search(ctx, "anthony", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	store.DeletePrefix(ctx, "market:")
	got, err = svc.Search(ctx, "anthony", 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
}

func TestNotificationService_ListNewestFirst(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := usecase.NewNotificationService(memory.NewNotificationRepository(), idgen.NewUUIDGenerator(), logging.NewNop())

	svc.Notify(ctx, "u1", notification.TypeOfferReceived, "first", "", "")
	svc.Notify(ctx, "u1", notification.TypeOfferAccepted, "second", "", "")
	svc.Notify(ctx, "", notification.TypeOfferAccepted, "dropped", "", "")
	svc.Notify(ctx, "u2", notification.TypeSyncComplete, "other", "", "")

	got, err := svc.List(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "second", got[0].Title)

	got, err = svc.List(ctx, "u1", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)

	_, err = svc.List(ctx, "", 10)
	require.ErrorIs(t, err, usecase.ErrInvalidInput)
}

func TestNotificationService_NilIsNoop(t *testing.T) {
	t.Parallel()

	var svc *usecase.NotificationService
	require.NotPanics(t, func() {
		svc.Notify(context.Background(), "u1", notification.TypeSyncComplete, "t", "m", "/")
	})
}

type headlineFeed struct {
	items map[string][]news.Item
	fail  map[string]bool
	calls []string
}

func (f *headlineFeed) FetchHeadlines(_ context.Context, code string, _ int) ([]news.Item, error) {
	f.calls = append(f.calls, code)
	if f.fail[code] {
		return nil, errors.New("feed down")
	}
	return f.items[code], nil
}

func TestNewsSync_StoresPerGameAndContinuesPastFailures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Now()
	feed := &headlineFeed{
		items: map[string][]news.Item{
			"nba": {
				{Link: "https://n/1", GameCode: "nba", Headline: "old", PublishedAt: now.Add(-time.Hour)},
				{Link: "https://n/2", GameCode: "nba", Headline: "new", PublishedAt: now},
				{Link: "", GameCode: "nba", Headline: "no link"},
			},
		},
		fail: map[string]bool{"nfl": true},
	}
	repo := memory.NewNewsRepository()
	svc := usecase.NewNewsSyncService(feed, repo, 10, logging.NewNop())

	stored, err := svc.SyncGames(ctx, []string{"nfl", "nba", "nba", ""})
	require.Error(t, err)
	require.Equal(t, 2, stored)
	require.Equal(t, []string{"nfl", "nba"}, feed.calls)

	latest, err := svc.Latest(ctx, "nba", 0)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	require.Equal(t, "new", latest[0].Headline)
}

func TestNewsSync_NilServiceIsNoop(t *testing.T) {
	t.Parallel()

	var svc *usecase.NewsSyncService
	n, err := svc.SyncGames(context.Background(), []string{"nba"})
	require.NoError(t, err)
	require.Zero(t, n)
}
