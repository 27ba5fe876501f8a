package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/samber/lo"
	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/fantasy-trade-market/internal/domain/game"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/league"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/notification"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/player"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/team"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/valuation"
	"github.com/riskibarqy/fantasy-trade-market/internal/platform/logging"
)

// CacheInvalidator drops cached read models after a write pass.
type CacheInvalidator interface {
	DeletePrefix(ctx context.Context, prefix string) int
}

type SyncConfig struct {
	// LeagueWorkers bounds how many leagues sync at once. Order inside a league is always sequential.
	LeagueWorkers int
}

type SyncResult struct {
	Success      bool      `json:"success"`
	Message      string    `json:"message,omitempty"`
	Games        int       `json:"games"`
	Leagues      int       `json:"leagues"`
	Teams        int       `json:"teams"`
	Players      int       `json:"players"`
	Transactions int       `json:"transactions"`
	SkippedUnits int       `json:"skipped_units"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
}

// YahooSyncService mirrors a user's provider leagues into local storage.
type YahooSyncService struct {
	tokens     TokenSource
	provider   YahooProvider
	games      game.Repository
	leagues    league.Repository
	teams      team.Repository
	roster     team.RosterRepository
	players    player.Repository
	reconciler *TransactionReconciler
	notifier   *NotificationService
	news       *NewsSyncService
	cache      CacheInvalidator
	cfg        SyncConfig
	now        func() time.Time
	logger     *logging.Logger
}

type YahooSyncDeps struct {
	Tokens     TokenSource
	Provider   YahooProvider
	Games      game.Repository
	Leagues    league.Repository
	Teams      team.Repository
	Roster     team.RosterRepository
	Players    player.Repository
	Reconciler *TransactionReconciler
	Notifier   *NotificationService
	News       *NewsSyncService
	Cache      CacheInvalidator
}

func NewYahooSyncService(deps YahooSyncDeps, cfg SyncConfig, logger *logging.Logger) *YahooSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.LeagueWorkers < 1 {
		cfg.LeagueWorkers = 1
	}
	return &YahooSyncService{
		tokens:     deps.Tokens,
		provider:   deps.Provider,
		games:      deps.Games,
		leagues:    deps.Leagues,
		teams:      deps.Teams,
		roster:     deps.Roster,
		players:    deps.Players,
		reconciler: deps.Reconciler,
		notifier:   deps.Notifier,
		news:       deps.News,
		cache:      deps.Cache,
		cfg:        cfg,
		now:        time.Now,
		logger:     logger,
	}
}

type syncCounters struct {
	leagues      atomic.Int32
	teams        atomic.Int32
	players      atomic.Int32
	transactions atomic.Int32
	skipped      atomic.Int32
}

// SyncUserLeagues runs one full pass for userID. Only a topology failure
// fails the run; any narrower failure is logged and skipped. It never returns
// an error: the outcome is always a SyncResult.
func (s *YahooSyncService) SyncUserLeagues(ctx context.Context, userID string) SyncResult {
	ctx, span := startUsecaseSpan(ctx, "usecase.YahooSyncService.SyncUserLeagues")
	defer span.End()

	result := SyncResult{StartedAt: s.now().UTC()}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return s.failed(result, "sync failed: user id is required")
	}

	topology, err := WithTokenRefresh(ctx, s.tokens, userID, s.provider.FetchTopology)
	if err != nil {
		s.logger.ErrorContext(ctx, "fetch provider topology failed", "user_id", userID, "error", err)
		return s.failed(result, "sync failed: "+syncFailureMessage(err))
	}

	var counters syncCounters
	leaguePool := pool.New().WithMaxGoroutines(s.cfg.LeagueWorkers)
	for _, g := range topology {
		if err := s.games.Upsert(ctx, game.Game{Key: g.Key, Code: g.Code, Name: g.Name, Season: g.Season}); err != nil {
			counters.skipped.Add(1)
			s.logger.WarnContext(ctx, "skip game", "user_id", userID, "game_key", g.Key, "error", err)
			continue
		}
		result.Games++
		for _, lg := range g.Leagues {
			gameKey, lg := g.Key, lg
			leaguePool.Go(func() {
				s.syncLeague(ctx, userID, gameKey, lg, &counters)
			})
		}
	}
	leaguePool.Wait()

	result.Leagues = int(counters.leagues.Load())
	result.Teams = int(counters.teams.Load())
	result.Players = int(counters.players.Load())
	result.Transactions = int(counters.transactions.Load())
	result.SkippedUnits = int(counters.skipped.Load())

	s.notifier.Notify(ctx, userID, notification.TypeSyncComplete,
		"Yahoo sync complete",
		fmt.Sprintf("Synced %d leagues and %d teams.", result.Leagues, result.Teams),
		"/leagues",
	)

	if s.news != nil {
		codes := lo.Map(topology, func(g ExternalGame, _ int) string { return g.Code })
		if _, err := s.news.SyncGames(ctx, codes); err != nil {
			s.logger.WarnContext(ctx, "news feed sync failed", "user_id", userID, "error", err)
		}
	}

	s.invalidate(ctx, userID, topology)

	result.Success = true
	result.Message = fmt.Sprintf("synced %d leagues", result.Leagues)
	result.FinishedAt = s.now().UTC()
	s.logger.InfoContext(ctx, "yahoo sync finished",
		"user_id", userID,
		"games", result.Games,
		"leagues", result.Leagues,
		"teams", result.Teams,
		"players", result.Players,
		"skipped_units", result.SkippedUnits,
	)
	return result
}

// syncLeague keeps the league order fixed: league row, team rows, the
// transaction log, then each team's roster full replace as the final write.
func (s *YahooSyncService) syncLeague(ctx context.Context, userID, gameKey string, lg ExternalLeague, c *syncCounters) {
	ctx, span := startUsecaseSpan(ctx, "usecase.YahooSyncService.syncLeague")
	defer span.End()

	err := s.leagues.Upsert(ctx, league.League{
		Key:         lg.Key,
		GameKey:     gameKey,
		Name:        lg.Name,
		URL:         lg.URL,
		NumTeams:    lg.NumTeams,
		ScoringType: lg.ScoringType,
		CurrentWeek: lg.CurrentWeek,
		LastSyncAt:  s.now().UTC(),
	})
	if err != nil {
		c.skipped.Add(1)
		s.logger.WarnContext(ctx, "skip league", "league_key", lg.Key, "error", err)
		return
	}

	teams, err := WithTokenRefresh(ctx, s.tokens, userID, func(ctx context.Context, token string) ([]ExternalTeam, error) {
		return s.provider.FetchLeagueTeams(ctx, token, lg.Key)
	})
	if err != nil {
		c.skipped.Add(1)
		s.logger.WarnContext(ctx, "skip league teams", "league_key", lg.Key, "error", err)
		return
	}
	c.leagues.Add(1)

	synced := make([]ExternalTeam, 0, len(teams))
	for _, t := range teams {
		if err := s.upsertTeam(ctx, userID, lg.Key, t); err != nil {
			c.skipped.Add(1)
			s.logger.WarnContext(ctx, "skip team", "league_key", lg.Key, "team_key", t.Key, "error", err)
			continue
		}
		synced = append(synced, t)
	}

	if err := s.SyncLeagueTransactions(ctx, userID, lg.Key); err != nil {
		c.skipped.Add(1)
		s.logger.WarnContext(ctx, "skip league transactions", "league_key", lg.Key, "error", err)
	} else {
		c.transactions.Add(1)
	}

	for _, t := range synced {
		n, err := s.SyncRoster(ctx, userID, t.Key)
		if err != nil {
			c.skipped.Add(1)
			s.logger.WarnContext(ctx, "skip team roster", "team_key", t.Key, "error", err)
		} else {
			c.teams.Add(1)
			c.players.Add(int32(n))
		}
		if err := s.SyncPendingTrades(ctx, userID, lg.Key, t.Key); err != nil {
			c.skipped.Add(1)
			s.logger.WarnContext(ctx, "skip pending trades", "team_key", t.Key, "error", err)
		}
	}
}

func (s *YahooSyncService) upsertTeam(ctx context.Context, userID, leagueKey string, t ExternalTeam) error {
	manager := ""
	if t.ManagedByCurrentUser {
		manager = userID
	}
	return s.teams.Upsert(ctx, team.Team{
		Key:           t.Key,
		LeagueKey:     leagueKey,
		ManagerUserID: manager,
		Name:          t.Name,
		LogoURL:       t.LogoURL,
		Wins:          t.Wins,
		Losses:        t.Losses,
		Ties:          t.Ties,
		Rank:          t.Rank,
	})
}

// SyncLeagueTransactions reconciles the league's transaction log against rosters.
func (s *YahooSyncService) SyncLeagueTransactions(ctx context.Context, userID, leagueKey string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.YahooSyncService.SyncLeagueTransactions")
	defer span.End()

	items, err := WithTokenRefresh(ctx, s.tokens, userID, func(ctx context.Context, token string) ([]ExternalTransaction, error) {
		return s.provider.FetchLeagueTransactions(ctx, token, leagueKey)
	})
	if err != nil {
		return fmt.Errorf("fetch transactions league=%s: %w", leagueKey, err)
	}
	summary := s.reconciler.ReconcileLeague(ctx, leagueKey, items)
	s.logger.DebugContext(ctx, "league transactions reconciled",
		"league_key", leagueKey,
		"applied", summary.Applied,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"trades_moved", summary.TradesMoved,
	)
	return nil
}

// SyncRoster upserts every rostered player with its valuation and replaces
// the team's member set with exactly the fetched list.
func (s *YahooSyncService) SyncRoster(ctx context.Context, userID, teamKey string) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.YahooSyncService.SyncRoster")
	defer span.End()

	items, err := WithTokenRefresh(ctx, s.tokens, userID, func(ctx context.Context, token string) ([]ExternalPlayer, error) {
		return s.provider.FetchRoster(ctx, token, teamKey)
	})
	if err != nil {
		return 0, fmt.Errorf("fetch roster team=%s: %w", teamKey, err)
	}

	keys := make([]string, 0, len(items))
	for _, item := range items {
		if item.Key == "" {
			s.logger.WarnContext(ctx, "skip roster entry without player key", "team_key", teamKey)
			continue
		}
		if err := s.players.Upsert(ctx, playerFromExternal(item)); err != nil {
			// A stale row still keeps the player on the roster.
			if _, found, getErr := s.players.GetByKey(ctx, item.Key); getErr != nil || !found {
				s.logger.WarnContext(ctx, "skip roster player", "team_key", teamKey, "player_key", item.Key, "error", err)
				continue
			}
			s.logger.WarnContext(ctx, "roster player kept with stale data", "team_key", teamKey, "player_key", item.Key, "error", err)
		}
		keys = append(keys, item.Key)
	}
	keys = lo.Uniq(keys)

	if err := s.roster.SetMembers(ctx, teamKey, keys); err != nil {
		return 0, fmt.Errorf("replace roster team=%s: %w", teamKey, err)
	}
	return len(keys), nil
}

func (s *YahooSyncService) SyncPendingTrades(ctx context.Context, userID, leagueKey, teamKey string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.YahooSyncService.SyncPendingTrades")
	defer span.End()

	trades, err := WithTokenRefresh(ctx, s.tokens, userID, func(ctx context.Context, token string) ([]ExternalTransaction, error) {
		return s.provider.FetchPendingTrades(ctx, token, teamKey)
	})
	if err != nil {
		return fmt.Errorf("fetch pending trades team=%s: %w", teamKey, err)
	}
	if _, err := s.reconciler.MirrorPendingTrades(ctx, leagueKey, trades); err != nil {
		return fmt.Errorf("mirror pending trades team=%s: %w", teamKey, err)
	}
	return nil
}

func (s *YahooSyncService) invalidate(ctx context.Context, userID string, topology []ExternalGame) {
	if s.cache == nil {
		return
	}
	s.cache.DeletePrefix(ctx, "user:"+userID+":")
	s.cache.DeletePrefix(ctx, marketCachePrefix)
	for _, g := range topology {
		for _, lg := range g.Leagues {
			s.cache.DeletePrefix(ctx, "league:"+lg.Key+":")
		}
	}
}

func (s *YahooSyncService) failed(result SyncResult, message string) SyncResult {
	result.Success = false
	result.Message = message
	result.FinishedAt = s.now().UTC()
	return result
}

func playerFromExternal(item ExternalPlayer) player.Player {
	in := item.Valuation
	in.Status = item.Status
	v := valuation.Evaluate(in)
	return player.Player{
		Key:             item.Key,
		FullName:        item.FullName,
		TeamAbbr:        item.TeamAbbr,
		PhotoURL:        item.PhotoURL,
		Position:        item.Position,
		Status:          item.Status,
		FantasyPoints:   v.FantasyPoints,
		ProjectedPoints: v.ProjectedPoints,
		PercentOwned:    item.PercentOwned,
		PercentStarted:  item.PercentStarted,
		MarketValue:     v.MarketValue,
		Stats:           item.Stats,
	}
}

func syncFailureMessage(err error) string {
	switch {
	case errors.Is(err, ErrNotLinked):
		return "yahoo account is not linked"
	case errors.Is(err, ErrRefreshFailed):
		return "yahoo authorization expired, please relink your account"
	default:
		return err.Error()
	}
}
