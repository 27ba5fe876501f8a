package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/robfig/cron/v3"

	"github.com/riskibarqy/fantasy-trade-market/external/newsfeed"
	"github.com/riskibarqy/fantasy-trade-market/external/yahoo"
	"github.com/riskibarqy/fantasy-trade-market/internal/config"
	"github.com/riskibarqy/fantasy-trade-market/internal/infrastructure/account/anubis"
	"github.com/riskibarqy/fantasy-trade-market/internal/infrastructure/mailer"
	"github.com/riskibarqy/fantasy-trade-market/internal/interfaces/httpapi"
	"github.com/riskibarqy/fantasy-trade-market/internal/platform/cache"
	idgen "github.com/riskibarqy/fantasy-trade-market/internal/platform/id"
	"github.com/riskibarqy/fantasy-trade-market/internal/platform/logging"
	"github.com/riskibarqy/fantasy-trade-market/internal/usecase"
)

const (
	oauthStateCapacity = 1024
	oauthStateTTL      = 10 * time.Minute
	scheduledSyncLimit = 30 * time.Minute
)

// App owns the HTTP server and every background resource behind it.
type App struct {
	Server *http.Server

	db        *sqlx.DB
	scheduler *cron.Cron
	mailer    closer
	logger    *logging.Logger
}

type closer interface {
	Close()
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	var store *cache.Store
	if cfg.CacheEnabled {
		store = cache.NewStore(cfg.CacheSize, cfg.CacheTTL)
	}

	var db *sqlx.DB
	if cfg.DBURL != "" {
		var err error
		db, err = openDB(cfg)
		if err != nil {
			return nil, err
		}
	}
	repos := buildRepositories(db, store)
	logger.Info("repositories ready", "backend", repos.backend, "cache_enabled", store != nil)

	ids := idgen.NewUUIDGenerator()
	var invalidator usecase.Cache
	if store != nil {
		invalidator = store
	}

	oauth := yahoo.NewOAuth(yahoo.OAuthConfig{
		ClientID:     cfg.YahooClientID,
		ClientSecret: cfg.YahooClientSecret,
		RedirectURL:  cfg.YahooRedirectURL,
		AuthURL:      cfg.YahooAuthURL,
		TokenURL:     cfg.YahooTokenURL,
		HTTPClient:   &http.Client{Timeout: cfg.YahooTimeout},
	})
	provider := yahoo.NewClient(yahoo.ClientConfig{
		BaseURL:        cfg.YahooAPIBaseURL,
		GameCodes:      cfg.YahooGameCodes,
		Timeout:        cfg.YahooTimeout,
		MaxRetries:     cfg.YahooMaxRetries,
		Logger:         logger.Named("yahoo"),
		CircuitBreaker: cfg.YahooCircuit,
	})

	tokens := usecase.NewTokenService(repos.credentials, oauth, cfg.YahooTokenExpirySkew, logger)
	notifier := usecase.NewNotificationService(repos.notifications, ids, logger)
	reconciler := usecase.NewTransactionReconciler(repos.transactions, repos.roster, repos.players, logger)

	var newsSync *usecase.NewsSyncService
	if cfg.NewsEnabled {
		feed := newsfeed.NewClient(newsfeed.ClientConfig{
			BaseURL: cfg.NewsBaseURL,
			Timeout: cfg.NewsTimeout,
			Logger:  logger.Named("newsfeed"),
		})
		newsSync = usecase.NewNewsSyncService(feed, repos.news, cfg.NewsLimit, logger)
	}

	syncSvc := usecase.NewYahooSyncService(usecase.YahooSyncDeps{
		Tokens:     tokens,
		Provider:   provider,
		Games:      repos.games,
		Leagues:    repos.leagues,
		Teams:      repos.teams,
		Roster:     repos.roster,
		Players:    repos.players,
		Reconciler: reconciler,
		Notifier:   notifier,
		News:       newsSync,
		Cache:      invalidator,
	}, usecase.SyncConfig{LeagueWorkers: cfg.SyncLeagueWorkers}, logger)
	scheduled := usecase.NewScheduledSyncService(repos.credentials, syncSvc, cfg.SyncUserWorkers, logger)

	smtpCfg := mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}
	var mail usecase.Mailer = mailer.NewLogMailer(logger)
	var mailCloser closer
	if smtpCfg.Enabled() {
		smtpMailer := mailer.NewSMTPMailer(smtpCfg, logger)
		mail, mailCloser = smtpMailer, smtpMailer
	}

	marketSvc := usecase.NewMarketService(usecase.MarketDeps{
		Market:    repos.market,
		Teams:     repos.teams,
		Roster:    repos.roster,
		Leagues:   repos.leagues,
		Games:     repos.games,
		Players:   repos.players,
		Directory: repos.directory,
		IDs:       ids,
		Notifier:  notifier,
		Mailer:    mail,
		Links:     yahoo.NewTradeLinks(),
		Cache:     invalidator,
		PublicURL: cfg.PublicURL,
	}, logger)

	links := usecase.NewAccountLinkService(
		oauth,
		repos.credentials,
		cache.NewStore(oauthStateCapacity, oauthStateTTL),
		ids,
		logger,
	)

	verifier := anubis.NewClient(anubis.ClientConfig{
		BaseURL:        cfg.AnubisBaseURL,
		IntrospectPath: cfg.AnubisIntrospectPath,
		AdminKey:       cfg.AnubisAdminKey,
		Timeout:        cfg.AnubisTimeout,
		CacheTTL:       cfg.AnubisCacheTTL,
		CacheSize:      cfg.CacheSize,
		CircuitBreaker: cfg.AnubisCircuit,
		Logger:         logger.Named("anubis"),
	})

	deps := httpapi.HandlerDeps{
		Sync:          syncSvc,
		BatchSync:     scheduled,
		Links:         links,
		Market:        marketSvc,
		Players:       usecase.NewPlayerSearchService(repos.players, invalidator),
		Notifications: notifier,
		PublicURL:     cfg.PublicURL,
	}
	if newsSync != nil {
		deps.News = newsSync
	}
	handler := httpapi.NewHandler(deps, logger)
	router := httpapi.NewRouter(handler, verifier, repos.directory, logger, httpapi.RouterConfig{
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
	})

	scheduler, err := newScheduler(cfg.SyncCron, scheduled, logger)
	if err != nil {
		return nil, err
	}

	return &App{
		Server: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		db:        db,
		scheduler: scheduler,
		mailer:    mailCloser,
		logger:    logger,
	}, nil
}

// Start launches background jobs. The caller runs Server itself.
func (a *App) Start() {
	if a.scheduler != nil {
		a.scheduler.Start()
	}
}

// Shutdown stops the HTTP server, waits for a running scheduled sync and
// in-flight mail, then closes the database.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Server.Shutdown(ctx)
	if a.scheduler != nil {
		select {
		case <-a.scheduler.Stop().Done():
		case <-ctx.Done():
			a.logger.Warn("scheduled sync still running at shutdown")
		}
	}
	if a.mailer != nil {
		a.mailer.Close()
	}
	if a.db != nil {
		if cerr := a.db.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close db: %w", cerr)
		}
	}
	return err
}
