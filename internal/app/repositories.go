package app

import (
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fantasy-trade-market/internal/domain/credential"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/game"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/league"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/market"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/news"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/notification"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/player"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/providertx"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/team"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/user"
	cacherepo "github.com/riskibarqy/fantasy-trade-market/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/fantasy-trade-market/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-trade-market/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/fantasy-trade-market/internal/platform/cache"
)

type repositories struct {
	backend       string
	credentials   credential.Repository
	games         game.Repository
	leagues       league.Repository
	teams         team.Repository
	roster        team.RosterRepository
	players       player.Repository
	transactions  providertx.Repository
	market        market.Repository
	notifications notification.Repository
	news          news.Repository
	directory     user.Directory
}

// buildRepositories picks postgres when db is set and memory otherwise.
// Catalog reads go through the cache when store is set.
func buildRepositories(db *sqlx.DB, store *cache.Store) repositories {
	var r repositories
	if db != nil {
		r = repositories{
			backend:       "postgres",
			credentials:   postgres.NewCredentialRepository(db),
			games:         postgres.NewGameRepository(db),
			leagues:       postgres.NewLeagueRepository(db),
			teams:         postgres.NewTeamRepository(db),
			roster:        postgres.NewRosterRepository(db),
			players:       postgres.NewPlayerRepository(db),
			transactions:  postgres.NewProviderTxRepository(db),
			market:        postgres.NewMarketRepository(db),
			notifications: postgres.NewNotificationRepository(db),
			news:          postgres.NewNewsRepository(db),
			directory:     postgres.NewUserDirectory(db),
		}
	} else {
		teams := memory.NewTeamRepository()
		r = repositories{
			backend:       "memory",
			credentials:   memory.NewCredentialRepository(),
			games:         memory.NewGameRepository(),
			leagues:       memory.NewLeagueRepository(),
			teams:         teams,
			roster:        memory.NewRosterRepository(teams),
			players:       memory.NewPlayerRepository(),
			transactions:  memory.NewProviderTxRepository(),
			market:        memory.NewMarketRepository(),
			notifications: memory.NewNotificationRepository(),
			news:          memory.NewNewsRepository(),
			directory:     memory.NewUserDirectory(),
		}
	}

	if store != nil {
		r.games = cacherepo.NewGameRepository(r.games, store)
		r.leagues = cacherepo.NewLeagueRepository(r.leagues, store)
		r.teams = cacherepo.NewTeamRepository(r.teams, store)
	}
	return r
}
