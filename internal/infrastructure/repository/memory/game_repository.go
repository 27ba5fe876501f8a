package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/fantasy-trade-market/internal/domain/game"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/league"
)

type GameRepository struct {
	mu    sync.RWMutex
	items map[string]game.Game
}

func NewGameRepository() *GameRepository {
	return &GameRepository{items: make(map[string]game.Game)}
}

func (r *GameRepository) Upsert(_ context.Context, g game.Game) error {
	if err := g.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[g.Key] = g
	return nil
}

func (r *GameRepository) GetByKey(_ context.Context, key string) (game.Game, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.items[key]
	return g, ok, nil
}

type LeagueRepository struct {
	mu    sync.RWMutex
	items map[string]league.League
}

func NewLeagueRepository() *LeagueRepository {
	return &LeagueRepository{items: make(map[string]league.League)}
}

func (r *LeagueRepository) Upsert(_ context.Context, l league.League) error {
	if err := l.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[l.Key] = l
	return nil
}

func (r *LeagueRepository) GetByKey(_ context.Context, key string) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.items[key]
	return l, ok, nil
}
