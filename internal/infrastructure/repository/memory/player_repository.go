package memory

import (
	"context"
	"maps"
	"sort"
	"sync"

	"github.com/riskibarqy/fantasy-trade-market/internal/domain/player"
)

type PlayerRepository struct {
	mu    sync.RWMutex
	items map[string]player.Player
}

func NewPlayerRepository() *PlayerRepository {
	return &PlayerRepository{items: make(map[string]player.Player)}
}

func (r *PlayerRepository) Upsert(_ context.Context, p player.Player) error {
	if err := p.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[p.Key] = clonePlayer(p)
	return nil
}

func (r *PlayerRepository) EnsureExists(_ context.Context, key, fullName string) error {
	if key == "" {
		return player.Player{}.Validate()
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[key]; !ok {
		r.items[key] = player.Player{Key: key, FullName: fullName}
	}
	return nil
}

func (r *PlayerRepository) GetByKey(_ context.Context, key string) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[key]
	if !ok {
		return player.Player{}, false, nil
	}
	return clonePlayer(p), true, nil
}

func (r *PlayerRepository) List(_ context.Context) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Player, 0, len(r.items))
	for _, p := range r.items {
		out = append(out, clonePlayer(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func clonePlayer(p player.Player) player.Player {
	copied := p
	if p.Stats != nil {
		copied.Stats = maps.Clone(p.Stats)
	}
	return copied
}
