package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/riskibarqy/fantasy-trade-market/internal/domain/player"
)

type PlayerSearchService struct {
	players player.Repository
	cache   Cache
}

func NewPlayerSearchService(players player.Repository, cache Cache) *PlayerSearchService {
	return &PlayerSearchService{players: players, cache: cache}
}

// playerNames adapts a player slice to fuzzy.Source.
type playerNames []player.Player

func (p playerNames) String(i int) string { return p[i].FullName }
func (p playerNames) Len() int            { return len(p) }

// Search ranks players by fuzzy match on full name, best first.
func (s *PlayerSearchService) Search(ctx context.Context, query string, limit int) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerSearchService.Search")
	defer span.End()

	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return nil, fmt.Errorf("%w: query must be at least 2 characters", ErrInvalidInput)
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	all, err := s.pool(ctx)
	if err != nil {
		return nil, err
	}
	matches := fuzzy.FindFrom(query, playerNames(all))
	out := make([]player.Player, 0, min(limit, len(matches)))
	for _, m := range matches {
		if len(out) == limit {
			break
		}
		out = append(out, all[m.Index])
	}
	return out, nil
}

func (s *PlayerSearchService) pool(ctx context.Context) ([]player.Player, error) {
	load := func(ctx context.Context) (any, error) {
		items, err := s.players.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list players: %w", err)
		}
		return items, nil
	}
	if s.cache == nil {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return v.([]player.Player), nil
	}
	v, err := s.cache.GetOrLoad(ctx, marketCachePrefix+"players:all", load)
	if err != nil {
		return nil, err
	}
	return v.([]player.Player), nil
}
