package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/riskibarqy/fantasy-trade-market/internal/domain/news"
	"github.com/riskibarqy/fantasy-trade-market/internal/platform/logging"
)

type NewsSyncService struct {
	provider NewsProvider
	repo     news.Repository
	limit    int
	logger   *logging.Logger
}

func NewNewsSyncService(provider NewsProvider, repo news.Repository, limit int, logger *logging.Logger) *NewsSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	if limit <= 0 {
		limit = 20
	}
	return &NewsSyncService{provider: provider, repo: repo, limit: limit, logger: logger}
}

// SyncGames refreshes headlines for each distinct game code. One failing code does not stop the others.
func (s *NewsSyncService) SyncGames(ctx context.Context, gameCodes []string) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.NewsSyncService.SyncGames")
	defer span.End()

	if s == nil || s.provider == nil {
		return 0, nil
	}

	var errs []error
	stored := 0
	for _, code := range lo.Uniq(lo.Compact(gameCodes)) {
		items, err := s.provider.FetchHeadlines(ctx, code, s.limit)
		if err != nil {
			errs = append(errs, fmt.Errorf("fetch headlines game=%s: %w", code, err))
			continue
		}
		items = lo.Filter(items, func(it news.Item, _ int) bool { return it.Link != "" })
		if len(items) == 0 {
			continue
		}
		if err := s.repo.UpsertMany(ctx, items); err != nil {
			errs = append(errs, fmt.Errorf("upsert headlines game=%s: %w", code, err))
			continue
		}
		stored += len(items)
	}
	return stored, errors.Join(errs...)
}

func (s *NewsSyncService) Latest(ctx context.Context, gameCode string, limit int) ([]news.Item, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.repo.ListByGame(ctx, gameCode, limit)
}
