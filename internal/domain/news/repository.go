package news

import "context"

type Repository interface {
	UpsertMany(ctx context.Context, items []Item) error
	ListByGame(ctx context.Context, gameCode string, limit int) ([]Item, error)
}
