package game

import "context"

type Repository interface {
	Upsert(ctx context.Context, g Game) error
	GetByKey(ctx context.Context, key string) (Game, bool, error)
}
