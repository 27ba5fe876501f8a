package league

import "context"

// Repository describes league persistence needs from use cases.
type Repository interface {
	Upsert(ctx context.Context, l League) error
	GetByKey(ctx context.Context, key string) (League, bool, error)
}
