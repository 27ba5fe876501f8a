package player

import "context"

// Repository describes player persistence needs from use cases.
type Repository interface {
	Upsert(ctx context.Context, p Player) error
	// EnsureExists inserts a bare record when the key is unknown and leaves existing rows untouched.
	EnsureExists(ctx context.Context, key, fullName string) error
	GetByKey(ctx context.Context, key string) (Player, bool, error)
	List(ctx context.Context) ([]Player, error)
}
