package credential

import "context"

// Repository stores at most one credential per (user, provider). Upsert is last write wins.
type Repository interface {
	Get(ctx context.Context, userID string, provider Provider) (Credential, bool, error)
	Upsert(ctx context.Context, cred Credential) error
	Delete(ctx context.Context, userID string, provider Provider) error
	ListUserIDs(ctx context.Context, provider Provider) ([]string, error)
}
