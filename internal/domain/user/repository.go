package user

import "context"

// Directory resolves contact details for local users. Remember records the
// latest e-mail seen for an authenticated principal.
type Directory interface {
	Remember(ctx context.Context, p Principal) error
	Emails(ctx context.Context, userIDs []string) (map[string]string, error)
}
