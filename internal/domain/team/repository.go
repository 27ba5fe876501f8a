package team

import "context"

// Repository describes team persistence needs from use cases.
// Upsert keeps an existing ManagerUserID when the incoming one is empty.
type Repository interface {
	Upsert(ctx context.Context, t Team) error
	GetByKey(ctx context.Context, key string) (Team, bool, error)
	ListByLeague(ctx context.Context, leagueKey string) ([]Team, error)
	ListByManager(ctx context.Context, userID string) ([]Team, error)
}

// RosterRepository owns the team to player membership set.
// SetMembers is the authoritative full replace; Connect and Disconnect are incremental.
type RosterRepository interface {
	SetMembers(ctx context.Context, teamKey string, playerKeys []string) error
	Connect(ctx context.Context, teamKey, playerKey string) error
	Disconnect(ctx context.Context, teamKey, playerKey string) error
	Members(ctx context.Context, teamKey string) ([]string, error)
	TeamsForPlayer(ctx context.Context, playerKey string) ([]string, error)
}
