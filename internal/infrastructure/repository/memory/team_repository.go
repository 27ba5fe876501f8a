package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/samber/lo"

	"github.com/riskibarqy/fantasy-trade-market/internal/domain/team"
)

type TeamRepository struct {
	mu    sync.RWMutex
	items map[string]team.Team
}

func NewTeamRepository() *TeamRepository {
	return &TeamRepository{items: make(map[string]team.Team)}
}

func (r *TeamRepository) Upsert(_ context.Context, t team.Team) error {
	if err := t.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.items[t.Key]; ok && t.ManagerUserID == "" {
		t.ManagerUserID = prev.ManagerUserID
	}
	r.items[t.Key] = t
	return nil
}

func (r *TeamRepository) GetByKey(_ context.Context, key string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[key]
	return t, ok, nil
}

func (r *TeamRepository) ListByLeague(_ context.Context, leagueKey string) ([]team.Team, error) {
	return r.filter(func(t team.Team) bool { return t.LeagueKey == leagueKey }), nil
}

func (r *TeamRepository) ListByManager(_ context.Context, userID string) ([]team.Team, error) {
	if userID == "" {
		return nil, nil
	}
	return r.filter(func(t team.Team) bool { return t.ManagerUserID == userID }), nil
}

func (r *TeamRepository) filter(keep func(team.Team) bool) []team.Team {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := lo.Filter(lo.Values(r.items), func(t team.Team, _ int) bool { return keep(t) })
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// RosterRepository holds team membership as a set per team. When teams is
// set, membership for an unknown team is rejected like a foreign key would be.
type RosterRepository struct {
	mu      sync.RWMutex
	members map[string]map[string]struct{}
	teams   *TeamRepository
}

func NewRosterRepository(teams *TeamRepository) *RosterRepository {
	return &RosterRepository{members: make(map[string]map[string]struct{}), teams: teams}
}

func (r *RosterRepository) SetMembers(ctx context.Context, teamKey string, playerKeys []string) error {
	if err := r.checkTeam(ctx, teamKey); err != nil {
		return err
	}
	set := make(map[string]struct{}, len(playerKeys))
	for _, key := range playerKeys {
		if key != "" {
			set[key] = struct{}{}
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.members[teamKey] = set
	return nil
}

func (r *RosterRepository) Connect(ctx context.Context, teamKey, playerKey string) error {
	if err := r.checkTeam(ctx, teamKey); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.members[teamKey]
	if !ok {
		set = make(map[string]struct{})
		r.members[teamKey] = set
	}
	set[playerKey] = struct{}{}
	return nil
}

func (r *RosterRepository) Disconnect(_ context.Context, teamKey, playerKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.members[teamKey], playerKey)
	return nil
}

func (r *RosterRepository) Members(_ context.Context, teamKey string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := lo.Keys(r.members[teamKey])
	sort.Strings(out)
	return out, nil
}

func (r *RosterRepository) TeamsForPlayer(_ context.Context, playerKey string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	for teamKey, set := range r.members {
		if _, ok := set[playerKey]; ok {
			out = append(out, teamKey)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *RosterRepository) checkTeam(ctx context.Context, teamKey string) error {
	if teamKey == "" {
		return fmt.Errorf("team key is required")
	}
	if r.teams == nil {
		return nil
	}
	if _, ok, _ := r.teams.GetByKey(ctx, teamKey); !ok {
		return fmt.Errorf("team %s does not exist", teamKey)
	}
	return nil
}
