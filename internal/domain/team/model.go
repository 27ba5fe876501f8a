package team

import (
	"fmt"
	"strings"
)

// Team is a provider fantasy team, keyed like "428.l.1234.t.5".
// ManagerUserID is only known for teams managed by a linked local user.
type Team struct {
	Key           string
	LeagueKey     string
	ManagerUserID string
	Name          string
	LogoURL       string
	Wins          int
	Losses        int
	Ties          int
	Rank          int
}

func (t Team) Validate() error {
	if t.Key == "" {
		return fmt.Errorf("team key is required")
	}
	if t.LeagueKey == "" {
		return fmt.Errorf("team league key is required")
	}
	return nil
}

// Number is the team id segment of the key.
func (t Team) Number() string {
	idx := strings.LastIndex(t.Key, ".t.")
	if idx < 0 {
		return ""
	}
	return t.Key[idx+len(".t."):]
}
