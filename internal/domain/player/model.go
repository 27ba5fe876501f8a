package player

import (
	"fmt"
	"strings"
)

// Player is shared by every team that rosters it, keyed like "428.p.5000".
type Player struct {
	Key             string
	FullName        string
	TeamAbbr        string
	PhotoURL        string
	Position        string
	Status          string
	FantasyPoints   float64
	ProjectedPoints float64
	PercentOwned    float64
	PercentStarted  float64
	MarketValue     int64
	Stats           map[string]string
}

func (p Player) Validate() error {
	if p.Key == "" {
		return fmt.Errorf("player key is required")
	}
	if p.MarketValue < 0 {
		return fmt.Errorf("player market value must not be negative")
	}
	return nil
}

// Number is the player id segment of the key.
func (p Player) Number() string {
	idx := strings.LastIndex(p.Key, ".p.")
	if idx < 0 {
		return ""
	}
	return p.Key[idx+len(".p."):]
}
