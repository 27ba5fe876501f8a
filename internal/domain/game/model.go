package game

import "fmt"

// Game is one sport season on the provider, e.g. key "428" for nba 2023.
type Game struct {
	Key    string
	Code   string
	Name   string
	Season string
}

func (g Game) Validate() error {
	if g.Key == "" {
		return fmt.Errorf("game key is required")
	}
	if g.Code == "" {
		return fmt.Errorf("game code is required")
	}
	return nil
}
