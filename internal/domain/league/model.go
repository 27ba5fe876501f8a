package league

import (
	"fmt"
	"strings"
	"time"
)

// League is a provider league within one game, keyed like "428.l.1234".
type League struct {
	Key         string
	GameKey     string
	Name        string
	URL         string
	NumTeams    int
	ScoringType string
	CurrentWeek int
	LastSyncAt  time.Time
}

func (l League) Validate() error {
	if l.Key == "" {
		return fmt.Errorf("league key is required")
	}
	if l.GameKey == "" {
		return fmt.Errorf("league game key is required")
	}
	return nil
}

// Number is the league id segment of the key, used in provider web links.
func (l League) Number() string {
	return lastSegment(l.Key, ".l.")
}

func lastSegment(key, marker string) string {
	idx := strings.LastIndex(key, marker)
	if idx < 0 {
		return ""
	}
	rest := key[idx+len(marker):]
	if dot := strings.IndexByte(rest, '.'); dot >= 0 {
		rest = rest[:dot]
	}
	return rest
}
