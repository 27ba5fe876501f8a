package providertx

import (
	"fmt"
	"strings"
	"time"
)

// Transaction types as reported by the provider. Per-player moves inside an
// "add/drop" carry their own add or drop type.
const (
	TypeAdd     = "add"
	TypeDrop    = "drop"
	TypeAddDrop = "add/drop"
	TypeTrade   = "trade"
)

const (
	TradeStatusProposed   = "proposed"
	TradeStatusAccepted   = "accepted"
	TradeStatusSuccessful = "successful"
	TradeStatusRejected   = "rejected"
	TradeStatusExpired    = "expired"
)

// Transaction is the write-once record of a provider transaction. Its
// presence means the roster side effects have already been claimed.
type Transaction struct {
	Key         string
	LeagueKey   string
	Type        string
	Status      string
	Timestamp   time.Time
	PayloadJSON string
	PayloadHash string
}

func (t Transaction) Validate() error {
	if t.Key == "" {
		return fmt.Errorf("transaction key is required")
	}
	if t.LeagueKey == "" {
		return fmt.Errorf("transaction league key is required")
	}
	if t.Type == "" {
		return fmt.Errorf("transaction type is required")
	}
	return nil
}

// IsTrade reports whether roster effects are gated by trade status instead of write-once.
func IsTrade(txType string) bool {
	return strings.EqualFold(strings.TrimSpace(txType), TypeTrade)
}

// Trade mirrors a provider trade and its evolving status.
type Trade struct {
	Key           string
	LeagueKey     string
	Status        string
	TraderTeamKey string
	TradeeTeamKey string
	ProposedAt    time.Time
}

func (t Trade) Validate() error {
	if t.Key == "" {
		return fmt.Errorf("trade key is required")
	}
	if t.LeagueKey == "" {
		return fmt.Errorf("trade league key is required")
	}
	if t.Status == "" {
		return fmt.Errorf("trade status is required")
	}
	return nil
}

// BecameSuccessful reports the single transition that moves players.
func BecameSuccessful(previous, next string) bool {
	return next == TradeStatusSuccessful && previous != TradeStatusSuccessful
}

// TradeItem is one player moved by a trade. (TradeKey, PlayerKey) is unique.
type TradeItem struct {
	TradeKey        string
	PlayerKey       string
	SenderTeamKey   string
	ReceiverTeamKey string
}

func (i TradeItem) Validate() error {
	if i.TradeKey == "" || i.PlayerKey == "" {
		return fmt.Errorf("trade item requires trade key and player key")
	}
	return nil
}
