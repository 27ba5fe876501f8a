package providertx

import "context"

// Repository persists provider transactions and the trade shadow state.
type Repository interface {
	// InsertTransaction stores the record only when the key is new and reports whether it did.
	InsertTransaction(ctx context.Context, tx Transaction) (bool, error)
	GetTransaction(ctx context.Context, key string) (Transaction, bool, error)

	GetTrade(ctx context.Context, key string) (Trade, bool, error)
	UpsertTrade(ctx context.Context, trade Trade) error
	ListTradesByLeague(ctx context.Context, leagueKey string) ([]Trade, error)

	// InsertTradeItem is a no-op returning false when (TradeKey, PlayerKey) already exists.
	InsertTradeItem(ctx context.Context, item TradeItem) (bool, error)
	ListTradeItems(ctx context.Context, tradeKey string) ([]TradeItem, error)
}
