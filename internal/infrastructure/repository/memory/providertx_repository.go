package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/fantasy-trade-market/internal/domain/providertx"
)

type ProviderTxRepository struct {
	mu    sync.RWMutex
	txs   map[string]providertx.Transaction
	trade map[string]providertx.Trade
	items map[string][]providertx.TradeItem
}

func NewProviderTxRepository() *ProviderTxRepository {
	return &ProviderTxRepository{
		txs:   make(map[string]providertx.Transaction),
		trade: make(map[string]providertx.Trade),
		items: make(map[string][]providertx.TradeItem),
	}
}

func (r *ProviderTxRepository) InsertTransaction(_ context.Context, tx providertx.Transaction) (bool, error) {
	if err := tx.Validate(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.txs[tx.Key]; exists {
		return false, nil
	}
	r.txs[tx.Key] = tx
	return true, nil
}

func (r *ProviderTxRepository) GetTransaction(_ context.Context, key string) (providertx.Transaction, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tx, ok := r.txs[key]
	return tx, ok, nil
}

func (r *ProviderTxRepository) GetTrade(_ context.Context, key string) (providertx.Trade, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.trade[key]
	return t, ok, nil
}

func (r *ProviderTxRepository) UpsertTrade(_ context.Context, t providertx.Trade) error {
	if err := t.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.trade[t.Key] = t
	return nil
}

func (r *ProviderTxRepository) ListTradesByLeague(_ context.Context, leagueKey string) ([]providertx.Trade, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []providertx.Trade
	for _, t := range r.trade {
		if t.LeagueKey == leagueKey {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (r *ProviderTxRepository) InsertTradeItem(_ context.Context, item providertx.TradeItem) (bool, error) {
	if err := item.Validate(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items[item.TradeKey] {
		if existing.PlayerKey == item.PlayerKey {
			return false, nil
		}
	}
	r.items[item.TradeKey] = append(r.items[item.TradeKey], item)
	return true, nil
}

func (r *ProviderTxRepository) ListTradeItems(_ context.Context, tradeKey string) ([]providertx.TradeItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]providertx.TradeItem(nil), r.items[tradeKey]...), nil
}
