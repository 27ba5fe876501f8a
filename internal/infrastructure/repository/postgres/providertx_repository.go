package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"github.com/riskibarqy/fantasy-trade-market/internal/domain/providertx"
	qb "github.com/riskibarqy/fantasy-trade-market/internal/platform/querybuilder"
)

type ProviderTxRepository struct {
	db *sqlx.DB
}

func NewProviderTxRepository(db *sqlx.DB) *ProviderTxRepository {
	return &ProviderTxRepository{db: db}
}

// InsertTransaction relies on the primary key: a conflicting insert affects no rows.
func (r *ProviderTxRepository) InsertTransaction(ctx context.Context, tx providertx.Transaction) (bool, error) {
	if err := tx.Validate(); err != nil {
		return false, err
	}
	payload := tx.PayloadJSON
	if payload == "" {
		payload = "{}"
	}
	query, args, err := qb.InsertModel("provider_transactions", transactionTableModel{
		Key:         tx.Key,
		LeagueKey:   tx.LeagueKey,
		Type:        tx.Type,
		Status:      tx.Status,
		OccurredAt:  tx.Timestamp,
		Payload:     payload,
		PayloadHash: tx.PayloadHash,
	}, "ON CONFLICT (key) DO NOTHING")
	if err != nil {
		return false, fmt.Errorf("build insert transaction query: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert transaction %s: %w", tx.Key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected for transaction %s: %w", tx.Key, err)
	}
	return n > 0, nil
}

func (r *ProviderTxRepository) GetTransaction(ctx context.Context, key string) (providertx.Transaction, bool, error) {
	query, args, err := qb.Select("key", "league_key", "type", "status", "occurred_at", "payload::text AS payload", "payload_hash").
		From("provider_transactions").
		Where(qb.Eq("key", key)).
		ToSQL()
	if err != nil {
		return providertx.Transaction{}, false, fmt.Errorf("build select transaction query: %w", err)
	}
	var row transactionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return providertx.Transaction{}, false, nil
		}
		return providertx.Transaction{}, false, fmt.Errorf("select transaction: %w", err)
	}
	return providertx.Transaction{
		Key:         row.Key,
		LeagueKey:   row.LeagueKey,
		Type:        row.Type,
		Status:      row.Status,
		Timestamp:   row.OccurredAt,
		PayloadJSON: row.Payload,
		PayloadHash: row.PayloadHash,
	}, true, nil
}

func (r *ProviderTxRepository) GetTrade(ctx context.Context, key string) (providertx.Trade, bool, error) {
	trades, err := r.selectTrades(ctx, qb.Eq("key", key))
	if err != nil {
		return providertx.Trade{}, false, err
	}
	if len(trades) == 0 {
		return providertx.Trade{}, false, nil
	}
	return trades[0], true, nil
}

func (r *ProviderTxRepository) UpsertTrade(ctx context.Context, t providertx.Trade) error {
	if err := t.Validate(); err != nil {
		return err
	}
	query, args, err := qb.InsertModel("provider_trades", tradeTableModel{
		Key:           t.Key,
		LeagueKey:     t.LeagueKey,
		Status:        t.Status,
		TraderTeamKey: t.TraderTeamKey,
		TradeeTeamKey: t.TradeeTeamKey,
		ProposedAt:    t.ProposedAt,
	}, "ON CONFLICT (key) DO UPDATE SET "+qb.Excluded("status", "trader_team_key", "tradee_team_key"))
	if err != nil {
		return fmt.Errorf("build upsert trade query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert trade %s: %w", t.Key, err)
	}
	return nil
}

func (r *ProviderTxRepository) ListTradesByLeague(ctx context.Context, leagueKey string) ([]providertx.Trade, error) {
	return r.selectTrades(ctx, qb.Eq("league_key", leagueKey))
}

func (r *ProviderTxRepository) selectTrades(ctx context.Context, where qb.Condition) ([]providertx.Trade, error) {
	query, args, err := qb.Select("*").From("provider_trades").Where(where).OrderBy("key").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select trades query: %w", err)
	}
	var rows []tradeTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select trades: %w", err)
	}
	return lo.Map(rows, func(row tradeTableModel, _ int) providertx.Trade {
		return providertx.Trade{
			Key:           row.Key,
			LeagueKey:     row.LeagueKey,
			Status:        row.Status,
			TraderTeamKey: row.TraderTeamKey,
			TradeeTeamKey: row.TradeeTeamKey,
			ProposedAt:    row.ProposedAt,
		}
	}), nil
}

func (r *ProviderTxRepository) InsertTradeItem(ctx context.Context, item providertx.TradeItem) (bool, error) {
	if err := item.Validate(); err != nil {
		return false, err
	}
	query, args, err := qb.InsertModel("provider_trade_items", tradeItemTableModel(item), "ON CONFLICT (trade_key, player_key) DO NOTHING")
	if err != nil {
		return false, fmt.Errorf("build insert trade item query: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert trade item %s/%s: %w", item.TradeKey, item.PlayerKey, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected for trade item: %w", err)
	}
	return n > 0, nil
}

func (r *ProviderTxRepository) ListTradeItems(ctx context.Context, tradeKey string) ([]providertx.TradeItem, error) {
	query, args, err := qb.Select("*").From("provider_trade_items").
		Where(qb.Eq("trade_key", tradeKey)).
		OrderBy("player_key").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select trade items query: %w", err)
	}
	var rows []tradeItemTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select trade items: %w", err)
	}
	return lo.Map(rows, func(row tradeItemTableModel, _ int) providertx.TradeItem {
		return providertx.TradeItem(row)
	}), nil
}
