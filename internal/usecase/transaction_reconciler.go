package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/riskibarqy/fantasy-trade-market/internal/domain/player"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/providertx"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/team"
	"github.com/riskibarqy/fantasy-trade-market/internal/platform/logging"
)

// ReconcileSummary counts outcomes of one pass over a league transaction log.
type ReconcileSummary struct {
	Applied     int `json:"applied"`
	Skipped     int `json:"skipped"`
	Failed      int `json:"failed"`
	TradesMoved int `json:"trades_moved"`
}

// TransactionReconciler applies provider transactions to roster membership.
// Non-trade transactions are claimed by inserting their record first, so a
// key is mutated at most once even across concurrent runs. Trades move
// players only when their stored status flips to successful.
type TransactionReconciler struct {
	txs     providertx.Repository
	roster  team.RosterRepository
	players player.Repository
	logger  *logging.Logger
}

func NewTransactionReconciler(
	txs providertx.Repository,
	roster team.RosterRepository,
	players player.Repository,
	logger *logging.Logger,
) *TransactionReconciler {
	if logger == nil {
		logger = logging.Default()
	}
	return &TransactionReconciler{txs: txs, roster: roster, players: players, logger: logger}
}

// ReconcileLeague processes the log in ascending timestamp order. A failing
// transaction is logged and counted; the rest of the log still runs.
func (r *TransactionReconciler) ReconcileLeague(ctx context.Context, leagueKey string, items []ExternalTransaction) ReconcileSummary {
	ctx, span := startUsecaseSpan(ctx, "usecase.TransactionReconciler.ReconcileLeague")
	defer span.End()

	ordered := append([]ExternalTransaction(nil), items...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	var summary ReconcileSummary
	for _, item := range ordered {
		outcome, err := r.reconcile(ctx, leagueKey, item)
		if err != nil {
			summary.Failed++
			r.logger.WarnContext(ctx, "skip provider transaction",
				"league_key", leagueKey,
				"transaction_key", item.Key,
				"type", item.Type,
				"error", err,
			)
			continue
		}
		switch outcome {
		case outcomeApplied:
			summary.Applied++
		case outcomeTradeMoved:
			summary.Applied++
			summary.TradesMoved++
		default:
			summary.Skipped++
		}
	}
	return summary
}

type reconcileOutcome int

const (
	outcomeSkipped reconcileOutcome = iota
	outcomeApplied
	outcomeTradeMoved
)

func (r *TransactionReconciler) reconcile(ctx context.Context, leagueKey string, item ExternalTransaction) (reconcileOutcome, error) {
	if strings.TrimSpace(item.Key) == "" {
		return outcomeSkipped, fmt.Errorf("%w: transaction key is empty", ErrInvalidInput)
	}
	if providertx.IsTrade(item.Type) {
		return r.reconcileTrade(ctx, leagueKey, item)
	}

	created, err := r.txs.InsertTransaction(ctx, recordOf(leagueKey, item))
	if err != nil {
		return outcomeSkipped, fmt.Errorf("claim transaction=%s: %w", item.Key, err)
	}
	if !created {
		return outcomeSkipped, nil
	}
	if err := r.applyMoves(ctx, item.Type, item.Moves); err != nil {
		return outcomeSkipped, fmt.Errorf("apply transaction=%s: %w", item.Key, err)
	}
	return outcomeApplied, nil
}

func (r *TransactionReconciler) reconcileTrade(ctx context.Context, leagueKey string, item ExternalTransaction) (reconcileOutcome, error) {
	previous, found, err := r.txs.GetTrade(ctx, item.Key)
	if err != nil {
		return outcomeSkipped, fmt.Errorf("get trade=%s: %w", item.Key, err)
	}
	prevStatus := ""
	if found {
		prevStatus = previous.Status
	}
	status := normalizeStatus(item.Status)

	if _, err := r.txs.InsertTransaction(ctx, recordOf(leagueKey, item)); err != nil {
		return outcomeSkipped, fmt.Errorf("record trade transaction=%s: %w", item.Key, err)
	}
	if err := r.mirrorTradeItems(ctx, item); err != nil {
		return outcomeSkipped, err
	}

	outcome := outcomeSkipped
	if providertx.BecameSuccessful(prevStatus, status) {
		if err := r.applyMoves(ctx, providertx.TypeTrade, item.Moves); err != nil {
			return outcomeSkipped, fmt.Errorf("apply trade=%s: %w", item.Key, err)
		}
		outcome = outcomeTradeMoved
	}

	// Status is stored after the moves so a failed move is retried by the next pass.
	if err := r.txs.UpsertTrade(ctx, tradeOf(leagueKey, item, status, previous, found)); err != nil {
		return outcomeSkipped, fmt.Errorf("upsert trade=%s: %w", item.Key, err)
	}
	return outcome, nil
}

// MirrorPendingTrades keeps the display-only shadow of trades awaiting a
// response. It never moves players and never records a successful status,
// which is left to the league log so the transition is still observed there.
func (r *TransactionReconciler) MirrorPendingTrades(ctx context.Context, leagueKey string, trades []ExternalTransaction) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TransactionReconciler.MirrorPendingTrades")
	defer span.End()

	var errs []error
	mirrored := 0
	for _, item := range trades {
		if strings.TrimSpace(item.Key) == "" {
			continue
		}
		status := normalizeStatus(item.Status)
		if status == providertx.TradeStatusSuccessful {
			continue
		}
		previous, found, err := r.txs.GetTrade(ctx, item.Key)
		if err != nil {
			errs = append(errs, fmt.Errorf("get pending trade=%s: %w", item.Key, err))
			continue
		}
		if found && previous.Status == providertx.TradeStatusSuccessful {
			continue
		}
		if err := r.txs.UpsertTrade(ctx, tradeOf(leagueKey, item, status, previous, found)); err != nil {
			errs = append(errs, fmt.Errorf("upsert pending trade=%s: %w", item.Key, err))
			continue
		}
		if err := r.mirrorTradeItems(ctx, item); err != nil {
			errs = append(errs, err)
			continue
		}
		mirrored++
	}
	return mirrored, errors.Join(errs...)
}

func (r *TransactionReconciler) mirrorTradeItems(ctx context.Context, item ExternalTransaction) error {
	moves := lo.UniqBy(item.Moves, func(m ExternalMove) string { return m.PlayerKey })
	for _, move := range moves {
		if move.PlayerKey == "" {
			continue
		}
		if err := r.players.EnsureExists(ctx, move.PlayerKey, move.PlayerName); err != nil {
			return fmt.Errorf("ensure player=%s for trade=%s: %w", move.PlayerKey, item.Key, err)
		}
		if _, err := r.txs.InsertTradeItem(ctx, providertx.TradeItem{
			TradeKey:        item.Key,
			PlayerKey:       move.PlayerKey,
			SenderTeamKey:   move.SourceTeamKey,
			ReceiverTeamKey: move.DestinationTeamKey,
		}); err != nil {
			return fmt.Errorf("insert trade item trade=%s player=%s: %w", item.Key, move.PlayerKey, err)
		}
	}
	return nil
}

// applyMoves runs moves in provider order. Each move falls back to the
// transaction type when the provider omits a per-player type.
func (r *TransactionReconciler) applyMoves(ctx context.Context, txType string, moves []ExternalMove) error {
	var errs []error
	for _, move := range moves {
		if move.PlayerKey == "" {
			continue
		}
		kind := strings.ToLower(strings.TrimSpace(move.Type))
		if kind == "" {
			kind = strings.ToLower(strings.TrimSpace(txType))
		}

		if err := r.players.EnsureExists(ctx, move.PlayerKey, move.PlayerName); err != nil {
			errs = append(errs, fmt.Errorf("ensure player=%s: %w", move.PlayerKey, err))
			continue
		}

		switch kind {
		case providertx.TypeTrade:
			errs = append(errs, r.connect(ctx, move), r.disconnect(ctx, move))
		case providertx.TypeAdd:
			errs = append(errs, r.connect(ctx, move))
		case providertx.TypeDrop:
			errs = append(errs, r.disconnect(ctx, move))
		default:
			r.logger.DebugContext(ctx, "ignore move with unknown type", "player_key", move.PlayerKey, "type", kind)
		}
	}
	return errors.Join(errs...)
}

func (r *TransactionReconciler) connect(ctx context.Context, move ExternalMove) error {
	if move.DestinationTeamKey == "" {
		return nil
	}
	if err := r.roster.Connect(ctx, move.DestinationTeamKey, move.PlayerKey); err != nil {
		return fmt.Errorf("connect team=%s player=%s: %w", move.DestinationTeamKey, move.PlayerKey, err)
	}
	return nil
}

func (r *TransactionReconciler) disconnect(ctx context.Context, move ExternalMove) error {
	if move.SourceTeamKey == "" {
		return nil
	}
	if err := r.roster.Disconnect(ctx, move.SourceTeamKey, move.PlayerKey); err != nil {
		return fmt.Errorf("disconnect team=%s player=%s: %w", move.SourceTeamKey, move.PlayerKey, err)
	}
	return nil
}

func recordOf(leagueKey string, item ExternalTransaction) providertx.Transaction {
	return providertx.Transaction{
		Key:         item.Key,
		LeagueKey:   leagueKey,
		Type:        lo.CoalesceOrEmpty(strings.TrimSpace(item.Type), "unknown"),
		Status:      normalizeStatus(item.Status),
		Timestamp:   item.Timestamp,
		PayloadJSON: item.RawJSON,
		PayloadHash: item.RawHash,
	}
}

func tradeOf(leagueKey string, item ExternalTransaction, status string, previous providertx.Trade, found bool) providertx.Trade {
	trade := providertx.Trade{
		Key:           item.Key,
		LeagueKey:     leagueKey,
		Status:        lo.CoalesceOrEmpty(status, providertx.TradeStatusProposed),
		TraderTeamKey: item.TraderTeamKey,
		TradeeTeamKey: item.TradeeTeamKey,
		ProposedAt:    item.Timestamp,
	}
	if found {
		trade.TraderTeamKey = lo.CoalesceOrEmpty(trade.TraderTeamKey, previous.TraderTeamKey)
		trade.TradeeTeamKey = lo.CoalesceOrEmpty(trade.TradeeTeamKey, previous.TradeeTeamKey)
		if !previous.ProposedAt.IsZero() {
			trade.ProposedAt = previous.ProposedAt
		}
	}
	return trade
}

func normalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}
