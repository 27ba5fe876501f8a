package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"github.com/riskibarqy/fantasy-trade-market/internal/domain/market"
	qb "github.com/riskibarqy/fantasy-trade-market/internal/platform/querybuilder"
)

const (
	activeListingIndex = "uq_market_listings_active"
	pendingOfferIndex  = "uq_market_offers_pending"
)

type MarketRepository struct {
	db *sqlx.DB
}

func NewMarketRepository(db *sqlx.DB) *MarketRepository {
	return &MarketRepository{db: db}
}

func (r *MarketRepository) CreateListing(ctx context.Context, l market.Listing) error {
	if err := l.Validate(); err != nil {
		return err
	}
	query, args, err := qb.InsertModel("market_listings", listingTableModel{
		ID:           l.ID,
		SellerUserID: l.SellerUserID,
		PlayerKey:    l.PlayerKey,
		Status:       string(l.Status),
		Notes:        l.Notes,
		Resolution:   string(l.Resolution),
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert listing query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err, activeListingIndex) {
			return market.ErrDuplicateActiveListing
		}
		return fmt.Errorf("insert listing: %w", err)
	}
	return nil
}

func (r *MarketRepository) GetListing(ctx context.Context, id string) (market.Listing, bool, error) {
	return getListing(ctx, r.db, id, "")
}

func (r *MarketRepository) ListListings(ctx context.Context, status market.ListingStatus) ([]market.Listing, error) {
	b := qb.Select("*").From("market_listings").OrderBy("created_at DESC", "id")
	if status != "" {
		b.Where(qb.Eq("status", string(status)))
	}
	query, args, err := b.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list listings query: %w", err)
	}
	var rows []listingTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	return lo.Map(rows, func(row listingTableModel, _ int) market.Listing { return listingFromRow(row) }), nil
}

func (r *MarketRepository) CreateOffer(ctx context.Context, o market.Offer) error {
	if err := o.Validate(); err != nil {
		return err
	}
	query, args, err := qb.InsertModel("market_offers", offerTableModel{
		ID:               o.ID,
		ListingID:        o.ListingID,
		OffererUserID:    o.OffererUserID,
		OfferedPlayerKey: o.OfferedPlayerKey,
		OfferedCredits:   o.OfferedCredits,
		Status:           string(o.Status),
		Resolution:       string(o.Resolution),
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert offer query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err, pendingOfferIndex) {
			return market.ErrDuplicatePendingOffer
		}
		return fmt.Errorf("insert offer: %w", err)
	}
	return nil
}

func (r *MarketRepository) GetOffer(ctx context.Context, id string) (market.Offer, bool, error) {
	offers, err := selectOffers(ctx, r.db, qb.Eq("id", id))
	if err != nil {
		return market.Offer{}, false, err
	}
	if len(offers) == 0 {
		return market.Offer{}, false, nil
	}
	return offers[0], true, nil
}

func (r *MarketRepository) ListOffersByListing(ctx context.Context, listingID string) ([]market.Offer, error) {
	return selectOffers(ctx, r.db, qb.Eq("listing_id", listingID))
}

// UpdateOfferStatus only moves offers that are still pending.
func (r *MarketRepository) UpdateOfferStatus(ctx context.Context, id string, status market.OfferStatus, resolution market.Resolution, at time.Time) error {
	if !market.OfferPending.CanTransitionTo(status) {
		return market.ErrInvalidTransition
	}
	query, args, err := qb.Update("market_offers").
		Set("status", string(status)).
		Set("resolution", string(resolution)).
		Set("updated_at", at).
		Where(qb.Eq("id", id), qb.Eq("status", string(market.OfferPending))).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update offer query: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update offer %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for offer %s: %w", id, err)
	}
	if n == 0 {
		return market.ErrInvalidTransition
	}
	return nil
}

func (r *MarketRepository) CountPendingOffersForSeller(ctx context.Context, sellerUserID string) (int, error) {
	const countQuery = `
SELECT COUNT(*)
FROM market_offers o
JOIN market_listings l ON l.id = o.listing_id
WHERE l.seller_user_id = $1
  AND o.status = $2`

	var count int
	if err := r.db.GetContext(ctx, &count, countQuery, sellerUserID, string(market.OfferPending)); err != nil {
		return 0, fmt.Errorf("count pending offers: %w", err)
	}
	return count, nil
}

func (r *MarketRepository) CompleteListing(ctx context.Context, listingID, offerID string, resolution market.Resolution, at time.Time) ([]market.Offer, error) {
	var losers []market.Offer
	err := withTx(ctx, r.db, "complete listing", func(tx *sqlx.Tx) error {
		l, found, err := getListing(ctx, tx, listingID, "FOR UPDATE")
		if err != nil {
			return err
		}
		if !found || !l.Status.CanTransitionTo(market.ListingCompleted) {
			return market.ErrInvalidTransition
		}

		winner, err := selectOffers(ctx, tx, qb.Eq("id", offerID), qb.Eq("listing_id", listingID), qb.Eq("status", string(market.OfferPending)))
		if err != nil {
			return err
		}
		if len(winner) == 0 {
			return market.ErrInvalidTransition
		}
		if err := setOfferStatus(ctx, tx, []string{offerID}, market.OfferAccepted, resolution, at); err != nil {
			return err
		}
		if err := setListingStatus(ctx, tx, listingID, market.ListingCompleted, resolution, at); err != nil {
			return err
		}

		losers, err = closePendingOffers(ctx, tx, listingID, market.OfferRejected, at)
		return err
	})
	if err != nil {
		return nil, err
	}
	return losers, nil
}

func (r *MarketRepository) CancelListing(ctx context.Context, listingID string, at time.Time) ([]market.Offer, error) {
	var cancelled []market.Offer
	err := withTx(ctx, r.db, "cancel listing", func(tx *sqlx.Tx) error {
		l, found, err := getListing(ctx, tx, listingID, "FOR UPDATE")
		if err != nil {
			return err
		}
		if !found || !l.Status.CanTransitionTo(market.ListingCancelled) {
			return market.ErrInvalidTransition
		}
		if err := setListingStatus(ctx, tx, listingID, market.ListingCancelled, l.Resolution, at); err != nil {
			return err
		}
		cancelled, err = closePendingOffers(ctx, tx, listingID, market.OfferCancelled, at)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

func closePendingOffers(ctx context.Context, q sqlx.ExtContext, listingID string, status market.OfferStatus, at time.Time) ([]market.Offer, error) {
	pending, err := selectOffers(ctx, q, qb.Eq("listing_id", listingID), qb.Eq("status", string(market.OfferPending)))
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, nil
	}
	ids := lo.Map(pending, func(o market.Offer, _ int) string { return o.ID })
	if err := setOfferStatus(ctx, q, ids, status, "", at); err != nil {
		return nil, err
	}
	for i := range pending {
		pending[i].Status = status
		pending[i].UpdatedAt = at
	}
	return pending, nil
}

func setOfferStatus(ctx context.Context, q sqlx.ExtContext, ids []string, status market.OfferStatus, resolution market.Resolution, at time.Time) error {
	query, args, err := qb.Update("market_offers").
		Set("status", string(status)).
		Set("resolution", string(resolution)).
		Set("updated_at", at).
		Where(qb.In("id", qb.Strings(ids))).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update offers query: %w", err)
	}
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update offers to %s: %w", status, err)
	}
	return nil
}

func setListingStatus(ctx context.Context, q sqlx.ExtContext, id string, status market.ListingStatus, resolution market.Resolution, at time.Time) error {
	query, args, err := qb.Update("market_listings").
		Set("status", string(status)).
		Set("resolution", string(resolution)).
		Set("updated_at", at).
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update listing query: %w", err)
	}
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update listing %s: %w", id, err)
	}
	return nil
}

func getListing(ctx context.Context, q sqlx.QueryerContext, id, suffix string) (market.Listing, bool, error) {
	query, args, err := qb.Select("*").From("market_listings").Where(qb.Eq("id", id)).Suffix(suffix).ToSQL()
	if err != nil {
		return market.Listing{}, false, fmt.Errorf("build select listing query: %w", err)
	}
	var row listingTableModel
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if isNotFound(err) {
			return market.Listing{}, false, nil
		}
		return market.Listing{}, false, fmt.Errorf("select listing: %w", err)
	}
	return listingFromRow(row), true, nil
}

func selectOffers(ctx context.Context, q sqlx.QueryerContext, where ...qb.Condition) ([]market.Offer, error) {
	query, args, err := qb.Select("*").From("market_offers").Where(where...).OrderBy("created_at", "id").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select offers query: %w", err)
	}
	var rows []offerTableModel
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select offers: %w", err)
	}
	return lo.Map(rows, func(row offerTableModel, _ int) market.Offer {
		return market.Offer{
			ID:               row.ID,
			ListingID:        row.ListingID,
			OffererUserID:    row.OffererUserID,
			OfferedPlayerKey: row.OfferedPlayerKey,
			OfferedCredits:   row.OfferedCredits,
			Status:           market.OfferStatus(row.Status),
			Resolution:       market.Resolution(row.Resolution),
			CreatedAt:        row.CreatedAt,
			UpdatedAt:        row.UpdatedAt,
		}
	}), nil
}

func listingFromRow(row listingTableModel) market.Listing {
	return market.Listing{
		ID:           row.ID,
		SellerUserID: row.SellerUserID,
		PlayerKey:    row.PlayerKey,
		Status:       market.ListingStatus(row.Status),
		Notes:        row.Notes,
		Resolution:   market.Resolution(row.Resolution),
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}
