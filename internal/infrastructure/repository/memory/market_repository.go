package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/fantasy-trade-market/internal/domain/market"
)

// MarketRepository keeps listings and offers under one lock so the
// multi-record transitions are atomic.
type MarketRepository struct {
	mu       sync.RWMutex
	listings map[string]market.Listing
	offers   map[string]market.Offer
}

func NewMarketRepository() *MarketRepository {
	return &MarketRepository{
		listings: make(map[string]market.Listing),
		offers:   make(map[string]market.Offer),
	}
}

func (r *MarketRepository) CreateListing(_ context.Context, l market.Listing) error {
	if err := l.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if l.Status == market.ListingActive {
		for _, existing := range r.listings {
			if existing.Status == market.ListingActive &&
				existing.SellerUserID == l.SellerUserID &&
				existing.PlayerKey == l.PlayerKey {
				return market.ErrDuplicateActiveListing
			}
		}
	}
	r.listings[l.ID] = l
	return nil
}

func (r *MarketRepository) GetListing(_ context.Context, id string) (market.Listing, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.listings[id]
	return l, ok, nil
}

// ListListings returns listings newest first. An empty status returns every listing.
func (r *MarketRepository) ListListings(_ context.Context, status market.ListingStatus) ([]market.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]market.Listing, 0, len(r.listings))
	for _, l := range r.listings {
		if status == "" || l.Status == status {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MarketRepository) CreateOffer(_ context.Context, o market.Offer) error {
	if err := o.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if o.Status == market.OfferPending {
		for _, existing := range r.offers {
			if existing.Status == market.OfferPending &&
				existing.ListingID == o.ListingID &&
				existing.OffererUserID == o.OffererUserID &&
				existing.OfferedPlayerKey == o.OfferedPlayerKey {
				return market.ErrDuplicatePendingOffer
			}
		}
	}
	r.offers[o.ID] = o
	return nil
}

func (r *MarketRepository) GetOffer(_ context.Context, id string) (market.Offer, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.offers[id]
	return o, ok, nil
}

func (r *MarketRepository) ListOffersByListing(_ context.Context, listingID string) ([]market.Offer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.offersOf(listingID, ""), nil
}

func (r *MarketRepository) UpdateOfferStatus(_ context.Context, id string, status market.OfferStatus, resolution market.Resolution, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.offers[id]
	if !ok || !o.Status.CanTransitionTo(status) {
		return market.ErrInvalidTransition
	}
	o.Status = status
	o.Resolution = resolution
	o.UpdatedAt = at
	r.offers[id] = o
	return nil
}

func (r *MarketRepository) CountPendingOffersForSeller(_ context.Context, sellerUserID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, o := range r.offers {
		if o.Status != market.OfferPending {
			continue
		}
		if l, ok := r.listings[o.ListingID]; ok && l.SellerUserID == sellerUserID {
			count++
		}
	}
	return count, nil
}

func (r *MarketRepository) CompleteListing(_ context.Context, listingID, offerID string, resolution market.Resolution, at time.Time) ([]market.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.listings[listingID]
	if !ok || !l.Status.CanTransitionTo(market.ListingCompleted) {
		return nil, market.ErrInvalidTransition
	}
	winner, ok := r.offers[offerID]
	if !ok || winner.ListingID != listingID || !winner.Status.CanTransitionTo(market.OfferAccepted) {
		return nil, market.ErrInvalidTransition
	}

	winner.Status = market.OfferAccepted
	winner.Resolution = resolution
	winner.UpdatedAt = at
	r.offers[offerID] = winner

	l.Status = market.ListingCompleted
	l.Resolution = resolution
	l.UpdatedAt = at
	r.listings[listingID] = l

	return r.closePending(listingID, market.OfferRejected, at), nil
}

func (r *MarketRepository) CancelListing(_ context.Context, listingID string, at time.Time) ([]market.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.listings[listingID]
	if !ok || !l.Status.CanTransitionTo(market.ListingCancelled) {
		return nil, market.ErrInvalidTransition
	}
	l.Status = market.ListingCancelled
	l.UpdatedAt = at
	r.listings[listingID] = l

	return r.closePending(listingID, market.OfferCancelled, at), nil
}

func (r *MarketRepository) closePending(listingID string, status market.OfferStatus, at time.Time) []market.Offer {
	closed := r.offersOf(listingID, market.OfferPending)
	for i := range closed {
		closed[i].Status = status
		closed[i].UpdatedAt = at
		r.offers[closed[i].ID] = closed[i]
	}
	return closed
}

func (r *MarketRepository) offersOf(listingID string, status market.OfferStatus) []market.Offer {
	var out []market.Offer
	for _, o := range r.offers {
		if o.ListingID == listingID && (status == "" || o.Status == status) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
