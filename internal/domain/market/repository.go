package market

import (
	"context"
	"time"
)

// Repository stores listings and offers. Uniqueness rules are enforced here
// so that concurrent requests cannot both pass a check-then-insert.
type Repository interface {
	// CreateListing fails with ErrDuplicateActiveListing when the seller already has an ACTIVE listing for the player.
	CreateListing(ctx context.Context, l Listing) error
	GetListing(ctx context.Context, id string) (Listing, bool, error)
	ListListings(ctx context.Context, status ListingStatus) ([]Listing, error)

	// CreateOffer fails with ErrDuplicatePendingOffer on an identical pending (listing, offerer, offered player).
	CreateOffer(ctx context.Context, o Offer) error
	GetOffer(ctx context.Context, id string) (Offer, bool, error)
	ListOffersByListing(ctx context.Context, listingID string) ([]Offer, error)
	UpdateOfferStatus(ctx context.Context, id string, status OfferStatus, resolution Resolution, at time.Time) error
	CountPendingOffersForSeller(ctx context.Context, sellerUserID string) (int, error)

	// CompleteListing accepts one offer, completes the listing and rejects every other
	// pending offer in one unit. It returns the offers it rejected.
	CompleteListing(ctx context.Context, listingID, offerID string, resolution Resolution, at time.Time) ([]Offer, error)
	// CancelListing cancels the listing and its pending offers, returning the cancelled offers.
	CancelListing(ctx context.Context, listingID string, at time.Time) ([]Offer, error)
}
