package market

import (
	"errors"
	"fmt"
	"time"
)

type ListingStatus string

const (
	ListingActive        ListingStatus = "ACTIVE"
	ListingCancelled     ListingStatus = "CANCELLED"
	ListingCompleted     ListingStatus = "COMPLETED"
	ListingDirectRequest ListingStatus = "DIRECT_REQUEST"
)

type OfferStatus string

const (
	OfferPending   OfferStatus = "PENDING"
	OfferAccepted  OfferStatus = "ACCEPTED"
	OfferRejected  OfferStatus = "REJECTED"
	OfferCancelled OfferStatus = "CANCELLED"
)

// Resolution records how a terminal state was reached. Empty means no special path.
type Resolution string

const ResolutionLocalFallback Resolution = "LOCAL_FALLBACK"

var (
	ErrDuplicateActiveListing = errors.New("seller already has an active listing for this player")
	ErrDuplicatePendingOffer  = errors.New("an identical pending offer already exists")
	ErrInvalidTransition      = errors.New("invalid status transition")
)

// Open reports whether offers can still be made and resolved.
func (s ListingStatus) Open() bool {
	return s == ListingActive || s == ListingDirectRequest
}

func (s ListingStatus) CanTransitionTo(next ListingStatus) bool {
	return s.Open() && (next == ListingCancelled || next == ListingCompleted)
}

func (s OfferStatus) CanTransitionTo(next OfferStatus) bool {
	if s != OfferPending {
		return false
	}
	switch next {
	case OfferAccepted, OfferRejected, OfferCancelled:
		return true
	}
	return false
}

// Listing is a seller putting one rostered player on the market.
type Listing struct {
	ID           string
	SellerUserID string
	PlayerKey    string
	Status       ListingStatus
	Notes        string
	Resolution   Resolution
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (l Listing) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("listing id is required")
	}
	if l.SellerUserID == "" {
		return fmt.Errorf("listing seller is required")
	}
	if l.PlayerKey == "" {
		return fmt.Errorf("listing player is required")
	}
	switch l.Status {
	case ListingActive, ListingCancelled, ListingCompleted, ListingDirectRequest:
	default:
		return fmt.Errorf("invalid listing status: %s", l.Status)
	}
	if len(l.Notes) > 1000 {
		return fmt.Errorf("listing notes must be at most 1000 characters")
	}
	return nil
}

// Offer is a bid on a listing: an optional player plus credits.
type Offer struct {
	ID               string
	ListingID        string
	OffererUserID    string
	OfferedPlayerKey string
	OfferedCredits   int64
	Status           OfferStatus
	Resolution       Resolution
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (o Offer) Validate() error {
	if o.ID == "" {
		return fmt.Errorf("offer id is required")
	}
	if o.ListingID == "" {
		return fmt.Errorf("offer listing is required")
	}
	if o.OffererUserID == "" {
		return fmt.Errorf("offerer is required")
	}
	if o.OfferedCredits < 0 {
		return fmt.Errorf("offered credits must not be negative")
	}
	if o.OfferedPlayerKey == "" && o.OfferedCredits == 0 {
		return fmt.Errorf("offer must include a player or credits")
	}
	return nil
}
