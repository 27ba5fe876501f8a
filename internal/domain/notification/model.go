package notification

import (
	"fmt"
	"time"
)

type Type string

const (
	TypeSyncComplete     Type = "SYNC_COMPLETE"
	TypeOfferReceived    Type = "OFFER_RECEIVED"
	TypeOfferAccepted    Type = "OFFER_ACCEPTED"
	TypeOfferRejected    Type = "OFFER_REJECTED"
	TypeListingCancelled Type = "LISTING_CANCELLED"
)

type Notification struct {
	ID        string
	UserID    string
	Type      Type
	Title     string
	Message   string
	Link      string
	Read      bool
	CreatedAt time.Time
}

func (n Notification) Validate() error {
	if n.ID == "" {
		return fmt.Errorf("notification id is required")
	}
	if n.UserID == "" {
		return fmt.Errorf("notification user is required")
	}
	if n.Type == "" {
		return fmt.Errorf("notification type is required")
	}
	return nil
}
