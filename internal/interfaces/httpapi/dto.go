package httpapi

import (
	"time"

	"github.com/riskibarqy/fantasy-trade-market/internal/domain/market"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/news"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/notification"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/player"
)

type createListingRequest struct {
	PlayerKey string `json:"player_key" validate:"required,max=64"`
	Notes     string `json:"notes" validate:"max=1000"`
}

type makeOfferRequest struct {
	OfferedPlayerKey string `json:"offered_player_key" validate:"omitempty,max=64"`
	OfferedCredits   int64  `json:"offered_credits" validate:"gte=0"`
}

type directOfferRequest struct {
	TargetPlayerKey  string `json:"target_player_key" validate:"required,max=64"`
	OfferedPlayerKey string `json:"offered_player_key" validate:"omitempty,max=64"`
	OfferedCredits   int64  `json:"offered_credits" validate:"gte=0"`
}

type searchPlayersRequest struct {
	Query string `validate:"required,min=2,max=100"`
}

type linkDTO struct {
	AuthURL string `json:"auth_url"`
}

type listingDTO struct {
	ID           string    `json:"id"`
	SellerUserID string    `json:"seller_user_id"`
	PlayerKey    string    `json:"player_key"`
	Status       string    `json:"status"`
	Notes        string    `json:"notes,omitempty"`
	Resolution   string    `json:"resolution,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type offerDTO struct {
	ID               string    `json:"id"`
	ListingID        string    `json:"listing_id"`
	OffererUserID    string    `json:"offerer_user_id"`
	OfferedPlayerKey string    `json:"offered_player_key,omitempty"`
	OfferedCredits   int64     `json:"offered_credits"`
	Status           string    `json:"status"`
	Resolution       string    `json:"resolution,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type offersDTO struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	Offers  []offerDTO `json:"offers"`
}

type playerDTO struct {
	Key             string  `json:"key"`
	FullName        string  `json:"full_name"`
	TeamAbbr        string  `json:"team_abbr,omitempty"`
	PhotoURL        string  `json:"photo_url,omitempty"`
	Position        string  `json:"position,omitempty"`
	Status          string  `json:"status,omitempty"`
	FantasyPoints   float64 `json:"fantasy_points"`
	ProjectedPoints float64 `json:"projected_points"`
	PercentOwned    float64 `json:"percent_owned"`
	MarketValue     int64   `json:"market_value"`
}

type notificationDTO struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Link      string    `json:"link,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

type newsDTO struct {
	Link        string    `json:"link"`
	GameCode    string    `json:"game_code"`
	Headline    string    `json:"headline"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

func listingToDTO(v market.Listing, _ int) listingDTO {
	return listingDTO{
		ID:           v.ID,
		SellerUserID: v.SellerUserID,
		PlayerKey:    v.PlayerKey,
		Status:       string(v.Status),
		Notes:        v.Notes,
		Resolution:   string(v.Resolution),
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}

func offerToDTO(v market.Offer, _ int) offerDTO {
	return offerDTO{
		ID:               v.ID,
		ListingID:        v.ListingID,
		OffererUserID:    v.OffererUserID,
		OfferedPlayerKey: v.OfferedPlayerKey,
		OfferedCredits:   v.OfferedCredits,
		Status:           string(v.Status),
		Resolution:       string(v.Resolution),
		CreatedAt:        v.CreatedAt,
		UpdatedAt:        v.UpdatedAt,
	}
}

func playerToDTO(v player.Player, _ int) playerDTO {
	return playerDTO{
		Key:             v.Key,
		FullName:        v.FullName,
		TeamAbbr:        v.TeamAbbr,
		PhotoURL:        v.PhotoURL,
		Position:        v.Position,
		Status:          v.Status,
		FantasyPoints:   v.FantasyPoints,
		ProjectedPoints: v.ProjectedPoints,
		PercentOwned:    v.PercentOwned,
		MarketValue:     v.MarketValue,
	}
}

func notificationToDTO(v notification.Notification, _ int) notificationDTO {
	return notificationDTO{
		ID:        v.ID,
		Type:      string(v.Type),
		Title:     v.Title,
		Message:   v.Message,
		Link:      v.Link,
		Read:      v.Read,
		CreatedAt: v.CreatedAt,
	}
}

func newsToDTO(v news.Item, _ int) newsDTO {
	return newsDTO{
		Link:        v.Link,
		GameCode:    v.GameCode,
		Headline:    v.Headline,
		Description: v.Description,
		ImageURL:    v.ImageURL,
		PublishedAt: v.PublishedAt,
	}
}
