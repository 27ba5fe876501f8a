package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/fantasy-trade-market/internal/domain/game"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/league"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/market"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/notification"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/player"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/team"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/user"
	"github.com/riskibarqy/fantasy-trade-market/internal/platform/id"
	"github.com/riskibarqy/fantasy-trade-market/internal/platform/logging"
)

const marketCachePrefix = "market:"

// TradeLinkContext identifies both sides of a trade on the provider website.
type TradeLinkContext struct {
	GameCode          string
	LeagueNumber      string
	TeamNumber        string
	CounterpartNumber string
	PlayerNumbers     []string
}

// TradeLinkBuilder renders deep links into the provider's own trade pages.
type TradeLinkBuilder interface {
	ProposeTradeURL(c TradeLinkContext) string
	PendingTradesURL(c TradeLinkContext) string
}

type MailMessage struct {
	To      []string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

// Cache is the read-through cache used for market board reads.
type Cache interface {
	CacheInvalidator
	GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error)
}

type MarketDeps struct {
	Market    market.Repository
	Teams     team.Repository
	Roster    team.RosterRepository
	Leagues   league.Repository
	Games     game.Repository
	Players   player.Repository
	Directory user.Directory
	IDs       id.Generator
	Notifier  *NotificationService
	Mailer    Mailer
	Links     TradeLinkBuilder
	Cache     Cache
	PublicURL string
}

// MarketService is the local listing and offer lifecycle.
type MarketService struct {
	deps   MarketDeps
	now    func() time.Time
	logger *logging.Logger
}

func NewMarketService(deps MarketDeps, logger *logging.Logger) *MarketService {
	if logger == nil {
		logger = logging.Default()
	}
	deps.PublicURL = strings.TrimSuffix(deps.PublicURL, "/")
	return &MarketService{deps: deps, now: time.Now, logger: logger}
}

type OffersResult struct {
	ActionResult
	Offers []market.Offer `json:"offers,omitempty"`
}

func (s *MarketService) CreateListing(ctx context.Context, userID, playerKey, notes string) (ActionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MarketService.CreateListing")
	defer span.End()

	return asResult(s.createListing(ctx, userID, playerKey, notes))
}

func (s *MarketService) createListing(ctx context.Context, userID, playerKey, notes string) (ActionResult, error) {
	if userID == "" || playerKey == "" {
		return ActionResult{}, refuse(ErrInvalidInput, "player is required")
	}
	sellerTeam, owned, err := s.ownedTeam(ctx, userID, playerKey)
	if err != nil {
		return ActionResult{}, err
	}
	if !owned {
		return ActionResult{}, refuse(ErrBusinessRule, "you can only list players on your own roster")
	}

	listing, err := s.newListing(userID, playerKey, notes, market.ListingActive)
	if err != nil {
		return ActionResult{}, err
	}
	if err := s.deps.Market.CreateListing(ctx, listing); err != nil {
		if errors.Is(err, market.ErrDuplicateActiveListing) {
			return ActionResult{}, refuse(ErrBusinessRule, "you already have an active listing for this player")
		}
		return ActionResult{}, fmt.Errorf("create listing player=%s: %w", playerKey, err)
	}
	s.invalidate(ctx)
	s.announceListing(ctx, listing, sellerTeam)

	return ActionResult{Message: "listing created", ID: listing.ID}, nil
}

func (s *MarketService) CancelListing(ctx context.Context, userID, listingID string) (ActionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MarketService.CancelListing")
	defer span.End()

	return asResult(s.cancelListing(ctx, userID, listingID))
}

func (s *MarketService) cancelListing(ctx context.Context, userID, listingID string) (ActionResult, error) {
	listing, err := s.listing(ctx, listingID)
	if err != nil {
		return ActionResult{}, err
	}
	if listing.SellerUserID != userID {
		return ActionResult{}, refuse(ErrUnauthorized, "only the seller can cancel this listing")
	}
	if !listing.Status.CanTransitionTo(market.ListingCancelled) {
		return ActionResult{}, refuse(ErrBusinessRule, "listing is no longer open")
	}

	cancelled, err := s.deps.Market.CancelListing(ctx, listing.ID, s.now().UTC())
	if err != nil {
		if errors.Is(err, market.ErrInvalidTransition) {
			return ActionResult{}, refuse(ErrBusinessRule, "listing is no longer open")
		}
		return ActionResult{}, fmt.Errorf("cancel listing=%s: %w", listing.ID, err)
	}
	s.invalidate(ctx)
	for _, o := range cancelled {
		s.deps.Notifier.Notify(ctx, o.OffererUserID, notification.TypeListingCancelled,
			"Listing cancelled", "A listing you made an offer on was cancelled.", "/market")
	}
	return ActionResult{Message: "listing cancelled", ID: listing.ID}, nil
}

func (s *MarketService) MakeOffer(ctx context.Context, userID, listingID, offeredPlayerKey string, credits int64) (ActionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MarketService.MakeOffer")
	defer span.End()

	return asResult(s.makeOffer(ctx, userID, listingID, offeredPlayerKey, credits))
}

func (s *MarketService) makeOffer(ctx context.Context, userID, listingID, offeredPlayerKey string, credits int64) (ActionResult, error) {
	listing, err := s.listing(ctx, listingID)
	if err != nil {
		return ActionResult{}, err
	}
	if !listing.Status.Open() {
		return ActionResult{}, refuse(ErrBusinessRule, "listing is no longer open")
	}
	if listing.SellerUserID == userID {
		return ActionResult{}, refuse(ErrBusinessRule, "you cannot make an offer on your own listing")
	}
	if err := s.checkOfferTerms(ctx, userID, offeredPlayerKey, credits); err != nil {
		return ActionResult{}, err
	}

	offerID, err := s.deps.IDs.NewID()
	if err != nil {
		return ActionResult{}, fmt.Errorf("generate offer id: %w", err)
	}
	now := s.now().UTC()
	offer := market.Offer{
		ID:               offerID,
		ListingID:        listing.ID,
		OffererUserID:    userID,
		OfferedPlayerKey: offeredPlayerKey,
		OfferedCredits:   credits,
		Status:           market.OfferPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := offer.Validate(); err != nil {
		return ActionResult{}, refuse(ErrInvalidInput, "%s", err.Error())
	}
	if err := s.deps.Market.CreateOffer(ctx, offer); err != nil {
		if errors.Is(err, market.ErrDuplicatePendingOffer) {
			return ActionResult{}, refuse(ErrBusinessRule, "you already have a pending offer with this player on this listing")
		}
		return ActionResult{}, fmt.Errorf("create offer listing=%s: %w", listing.ID, err)
	}

	s.deps.Notifier.Notify(ctx, listing.SellerUserID, notification.TypeOfferReceived,
		"New trade offer", "You received a new offer on your listing.", "/market/listings/"+listing.ID)
	return ActionResult{Message: "offer sent", ID: offer.ID}, nil
}

// MakeDirectOffer anchors a one-to-one offer on a shadow DIRECT_REQUEST listing
// owned by whoever rosters the target player.
func (s *MarketService) MakeDirectOffer(ctx context.Context, userID, targetPlayerKey, offeredPlayerKey string, credits int64) (ActionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MarketService.MakeDirectOffer")
	defer span.End()

	return asResult(s.makeDirectOffer(ctx, userID, targetPlayerKey, offeredPlayerKey, credits))
}

func (s *MarketService) makeDirectOffer(ctx context.Context, userID, targetPlayerKey, offeredPlayerKey string, credits int64) (ActionResult, error) {
	if targetPlayerKey == "" {
		return ActionResult{}, refuse(ErrInvalidInput, "target player is required")
	}
	owner, err := s.ownerOf(ctx, targetPlayerKey, userID)
	if err != nil {
		return ActionResult{}, err
	}
	if owner == "" {
		return ActionResult{}, refuse(ErrNotFound, "no other manager rosters this player")
	}

	if err := s.checkOfferTerms(ctx, userID, offeredPlayerKey, credits); err != nil {
		return ActionResult{}, err
	}

	listing, created, err := s.directRequest(ctx, owner, targetPlayerKey)
	if err != nil {
		return ActionResult{}, err
	}
	res, err := s.makeOffer(ctx, userID, listing.ID, offeredPlayerKey, credits)
	if err != nil && created {
		if _, cancelErr := s.deps.Market.CancelListing(ctx, listing.ID, s.now().UTC()); cancelErr != nil {
			s.logger.WarnContext(ctx, "cancel unused direct request failed", "listing_id", listing.ID, "error", cancelErr)
		}
	}
	return res, err
}

// directRequest returns the open DIRECT_REQUEST listing for (owner, player),
// creating one when none exists.
func (s *MarketService) directRequest(ctx context.Context, owner, playerKey string) (market.Listing, bool, error) {
	open, err := s.deps.Market.ListListings(ctx, market.ListingDirectRequest)
	if err != nil {
		return market.Listing{}, false, fmt.Errorf("list direct requests: %w", err)
	}
	if l, ok := lo.Find(open, func(l market.Listing) bool {
		return l.SellerUserID == owner && l.PlayerKey == playerKey
	}); ok {
		return l, false, nil
	}

	listing, err := s.newListing(owner, playerKey, "", market.ListingDirectRequest)
	if err != nil {
		return market.Listing{}, false, err
	}
	if err := s.deps.Market.CreateListing(ctx, listing); err != nil {
		return market.Listing{}, false, fmt.Errorf("create direct request player=%s: %w", playerKey, err)
	}
	return listing, true, nil
}

// checkOfferTerms holds the rules that do not depend on the listing.
func (s *MarketService) checkOfferTerms(ctx context.Context, userID, offeredPlayerKey string, credits int64) error {
	if credits < 0 {
		return refuse(ErrInvalidInput, "credits must not be negative")
	}
	if offeredPlayerKey == "" && credits == 0 {
		return refuse(ErrInvalidInput, "offer must include a player or credits")
	}
	if offeredPlayerKey == "" {
		return nil
	}
	_, owned, err := s.ownedTeam(ctx, userID, offeredPlayerKey)
	if err != nil {
		return err
	}
	if !owned {
		return refuse(ErrBusinessRule, "you can only offer players on your own roster")
	}
	return nil
}

// AcceptOffer sends the seller to the provider when both teams share a
// provider league; only a trade with no provider context is completed locally.
func (s *MarketService) AcceptOffer(ctx context.Context, userID, offerID string) (ActionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MarketService.AcceptOffer")
	defer span.End()

	return asResult(s.acceptOffer(ctx, userID, offerID))
}

func (s *MarketService) acceptOffer(ctx context.Context, userID, offerID string) (ActionResult, error) {
	offer, listing, err := s.sellerOffer(ctx, userID, offerID)
	if err != nil {
		return ActionResult{}, err
	}

	link, found, err := s.tradeContext(ctx, listing, offer)
	if err != nil {
		return ActionResult{}, err
	}
	if found && s.deps.Links != nil {
		return ActionResult{
			Message:     "complete this trade on Yahoo",
			RedirectURL: s.deps.Links.ProposeTradeURL(link),
			ID:          offer.ID,
		}, nil
	}

	losers, err := s.deps.Market.CompleteListing(ctx, listing.ID, offer.ID, market.ResolutionLocalFallback, s.now().UTC())
	if err != nil {
		if errors.Is(err, market.ErrInvalidTransition) {
			return ActionResult{}, refuse(ErrBusinessRule, "offer is no longer pending")
		}
		return ActionResult{}, fmt.Errorf("complete listing=%s offer=%s: %w", listing.ID, offer.ID, err)
	}
	s.invalidate(ctx)

	s.deps.Notifier.Notify(ctx, offer.OffererUserID, notification.TypeOfferAccepted,
		"Offer accepted", "Your trade offer was accepted.", "/market/listings/"+listing.ID)
	for _, o := range losers {
		s.deps.Notifier.Notify(ctx, o.OffererUserID, notification.TypeOfferRejected,
			"Offer declined", "The listing was completed with another offer.", "/market/listings/"+listing.ID)
	}
	return ActionResult{Message: "trade completed", ID: offer.ID}, nil
}

func (s *MarketService) RejectOffer(ctx context.Context, userID, offerID string) (ActionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MarketService.RejectOffer")
	defer span.End()

	return asResult(s.rejectOffer(ctx, userID, offerID))
}

func (s *MarketService) rejectOffer(ctx context.Context, userID, offerID string) (ActionResult, error) {
	offer, listing, err := s.sellerOffer(ctx, userID, offerID)
	if err != nil {
		return ActionResult{}, err
	}

	link, found, err := s.tradeContext(ctx, listing, offer)
	if err != nil {
		return ActionResult{}, err
	}
	if found && s.deps.Links != nil {
		return ActionResult{
			Message:     "respond to this trade on Yahoo",
			RedirectURL: s.deps.Links.PendingTradesURL(link),
			ID:          offer.ID,
		}, nil
	}

	if err := s.deps.Market.UpdateOfferStatus(ctx, offer.ID, market.OfferRejected, market.ResolutionLocalFallback, s.now().UTC()); err != nil {
		if errors.Is(err, market.ErrInvalidTransition) {
			return ActionResult{}, refuse(ErrBusinessRule, "offer is no longer pending")
		}
		return ActionResult{}, fmt.Errorf("reject offer=%s: %w", offer.ID, err)
	}
	s.deps.Notifier.Notify(ctx, offer.OffererUserID, notification.TypeOfferRejected,
		"Offer declined", "Your trade offer was declined.", "/market/listings/"+listing.ID)
	return ActionResult{Message: "offer rejected", ID: offer.ID}, nil
}

func (s *MarketService) CancelOffer(ctx context.Context, userID, offerID string) (ActionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MarketService.CancelOffer")
	defer span.End()

	return asResult(s.cancelOffer(ctx, userID, offerID))
}

func (s *MarketService) cancelOffer(ctx context.Context, userID, offerID string) (ActionResult, error) {
	offer, err := s.offer(ctx, offerID)
	if err != nil {
		return ActionResult{}, err
	}
	if offer.OffererUserID != userID {
		return ActionResult{}, refuse(ErrUnauthorized, "only the offerer can cancel this offer")
	}
	if !offer.Status.CanTransitionTo(market.OfferCancelled) {
		return ActionResult{}, refuse(ErrBusinessRule, "offer is no longer pending")
	}
	if err := s.deps.Market.UpdateOfferStatus(ctx, offer.ID, market.OfferCancelled, "", s.now().UTC()); err != nil {
		if errors.Is(err, market.ErrInvalidTransition) {
			return ActionResult{}, refuse(ErrBusinessRule, "offer is no longer pending")
		}
		return ActionResult{}, fmt.Errorf("cancel offer=%s: %w", offer.ID, err)
	}
	return ActionResult{Message: "offer cancelled", ID: offer.ID}, nil
}

// GetOffersForListing returns every offer to the seller and only the caller's own offers to anyone else.
func (s *MarketService) GetOffersForListing(ctx context.Context, userID, listingID string) (OffersResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MarketService.GetOffersForListing")
	defer span.End()

	listing, err := s.listing(ctx, listingID)
	if err != nil {
		res, err := asResult(ActionResult{}, err)
		return OffersResult{ActionResult: res}, err
	}
	offers, err := s.deps.Market.ListOffersByListing(ctx, listing.ID)
	if err != nil {
		return OffersResult{}, fmt.Errorf("list offers listing=%s: %w", listing.ID, err)
	}
	if listing.SellerUserID != userID {
		offers = lo.Filter(offers, func(o market.Offer, _ int) bool { return o.OffererUserID == userID })
	}
	return OffersResult{ActionResult: ActionResult{Success: true}, Offers: offers}, nil
}

func (s *MarketService) GetPendingOffersCount(ctx context.Context, userID string) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MarketService.GetPendingOffersCount")
	defer span.End()

	if userID == "" {
		return 0, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	n, err := s.deps.Market.CountPendingOffersForSeller(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count pending offers seller=%s: %w", userID, err)
	}
	return n, nil
}

func (s *MarketService) GetListing(ctx context.Context, listingID string) (market.Listing, error) {
	return s.listing(ctx, listingID)
}

// ListActiveListings is the public board. It is served from cache and
// invalidated by every listing write in this service.
func (s *MarketService) ListActiveListings(ctx context.Context) ([]market.Listing, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MarketService.ListActiveListings")
	defer span.End()

	load := func(ctx context.Context) (any, error) {
		return s.deps.Market.ListListings(ctx, market.ListingActive)
	}
	if s.deps.Cache == nil {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return v.([]market.Listing), nil
	}
	v, err := s.deps.Cache.GetOrLoad(ctx, marketCachePrefix+"listings:active", load)
	if err != nil {
		return nil, fmt.Errorf("list active listings: %w", err)
	}
	return v.([]market.Listing), nil
}

func (s *MarketService) newListing(sellerID, playerKey, notes string, status market.ListingStatus) (market.Listing, error) {
	listingID, err := s.deps.IDs.NewID()
	if err != nil {
		return market.Listing{}, fmt.Errorf("generate listing id: %w", err)
	}
	now := s.now().UTC()
	l := market.Listing{
		ID:           listingID,
		SellerUserID: sellerID,
		PlayerKey:    playerKey,
		Status:       status,
		Notes:        strings.TrimSpace(notes),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := l.Validate(); err != nil {
		return market.Listing{}, refuse(ErrInvalidInput, "%s", err.Error())
	}
	return l, nil
}

func (s *MarketService) listing(ctx context.Context, listingID string) (market.Listing, error) {
	if strings.TrimSpace(listingID) == "" {
		return market.Listing{}, refuse(ErrInvalidInput, "listing id is required")
	}
	l, found, err := s.deps.Market.GetListing(ctx, listingID)
	if err != nil {
		return market.Listing{}, fmt.Errorf("get listing=%s: %w", listingID, err)
	}
	if !found {
		return market.Listing{}, refuse(ErrNotFound, "listing not found")
	}
	return l, nil
}

func (s *MarketService) offer(ctx context.Context, offerID string) (market.Offer, error) {
	if strings.TrimSpace(offerID) == "" {
		return market.Offer{}, refuse(ErrInvalidInput, "offer id is required")
	}
	o, found, err := s.deps.Market.GetOffer(ctx, offerID)
	if err != nil {
		return market.Offer{}, fmt.Errorf("get offer=%s: %w", offerID, err)
	}
	if !found {
		return market.Offer{}, refuse(ErrNotFound, "offer not found")
	}
	return o, nil
}

// sellerOffer loads a pending offer on an open listing owned by userID.
func (s *MarketService) sellerOffer(ctx context.Context, userID, offerID string) (market.Offer, market.Listing, error) {
	o, err := s.offer(ctx, offerID)
	if err != nil {
		return market.Offer{}, market.Listing{}, err
	}
	l, err := s.listing(ctx, o.ListingID)
	if err != nil {
		return market.Offer{}, market.Listing{}, err
	}
	if l.SellerUserID != userID {
		return market.Offer{}, market.Listing{}, refuse(ErrUnauthorized, "only the seller can respond to this offer")
	}
	if o.Status != market.OfferPending || !l.Status.Open() {
		return market.Offer{}, market.Listing{}, refuse(ErrBusinessRule, "offer is no longer pending")
	}
	return o, l, nil
}

// ownedTeam finds the team managed by userID that rosters playerKey.
func (s *MarketService) ownedTeam(ctx context.Context, userID, playerKey string) (team.Team, bool, error) {
	teamKeys, err := s.deps.Roster.TeamsForPlayer(ctx, playerKey)
	if err != nil {
		return team.Team{}, false, fmt.Errorf("teams for player=%s: %w", playerKey, err)
	}
	for _, key := range teamKeys {
		t, found, err := s.deps.Teams.GetByKey(ctx, key)
		if err != nil {
			return team.Team{}, false, fmt.Errorf("get team=%s: %w", key, err)
		}
		if found && t.ManagerUserID == userID {
			return t, true, nil
		}
	}
	return team.Team{}, false, nil
}

// ownerOf returns the manager, other than exclude, of a team rostering playerKey.
func (s *MarketService) ownerOf(ctx context.Context, playerKey, exclude string) (string, error) {
	teamKeys, err := s.deps.Roster.TeamsForPlayer(ctx, playerKey)
	if err != nil {
		return "", fmt.Errorf("teams for player=%s: %w", playerKey, err)
	}
	for _, key := range teamKeys {
		t, found, err := s.deps.Teams.GetByKey(ctx, key)
		if err != nil {
			return "", fmt.Errorf("get team=%s: %w", key, err)
		}
		if found && t.ManagerUserID != "" && t.ManagerUserID != exclude {
			return t.ManagerUserID, nil
		}
	}
	return "", nil
}

// tradeContext resolves the provider league shared by the seller's team and a team managed by the offerer.
func (s *MarketService) tradeContext(ctx context.Context, l market.Listing, o market.Offer) (TradeLinkContext, bool, error) {
	sellerTeam, owned, err := s.ownedTeam(ctx, l.SellerUserID, l.PlayerKey)
	if err != nil || !owned {
		return TradeLinkContext{}, false, err
	}
	offererTeams, err := s.deps.Teams.ListByManager(ctx, o.OffererUserID)
	if err != nil {
		return TradeLinkContext{}, false, fmt.Errorf("teams for offerer=%s: %w", o.OffererUserID, err)
	}
	counterpart, found := lo.Find(offererTeams, func(t team.Team) bool { return t.LeagueKey == sellerTeam.LeagueKey })
	if !found {
		return TradeLinkContext{}, false, nil
	}

	lg, found, err := s.deps.Leagues.GetByKey(ctx, sellerTeam.LeagueKey)
	if err != nil || !found {
		return TradeLinkContext{}, false, err
	}
	g, found, err := s.deps.Games.GetByKey(ctx, lg.GameKey)
	if err != nil || !found {
		return TradeLinkContext{}, false, err
	}

	numbers := []string{player.Player{Key: l.PlayerKey}.Number()}
	if o.OfferedPlayerKey != "" {
		numbers = append(numbers, player.Player{Key: o.OfferedPlayerKey}.Number())
	}
	return TradeLinkContext{
		GameCode:          g.Code,
		LeagueNumber:      lg.Number(),
		TeamNumber:        sellerTeam.Number(),
		CounterpartNumber: counterpart.Number(),
		PlayerNumbers:     lo.Compact(numbers),
	}, true, nil
}

// announceListing e-mails the other managers of the seller's league. Failures only log.
func (s *MarketService) announceListing(ctx context.Context, l market.Listing, sellerTeam team.Team) {
	if s.deps.Mailer == nil || s.deps.Directory == nil {
		return
	}
	leagueTeams, err := s.deps.Teams.ListByLeague(ctx, sellerTeam.LeagueKey)
	if err != nil {
		s.logger.WarnContext(ctx, "listing announcement: list league teams failed", "league_key", sellerTeam.LeagueKey, "error", err)
		return
	}
	recipients := lo.Uniq(lo.FilterMap(leagueTeams, func(t team.Team, _ int) (string, bool) {
		return t.ManagerUserID, t.ManagerUserID != "" && t.ManagerUserID != l.SellerUserID
	}))
	if len(recipients) == 0 {
		return
	}
	emails, err := s.deps.Directory.Emails(ctx, recipients)
	if err != nil {
		s.logger.WarnContext(ctx, "listing announcement: resolve emails failed", "listing_id", l.ID, "error", err)
		return
	}
	to := lo.Compact(lo.Values(emails))
	if len(to) == 0 {
		return
	}

	name := l.PlayerKey
	if p, found, err := s.deps.Players.GetByKey(ctx, l.PlayerKey); err == nil && found && p.FullName != "" {
		name = p.FullName
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	_, _ = buf.WriteString(sellerTeam.Name)
	_, _ = buf.WriteString(" just listed ")
	_, _ = buf.WriteString(name)
	_, _ = buf.WriteString(" on the trade market.\n")
	if l.Notes != "" {
		_, _ = buf.WriteString("\nNotes: ")
		_, _ = buf.WriteString(l.Notes)
		_, _ = buf.WriteString("\n")
	}
	_, _ = buf.WriteString("\nView the listing: ")
	_, _ = buf.WriteString(s.deps.PublicURL)
	_, _ = buf.WriteString("/market/listings/")
	_, _ = buf.WriteString(l.ID)
	_, _ = buf.WriteString("\n")

	msg := MailMessage{To: to, Subject: "New trade listing: " + name, Body: buf.String()}
	if err := s.deps.Mailer.Send(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "listing announcement: send failed", "listing_id", l.ID, "error", err)
	}
}

func (s *MarketService) invalidate(ctx context.Context) {
	if s.deps.Cache != nil {
		s.deps.Cache.DeletePrefix(ctx, marketCachePrefix)
	}
}
