package httpapi

import (
	"net/http"

	"github.com/samber/lo"
)

func (h *Handler) ListListings(w http.ResponseWriter, r *http.Request) {
	ctx, span := traceHandler(r, "ListListings")
	defer span.End()

	listings, err := h.deps.Market.ListActiveListings(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list active listings failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, lo.Map(listings, listingToDTO))
}

func (h *Handler) GetListing(w http.ResponseWriter, r *http.Request) {
	ctx, span := traceHandler(r, "GetListing")
	defer span.End()

	listingID := r.PathValue("listingID")
	listing, err := h.deps.Market.GetListing(ctx, listingID)
	if err != nil {
		h.logger.WarnContext(ctx, "get listing failed", "listing_id", listingID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, listingToDTO(listing, 0))
}

func (h *Handler) CreateListing(w http.ResponseWriter, r *http.Request) {
	ctx, span := traceHandler(r, "CreateListing")
	defer span.End()

	userID, ok := requirePrincipal(ctx, w)
	if !ok {
		return
	}
	var req createListingRequest
	if err := h.decodeBody(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	res, err := h.deps.Market.CreateListing(ctx, userID, req.PlayerKey, req.Notes)
	h.writeAction(ctx, w, http.StatusCreated, res, err, "create listing failed", "user_id", userID, "player_key", req.PlayerKey)
}

func (h *Handler) CancelListing(w http.ResponseWriter, r *http.Request) {
	ctx, span := traceHandler(r, "CancelListing")
	defer span.End()

	userID, ok := requirePrincipal(ctx, w)
	if !ok {
		return
	}
	listingID := r.PathValue("listingID")

	res, err := h.deps.Market.CancelListing(ctx, userID, listingID)
	h.writeAction(ctx, w, http.StatusOK, res, err, "cancel listing failed", "user_id", userID, "listing_id", listingID)
}

func (h *Handler) ListListingOffers(w http.ResponseWriter, r *http.Request) {
	ctx, span := traceHandler(r, "ListListingOffers")
	defer span.End()

	userID, ok := requirePrincipal(ctx, w)
	if !ok {
		return
	}
	listingID := r.PathValue("listingID")

	res, err := h.deps.Market.GetOffersForListing(ctx, userID, listingID)
	if err != nil {
		h.logger.WarnContext(ctx, "list listing offers failed", "user_id", userID, "listing_id", listingID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, offersDTO{
		Success: res.Success,
		Message: res.Message,
		Offers:  lo.Map(res.Offers, offerToDTO),
	})
}

func (h *Handler) MakeOffer(w http.ResponseWriter, r *http.Request) {
	ctx, span := traceHandler(r, "MakeOffer")
	defer span.End()

	userID, ok := requirePrincipal(ctx, w)
	if !ok {
		return
	}
	listingID := r.PathValue("listingID")
	var req makeOfferRequest
	if err := h.decodeBody(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	res, err := h.deps.Market.MakeOffer(ctx, userID, listingID, req.OfferedPlayerKey, req.OfferedCredits)
	h.writeAction(ctx, w, http.StatusCreated, res, err, "make offer failed", "user_id", userID, "listing_id", listingID)
}

func (h *Handler) MakeDirectOffer(w http.ResponseWriter, r *http.Request) {
	ctx, span := traceHandler(r, "MakeDirectOffer")
	defer span.End()

	userID, ok := requirePrincipal(ctx, w)
	if !ok {
		return
	}
	var req directOfferRequest
	if err := h.decodeBody(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	res, err := h.deps.Market.MakeDirectOffer(ctx, userID, req.TargetPlayerKey, req.OfferedPlayerKey, req.OfferedCredits)
	h.writeAction(ctx, w, http.StatusCreated, res, err, "make direct offer failed", "user_id", userID, "target_player_key", req.TargetPlayerKey)
}

func (h *Handler) AcceptOffer(w http.ResponseWriter, r *http.Request) {
	ctx, span := traceHandler(r, "AcceptOffer")
	defer span.End()

	userID, ok := requirePrincipal(ctx, w)
	if !ok {
		return
	}
	offerID := r.PathValue("offerID")

	res, err := h.deps.Market.AcceptOffer(ctx, userID, offerID)
	h.writeAction(ctx, w, http.StatusOK, res, err, "accept offer failed", "user_id", userID, "offer_id", offerID)
}

func (h *Handler) RejectOffer(w http.ResponseWriter, r *http.Request) {
	ctx, span := traceHandler(r, "RejectOffer")
	defer span.End()

	userID, ok := requirePrincipal(ctx, w)
	if !ok {
		return
	}
	offerID := r.PathValue("offerID")

	res, err := h.deps.Market.RejectOffer(ctx, userID, offerID)
	h.writeAction(ctx, w, http.StatusOK, res, err, "reject offer failed", "user_id", userID, "offer_id", offerID)
}

func (h *Handler) CancelOffer(w http.ResponseWriter, r *http.Request) {
	ctx, span := traceHandler(r, "CancelOffer")
	defer span.End()

	userID, ok := requirePrincipal(ctx, w)
	if !ok {
		return
	}
	offerID := r.PathValue("offerID")

	res, err := h.deps.Market.CancelOffer(ctx, userID, offerID)
	h.writeAction(ctx, w, http.StatusOK, res, err, "cancel offer failed", "user_id", userID, "offer_id", offerID)
}

func (h *Handler) PendingOffersCount(w http.ResponseWriter, r *http.Request) {
	ctx, span := traceHandler(r, "PendingOffersCount")
	defer span.End()

	userID, ok := requirePrincipal(ctx, w)
	if !ok {
		return
	}

	n, err := h.deps.Market.GetPendingOffersCount(ctx, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "count pending offers failed", "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]int{"count": n})
}
