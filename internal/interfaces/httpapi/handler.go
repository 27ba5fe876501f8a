package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/fantasy-trade-market/internal/domain/market"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/news"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/notification"
	"github.com/riskibarqy/fantasy-trade-market/internal/domain/player"
	"github.com/riskibarqy/fantasy-trade-market/internal/platform/logging"
	"github.com/riskibarqy/fantasy-trade-market/internal/usecase"
)

type LeagueSyncer interface {
	SyncUserLeagues(ctx context.Context, userID string) usecase.SyncResult
}

type BatchSyncer interface {
	SyncAllLinkedUsers(ctx context.Context) (usecase.BatchSyncResult, error)
}

type AccountLinker interface {
	StartLink(ctx context.Context, userID string) (string, error)
	CompleteLink(ctx context.Context, state, code string) (string, error)
	Unlink(ctx context.Context, userID string) error
}

type Marketplace interface {
	CreateListing(ctx context.Context, userID, playerKey, notes string) (usecase.ActionResult, error)
	CancelListing(ctx context.Context, userID, listingID string) (usecase.ActionResult, error)
	MakeOffer(ctx context.Context, userID, listingID, offeredPlayerKey string, credits int64) (usecase.ActionResult, error)
	MakeDirectOffer(ctx context.Context, userID, targetPlayerKey, offeredPlayerKey string, credits int64) (usecase.ActionResult, error)
	AcceptOffer(ctx context.Context, userID, offerID string) (usecase.ActionResult, error)
	RejectOffer(ctx context.Context, userID, offerID string) (usecase.ActionResult, error)
	CancelOffer(ctx context.Context, userID, offerID string) (usecase.ActionResult, error)
	GetOffersForListing(ctx context.Context, userID, listingID string) (usecase.OffersResult, error)
	GetPendingOffersCount(ctx context.Context, userID string) (int, error)
	GetListing(ctx context.Context, listingID string) (market.Listing, error)
	ListActiveListings(ctx context.Context) ([]market.Listing, error)
}

type PlayerSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]player.Player, error)
}

type NotificationLister interface {
	List(ctx context.Context, userID string, limit int) ([]notification.Notification, error)
}

type NewsReader interface {
	Latest(ctx context.Context, gameCode string, limit int) ([]news.Item, error)
}

// HandlerDeps groups the services behind the public action surface.
// News is optional.
type HandlerDeps struct {
	Sync          LeagueSyncer
	BatchSync     BatchSyncer
	Links         AccountLinker
	Market        Marketplace
	Players       PlayerSearcher
	Notifications NotificationLister
	News          NewsReader
	// PublicURL is where the OAuth callback sends the browser after linking.
	PublicURL string
}

type Handler struct {
	deps      HandlerDeps
	logger    *logging.Logger
	validator *validator.Validate
}

func NewHandler(deps HandlerDeps, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	deps.PublicURL = strings.TrimRight(strings.TrimSpace(deps.PublicURL), "/")

	return &Handler{
		deps:      deps,
		logger:    logger,
		validator: validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeSuccess(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeBody reads a strict JSON body into dst.
func (h *Handler) decodeBody(ctx context.Context, r *http.Request, dst any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return h.validate(ctx, dst)
}

func (h *Handler) validate(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func requirePrincipal(ctx context.Context, w http.ResponseWriter) (string, bool) {
	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return "", false
	}
	return principal.UserID, true
}

func parseLimit(raw string, fallback, max int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: limit must be a positive integer", usecase.ErrInvalidInput)
	}
	if n > max {
		n = max
	}
	return n, nil
}

// writeAction reports an ActionResult. Expected refusals still use the
// success envelope with success=false.
func (h *Handler) writeAction(ctx context.Context, w http.ResponseWriter, status int, res usecase.ActionResult, err error, msg string, kv ...any) {
	if err != nil {
		h.logger.WarnContext(ctx, msg, append(kv, "error", err)...)
		writeError(ctx, w, err)
		return
	}
	if !res.Success {
		status = http.StatusOK
	}
	writeSuccess(ctx, w, status, res)
}
