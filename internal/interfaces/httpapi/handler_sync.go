package httpapi

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/riskibarqy/fantasy-trade-market/internal/usecase"
)

func (h *Handler) SyncMyLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := traceHandler(r, "SyncMyLeagues")
	defer span.End()

	userID, ok := requirePrincipal(ctx, w)
	if !ok {
		return
	}

	result := h.deps.Sync.SyncUserLeagues(ctx, userID)
	if !result.Success {
		h.logger.WarnContext(ctx, "sync user leagues failed", "user_id", userID, "message", result.Message)
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunSyncAllJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := traceHandler(r, "RunSyncAllJob")
	defer span.End()

	if h.deps.BatchSync == nil {
		writeError(ctx, w, fmt.Errorf("%w: scheduled sync is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	result, err := h.deps.BatchSync.SyncAllLinkedUsers(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run sync-all job failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) StartYahooLink(w http.ResponseWriter, r *http.Request) {
	ctx, span := traceHandler(r, "StartYahooLink")
	defer span.End()

	userID, ok := requirePrincipal(ctx, w)
	if !ok {
		return
	}

	authURL, err := h.deps.Links.StartLink(ctx, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "start yahoo link failed", "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, linkDTO{AuthURL: authURL})
}

// YahooCallback is public: the state issued by StartYahooLink identifies the user.
func (h *Handler) YahooCallback(w http.ResponseWriter, r *http.Request) {
	ctx, span := traceHandler(r, "YahooCallback")
	defer span.End()

	query := r.URL.Query()
	if denied := query.Get("error"); denied != "" {
		h.redirectAfterLink(w, r, "error", fmt.Errorf("%w: authorization denied: %s", usecase.ErrInvalidInput, denied))
		return
	}

	userID, err := h.deps.Links.CompleteLink(ctx, query.Get("state"), query.Get("code"))
	if err != nil {
		h.logger.WarnContext(ctx, "complete yahoo link failed", "error", err)
		h.redirectAfterLink(w, r, "error", err)
		return
	}
	h.logger.InfoContext(ctx, "yahoo callback completed", "user_id", userID)
	h.redirectAfterLink(w, r, "linked", nil)
}

func (h *Handler) redirectAfterLink(w http.ResponseWriter, r *http.Request, outcome string, cause error) {
	if h.deps.PublicURL == "" {
		if cause != nil {
			writeError(r.Context(), w, cause)
			return
		}
		writeSuccess(r.Context(), w, http.StatusOK, usecase.ActionResult{Success: true, Message: "yahoo account linked"})
		return
	}
	target := h.deps.PublicURL + "/settings?yahoo=" + url.QueryEscape(outcome)
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *Handler) UnlinkYahoo(w http.ResponseWriter, r *http.Request) {
	ctx, span := traceHandler(r, "UnlinkYahoo")
	defer span.End()

	userID, ok := requirePrincipal(ctx, w)
	if !ok {
		return
	}

	if err := h.deps.Links.Unlink(ctx, userID); err != nil {
		h.logger.WarnContext(ctx, "unlink yahoo failed", "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, usecase.ActionResult{Success: true, Message: "yahoo account unlinked"})
}
