package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/samber/lo"

	"github.com/riskibarqy/fantasy-trade-market/internal/usecase"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func (h *Handler) SearchPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := traceHandler(r, "SearchPlayers")
	defer span.End()

	req := searchPlayersRequest{Query: strings.TrimSpace(r.URL.Query().Get("q"))}
	if err := h.validate(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	limit, err := parseLimit(r.URL.Query().Get("limit"), defaultPageSize, maxPageSize)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	players, err := h.deps.Players.Search(ctx, req.Query, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "search players failed", "query", req.Query, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, lo.Map(players, playerToDTO))
}

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	ctx, span := traceHandler(r, "ListNotifications")
	defer span.End()

	userID, ok := requirePrincipal(ctx, w)
	if !ok {
		return
	}
	limit, err := parseLimit(r.URL.Query().Get("limit"), defaultPageSize, maxPageSize)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.deps.Notifications.List(ctx, userID, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "list notifications failed", "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, lo.Map(items, notificationToDTO))
}

func (h *Handler) ListNews(w http.ResponseWriter, r *http.Request) {
	ctx, span := traceHandler(r, "ListNews")
	defer span.End()

	if h.deps.News == nil {
		writeError(ctx, w, fmt.Errorf("%w: news feed is disabled", usecase.ErrDependencyUnavailable))
		return
	}
	game := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("game")))
	if game == "" {
		writeError(ctx, w, fmt.Errorf("%w: game is required", usecase.ErrInvalidInput))
		return
	}
	limit, err := parseLimit(r.URL.Query().Get("limit"), defaultPageSize, maxPageSize)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.deps.News.Latest(ctx, game, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "list news failed", "game", game, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, lo.Map(items, newsToDTO))
}
