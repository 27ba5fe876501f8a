package httpapi

import "net/http"

type authWrapper func(http.HandlerFunc) http.Handler

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	// Browser redirect target of the consent screen; bound by the OAuth state.
	mux.HandleFunc("GET /v1/providers/yahoo/callback", handler.YahooCallback)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, auth authWrapper) {
	registerAuthorizedProviderRoutes(mux, handler, auth)
	registerAuthorizedMarketRoutes(mux, handler, auth)
	mux.Handle("GET /v1/players/search", auth(handler.SearchPlayers))
	mux.Handle("GET /v1/notifications", auth(handler.ListNotifications))
	mux.Handle("GET /v1/news", auth(handler.ListNews))
}

func registerAuthorizedProviderRoutes(mux *http.ServeMux, handler *Handler, auth authWrapper) {
	mux.Handle("POST /v1/sync", auth(handler.SyncMyLeagues))
	mux.Handle("GET /v1/providers/yahoo/link", auth(handler.StartYahooLink))
	mux.Handle("DELETE /v1/providers/yahoo/link", auth(handler.UnlinkYahoo))
}

func registerAuthorizedMarketRoutes(mux *http.ServeMux, handler *Handler, auth authWrapper) {
	mux.Handle("GET /v1/listings", auth(handler.ListListings))
	mux.Handle("POST /v1/listings", auth(handler.CreateListing))
	mux.Handle("GET /v1/listings/{listingID}", auth(handler.GetListing))
	mux.Handle("DELETE /v1/listings/{listingID}", auth(handler.CancelListing))
	mux.Handle("GET /v1/listings/{listingID}/offers", auth(handler.ListListingOffers))
	mux.Handle("POST /v1/listings/{listingID}/offers", auth(handler.MakeOffer))
	mux.Handle("POST /v1/offers/direct", auth(handler.MakeDirectOffer))
	mux.Handle("POST /v1/offers/{offerID}/accept", auth(handler.AcceptOffer))
	mux.Handle("POST /v1/offers/{offerID}/reject", auth(handler.RejectOffer))
	mux.Handle("POST /v1/offers/{offerID}/cancel", auth(handler.CancelOffer))
	mux.Handle("GET /v1/offers/pending-count", auth(handler.PendingOffersCount))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/sync-all", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncAllJob)))
}
