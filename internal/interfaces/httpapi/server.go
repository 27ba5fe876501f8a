package httpapi

import (
	"net/http"

	"github.com/riskibarqy/fantasy-trade-market/internal/domain/user"
	"github.com/riskibarqy/fantasy-trade-market/internal/platform/logging"
)

type RouterConfig struct {
	SwaggerEnabled     bool
	CORSAllowedOrigins []string
	InternalJobToken   string
}

// NewRouter builds the mux and wraps it, outermost first, in tracing,
// access logging, CORS and panic recovery.
func NewRouter(handler *Handler, verifier TokenVerifier, directory user.Directory, logger *logging.Logger, cfg RouterConfig) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler, cfg.SwaggerEnabled)
	registerPublicRoutes(mux, handler)
	registerAuthorizedRoutes(mux, handler, func(fn http.HandlerFunc) http.Handler {
		return RequireAuth(verifier, directory, logger, fn)
	})
	registerInternalJobRoutes(mux, handler, cfg.InternalJobToken)

	var root http.Handler = mux
	root = recoverPanic(logger, root)
	root = CORS(cfg.CORSAllowedOrigins, root)
	root = RequestLogging(logger, root)
	return RequestTracing(root)
}
