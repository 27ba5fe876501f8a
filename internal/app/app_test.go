package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-trade-market/internal/config"
	"github.com/riskibarqy/fantasy-trade-market/internal/platform/logging"
	"github.com/riskibarqy/fantasy-trade-market/internal/platform/resilience"
)

func memoryConfig() config.Config {
	return config.Config{
		AppEnv:             config.EnvDev,
		HTTPAddr:           ":0",
		PublicURL:          "http://localhost:3000",
		CORSAllowedOrigins: []string{"*"},
		InternalJobToken:   "job-secret",
		CacheEnabled:       true,
		CacheTTL:           time.Minute,
		CacheSize:          64,
		AnubisBaseURL:      "http://127.0.0.1:1",
		AnubisTimeout:      time.Second,
		AnubisCircuit:      resilience.CircuitBreakerConfig{Enabled: true, FailureThreshold: 3, OpenTimeout: time.Second, HalfOpenMaxReq: 1},
		YahooAPIBaseURL:    "http://127.0.0.1:1",
		YahooTimeout:       time.Second,
		YahooGameCodes:     []string{"nba"},
		SyncLeagueWorkers:  2,
		SyncUserWorkers:    2,
		SyncCron:           "*/30 * * * *",
		NewsEnabled:        true,
		NewsTimeout:        time.Second,
		NewsLimit:          5,
	}
}

func TestNew_MemoryBackendServesRoutes(t *testing.T) {
	t.Parallel()

	a, err := New(memoryConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	if a.db != nil {
		t.Fatalf("expected memory backend without DB_URL")
	}
	if a.scheduler == nil {
		t.Fatalf("expected scheduler for SYNC_CRON")
	}

	rec := httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status=%d", rec.Code)
	}

	// The sync-all job runs against an empty credential store.
	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/sync-all", nil)
	req.Header.Set("X-Internal-Job-Token", "job-secret")
	rec = httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("sync-all status=%d body=%s", rec.Code, rec.Body.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := a.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestNew_RequiresAddr(t *testing.T) {
	t.Parallel()

	cfg := memoryConfig()
	cfg.HTTPAddr = ""
	if _, err := New(cfg, logging.NewNop()); err == nil {
		t.Fatalf("expected error for empty addr")
	}
}
