package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/riskibarqy/fantasy-trade-market/internal/domain/user"
	"github.com/riskibarqy/fantasy-trade-market/internal/platform/logging"
	"github.com/riskibarqy/fantasy-trade-market/internal/usecase"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestTraced_SkipsProbes(t *testing.T) {
	t.Parallel()

	for path, want := range map[string]bool{
		"/healthz":                 false,
		" /READYZ ":                false,
		"/livez":                   false,
		"/v1/listings":             true,
		"/v1/offers/pending-count": true,
		"/docs":                    true,
	} {
		if got := traced(path); got != want {
			t.Fatalf("traced(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestTraceHandler_NoopWithoutServerSpan(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/v1/listings", nil)
	ctx, span := traceHandler(req, "ListListings")
	defer span.End()

	if span.SpanContext().IsValid() {
		t.Fatalf("expected no-op span for an untraced request")
	}
	if ctx != req.Context() {
		t.Fatalf("expected request context to pass through")
	}
}

func TestCORS(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		allowed    []string
		method     string
		origin     string
		wantOrigin string
		wantStatus int
	}{
		{"configured origin", []string{"https://market.example.com"}, http.MethodGet, "https://market.example.com", "https://market.example.com", http.StatusOK},
		{"wildcard preflight", []string{"*"}, http.MethodOptions, "https://market.example.com", "*", http.StatusNoContent},
		{"unknown origin", []string{"https://allowed.example.com"}, http.MethodGet, "https://evil.example.com", "", http.StatusOK},
		{"same origin", []string{" ", "https://allowed.example.com"}, http.MethodGet, "", "", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/v1/listings", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			rec := httptest.NewRecorder()
			CORS(tc.allowed, okHandler()).ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tc.wantOrigin {
				t.Fatalf("Access-Control-Allow-Origin = %q, want %q", got, tc.wantOrigin)
			}
		})
	}
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.9:4312"
	if got := clientIP(req); got != "10.0.0.9" {
		t.Fatalf("expected remote address, got %q", got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := clientIP(req); got != "203.0.113.7" {
		t.Fatalf("expected first forwarded hop, got %q", got)
	}

	req.Header.Set("X-Forwarded-For", "garbage")
	req.Header.Set("X-Real-IP", "198.51.100.2")
	if got := clientIP(req); got != "198.51.100.2" {
		t.Fatalf("expected real ip fallback, got %q", got)
	}
}

type stubVerifier struct {
	principal user.Principal
	err       error
	seen      string
}

func (v *stubVerifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	v.seen = token
	return v.principal, v.err
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	verifier := &stubVerifier{principal: user.Principal{UserID: "u1"}}
	var gotUser string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, _ := principalFromContext(r.Context())
		gotUser = p.UserID
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireAuth(verifier, nil, nil, next)

	for header, want := range map[string]int{
		"":             http.StatusUnauthorized,
		"Basic abc":    http.StatusUnauthorized,
		"Bearer ":      http.StatusUnauthorized,
		"bearer tok-1": http.StatusOK,
	} {
		req := httptest.NewRequest(http.MethodGet, "/v1/listings", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("Authorization %q: status = %d, want %d", header, rec.Code, want)
		}
	}
	if verifier.seen != "tok-1" || gotUser != "u1" {
		t.Fatalf("expected principal u1 from tok-1, got %q from %q", gotUser, verifier.seen)
	}

	verifier.err = usecase.ErrUnauthorized
	req := httptest.NewRequest(http.MethodGet, "/v1/listings", nil)
	req.Header.Set("Authorization", "Bearer tok-2")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected rejected token to be 401, got %d", rec.Code)
	}
}

func TestRequireInternalJobToken(t *testing.T) {
	t.Parallel()

	cases := []struct {
		configured, provided string
		want                 int
	}{
		{"", "anything", http.StatusServiceUnavailable},
		{"s3cret", "", http.StatusUnauthorized},
		{"s3cret", "wrong", http.StatusUnauthorized},
		{"s3cret", "s3cret", http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/sync-all", nil)
		req.Header.Set(internalJobHeader, tc.provided)
		rec := httptest.NewRecorder()
		RequireInternalJobToken(tc.configured, okHandler()).ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("configured=%q provided=%q: status = %d, want %d", tc.configured, tc.provided, rec.Code, tc.want)
		}
	}
}

func TestRecoverPanic_WritesInternalEnvelope(t *testing.T) {
	t.Parallel()

	boom := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	rec := httptest.NewRecorder()
	recoverPanic(logging.NewNop(), boom).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
