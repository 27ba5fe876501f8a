package app

import (
	"strings"
	"testing"
)

func TestDatabaseName(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct{ dsn, want string }{
		{"postgres://u:p@db:5432/trade_market?sslmode=disable", "trade_market"},
		{"host=db user=market dbname='trade_market' sslmode=disable", "trade_market"},
		{"host=db user=market", ""},
	} {
		if got := databaseName(tc.dsn); got != tc.want {
			t.Fatalf("databaseName(%q) = %q, want %q", tc.dsn, got, tc.want)
		}
	}
}

func TestTraceQuery(t *testing.T) {
	t.Parallel()

	got := traceQuery(" SELECT access_token\n  FROM provider_credentials \t WHERE user_id = 'u 1' AND provider = $1 ")
	want := "SELECT access_token FROM provider_credentials WHERE user_id = '?' AND provider = $1"
	if got != want {
		t.Fatalf("unexpected traced query:\n got %q\nwant %q", got, want)
	}

	long := traceQuery("SELECT " + strings.Repeat("x, ", 400) + "y FROM t")
	if !strings.HasSuffix(long, "...") || len(long) > tracedQueryMax+3 {
		t.Fatalf("expected truncated query, got len %d", len(long))
	}
}
