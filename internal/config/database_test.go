package config

import (
	"strings"
	"testing"
)

func TestDatabaseDSN(t *testing.T) {
	t.Parallel()

	base := "postgres://market:secret@db:5432/trade_market?sslmode=disable"
	if got := (Database{URL: base}).DSN(); got != base {
		t.Fatalf("expected dsn unchanged when disabled, got %q", got)
	}
	if got := (Database{URL: base, DisablePreparedBinary: true}).DSN(); !strings.Contains(got, "disable_prepared_binary_result=yes") {
		t.Fatalf("expected binary result flag, got %q", got)
	}

	explicit := base + "&disable_prepared_binary_result=no"
	if got := (Database{URL: explicit, DisablePreparedBinary: true}).DSN(); got != explicit {
		t.Fatalf("explicit flag must win, got %q", got)
	}

	kv := "host=db dbname=trade_market"
	if got := (Database{URL: kv, DisablePreparedBinary: true}).DSN(); got != kv {
		t.Fatalf("key=value dsn must pass through, got %q", got)
	}
}

func TestLoadDatabase(t *testing.T) {
	t.Setenv("DB_URL", "")
	if _, err := LoadDatabase(); err == nil {
		t.Fatalf("expected DB_URL to be required")
	}

	t.Setenv("DB_URL", " postgres://db/trade_market ")
	t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "false")
	db, err := LoadDatabase()
	if err != nil {
		t.Fatalf("load database: %v", err)
	}
	if db.URL != "postgres://db/trade_market" || db.DisablePreparedBinary {
		t.Fatalf("unexpected database settings: %+v", db)
	}

	t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "sometimes")
	if _, err := LoadDatabase(); err == nil {
		t.Fatalf("expected invalid bool to fail")
	}
}
