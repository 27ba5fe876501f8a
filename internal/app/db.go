package app

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/fantasy-trade-market/internal/config"
)

const (
	dbPingTimeout  = 5 * time.Second
	tracedQueryMax = 512
)

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := cfg.Database().DSN()
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(databaseName(dsn)),
		otelsql.WithQueryFormatter(traceQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// databaseName understands both URL and key=value DSNs.
func databaseName(dsn string) string {
	dsn = strings.TrimSpace(dsn)
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" {
		return strings.Trim(u.Path, "/ ")
	}
	for _, field := range strings.Fields(dsn) {
		if name, ok := strings.CutPrefix(field, "dbname="); ok {
			return strings.Trim(name, `"'`)
		}
	}
	return ""
}

// traceQuery collapses whitespace, masks quoted literals and caps the length
// so span attributes never carry tokens or oversized statements.
func traceQuery(query string) string {
	var b strings.Builder
	inLiteral := false
	for _, word := range strings.Fields(query) {
		if b.Len() > 0 && !inLiteral {
			b.WriteByte(' ')
		}
		for _, r := range word {
			switch {
			case r == '\'':
				if !inLiteral {
					b.WriteString("'?'")
				}
				inLiteral = !inLiteral
			case !inLiteral:
				b.WriteRune(r)
			}
		}
	}
	out := b.String()
	if len(out) <= tracedQueryMax {
		return out
	}
	cut := tracedQueryMax
	for cut > 0 && !utf8.RuneStart(out[cut]) {
		cut--
	}
	return out[:cut] + "..."
}
