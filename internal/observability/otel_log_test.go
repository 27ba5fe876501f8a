package observability

import (
	"errors"
	"testing"

	otellog "go.opentelemetry.io/otel/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestSkipRecord(t *testing.T) {
	if !skipRecord("http_request", map[string]any{"http_path": "/healthz"}) {
		t.Fatalf("expected health check log to be skipped")
	}
	if skipRecord("http_request", map[string]any{"http_path": "/v1/listings"}) {
		t.Fatalf("did not expect non-health log to be skipped")
	}
	if skipRecord("sync finished", map[string]any{"http_path": "/healthz"}) {
		t.Fatalf("did not expect non-http_request event to be skipped")
	}
}

func TestAttributesOfZapFields(t *testing.T) {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range []zap.Field{
		zap.String("league_key", "428.l.1"),
		zap.Int("attempt", 2),
		zap.NamedError("error", errors.New("boom")),
	} {
		f.AddTo(enc)
	}

	attrs := attributesOf(enc.Fields)
	if len(attrs) != 3 {
		t.Fatalf("expected 3 attributes, got %d", len(attrs))
	}
	if attrs[0].Key != "attempt" || attrs[0].Value.AsInt64() != 2 {
		t.Fatalf("unexpected attempt attribute: %+v", attrs[0])
	}
	if attrs[1].Key != "error" || attrs[1].Value.AsString() != "boom" {
		t.Fatalf("unexpected error attribute: %+v", attrs[1])
	}
	if attrs[2].Key != "league_key" || attrs[2].Value.AsString() != "428.l.1" {
		t.Fatalf("unexpected league_key attribute: %+v", attrs[2])
	}
}

func TestToOTelLogValue_Map(t *testing.T) {
	v := toOTelLogValue(map[string]any{"wins": 7, "home": true}, 0)
	if v.Kind() != otellog.KindMap {
		t.Fatalf("expected map value, got %s", v.Kind())
	}
	if items := v.AsMap(); len(items) != 2 {
		t.Fatalf("expected 2 map items, got %d", len(items))
	}
	if toOTelLogValue(nil, 0).Kind() != otellog.KindEmpty {
		t.Fatalf("expected empty value for nil")
	}
}

func TestToOTelSeverity(t *testing.T) {
	if toOTelSeverity(zapcore.WarnLevel) != otellog.SeverityWarn {
		t.Fatalf("unexpected warn severity")
	}
	if toOTelSeverity(zapcore.ErrorLevel) != otellog.SeverityError {
		t.Fatalf("unexpected error severity")
	}
}
