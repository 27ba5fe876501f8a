package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/riskibarqy/fantasy-trade-market/internal/platform/logging"
	"github.com/riskibarqy/fantasy-trade-market/internal/platform/resilience"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	PublicURL          string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	CORSAllowedOrigins []string
	InternalJobToken   string
	SwaggerEnabled     bool
	LogLevel           logging.Level

	// DBURL empty selects the in-memory repositories.
	DBURL                   string
	DBDisablePreparedBinary bool
	CacheEnabled            bool
	CacheTTL                time.Duration
	CacheSize               int

	AnubisBaseURL        string
	AnubisIntrospectPath string
	AnubisAdminKey       string
	AnubisTimeout        time.Duration
	AnubisCacheTTL       time.Duration
	AnubisCircuit        resilience.CircuitBreakerConfig

	YahooClientID        string
	YahooClientSecret    string
	YahooRedirectURL     string
	YahooAuthURL         string
	YahooTokenURL        string
	YahooAPIBaseURL      string
	YahooTimeout         time.Duration
	YahooMaxRetries      int
	YahooGameCodes       []string
	YahooTokenExpirySkew time.Duration
	YahooCircuit         resilience.CircuitBreakerConfig

	SyncLeagueWorkers int
	SyncUserWorkers   int
	// SyncCron empty disables the scheduled all-users sync.
	SyncCron string

	NewsEnabled bool
	NewsBaseURL string
	NewsTimeout time.Duration
	NewsLimit   int

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	PprofEnabled               bool
	PprofAddr                  string
	UptraceEnabled             bool
	UptraceDSN                 string
	UptraceLogsEnabled         bool
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:               appEnv,
		ServiceName:          getEnv("APP_NAME", "fantasy-trade-market-api"),
		ServiceVersion:       getEnv("APP_VERSION", "dev"),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		PublicURL:            strings.TrimRight(strings.TrimSpace(getEnv("APP_PUBLIC_URL", "http://localhost:3000")), "/"),
		CORSAllowedOrigins:   splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		InternalJobToken:     strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
		DBURL:                strings.TrimSpace(getEnv("DB_URL", "")),
		AnubisBaseURL:        getEnv("ANUBIS_BASE_URL", "http://localhost:8081"),
		AnubisIntrospectPath: getEnv("ANUBIS_INTROSPECT_PATH", "/v1/auth/introspect"),
		AnubisAdminKey:       strings.TrimSpace(getEnv("ANUBIS_ADMIN_KEY", "")),
		YahooClientID:        strings.TrimSpace(getEnv("YAHOO_CLIENT_ID", "")),
		YahooClientSecret:    strings.TrimSpace(getEnv("YAHOO_CLIENT_SECRET", "")),
		YahooRedirectURL:     strings.TrimSpace(getEnv("YAHOO_REDIRECT_URL", "")),
		YahooAuthURL:         strings.TrimSpace(getEnv("YAHOO_AUTH_URL", "")),
		YahooTokenURL:        strings.TrimSpace(getEnv("YAHOO_TOKEN_URL", "")),
		YahooAPIBaseURL:      strings.TrimSpace(getEnv("YAHOO_API_BASE_URL", "https://fantasysports.yahooapis.com/fantasy/v2")),
		YahooGameCodes:       splitCSV(getEnv("YAHOO_GAME_CODES", "nba,nfl,mlb,nhl")),
		SyncCron:             strings.TrimSpace(getEnv("SYNC_CRON", "")),
		NewsBaseURL:          strings.TrimSpace(getEnv("NEWS_BASE_URL", "")),
		SMTPHost:             strings.TrimSpace(getEnv("SMTP_HOST", "")),
		SMTPPort:             strings.TrimSpace(getEnv("SMTP_PORT", "587")),
		SMTPUsername:         strings.TrimSpace(getEnv("SMTP_USERNAME", "")),
		SMTPPassword:         getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:             strings.TrimSpace(getEnv("SMTP_FROM", "")),
		PprofAddr:            strings.TrimSpace(getEnv("PPROF_ADDR", ":6060")),
		PyroscopeAuthToken:   strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
	}
	cfg.PyroscopeBasicAuthUser = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", ""))
	cfg.PyroscopeBasicAuthPassword = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", ""))
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if len(cfg.YahooGameCodes) == 0 {
		return Config{}, fmt.Errorf("YAHOO_GAME_CODES cannot be empty")
	}

	level, ok := logging.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if !ok {
		return Config{}, fmt.Errorf("invalid LOG_LEVEL %q", os.Getenv("LOG_LEVEL"))
	}
	cfg.LogLevel = level

	if cfg.ReadTimeout, err = positiveDuration("APP_READ_TIMEOUT", "10s"); err != nil {
		return Config{}, err
	}
	if cfg.WriteTimeout, err = positiveDuration("APP_WRITE_TIMEOUT", "60s"); err != nil {
		return Config{}, err
	}

	if cfg.SwaggerEnabled, err = getEnvAsBool("SWAGGER_ENABLED", appEnv != EnvProd); err != nil {
		return Config{}, err
	}

	if cfg.DBDisablePreparedBinary, err = getEnvAsBool("DB_DISABLE_PREPARED_BINARY_RESULT", true); err != nil {
		return Config{}, err
	}
	if cfg.CacheEnabled, err = getEnvAsBool("CACHE_ENABLED", true); err != nil {
		return Config{}, err
	}
	if cfg.CacheTTL, err = positiveDuration("CACHE_TTL", "60s"); err != nil {
		return Config{}, err
	}
	if cfg.CacheSize, err = positiveInt("CACHE_SIZE", 4096); err != nil {
		return Config{}, err
	}

	if cfg.AnubisTimeout, err = positiveDuration("ANUBIS_TIMEOUT", "3s"); err != nil {
		return Config{}, err
	}
	if cfg.AnubisCacheTTL, err = positiveDuration("ANUBIS_CACHE_TTL", "30s"); err != nil {
		return Config{}, err
	}
	if cfg.AnubisCircuit, err = loadCircuit("ANUBIS"); err != nil {
		return Config{}, err
	}

	if cfg.YahooTimeout, err = positiveDuration("YAHOO_TIMEOUT", "20s"); err != nil {
		return Config{}, err
	}
	if cfg.YahooMaxRetries, err = getEnvAsInt("YAHOO_MAX_RETRIES", 2); err != nil {
		return Config{}, fmt.Errorf("parse YAHOO_MAX_RETRIES: %w", err)
	}
	if cfg.YahooMaxRetries < 0 {
		return Config{}, fmt.Errorf("YAHOO_MAX_RETRIES must be >= 0")
	}
	if cfg.YahooTokenExpirySkew, err = time.ParseDuration(getEnv("YAHOO_TOKEN_EXPIRY_SKEW", "60s")); err != nil {
		return Config{}, fmt.Errorf("parse YAHOO_TOKEN_EXPIRY_SKEW: %w", err)
	}
	if cfg.YahooTokenExpirySkew < 0 {
		return Config{}, fmt.Errorf("YAHOO_TOKEN_EXPIRY_SKEW must be >= 0")
	}
	if cfg.YahooCircuit, err = loadCircuit("YAHOO"); err != nil {
		return Config{}, err
	}
	if appEnv == EnvProd && (cfg.YahooClientID == "" || cfg.YahooClientSecret == "" || cfg.YahooRedirectURL == "") {
		return Config{}, fmt.Errorf("YAHOO_CLIENT_ID, YAHOO_CLIENT_SECRET and YAHOO_REDIRECT_URL are required when APP_ENV=prod")
	}

	if cfg.SyncLeagueWorkers, err = positiveInt("SYNC_LEAGUE_WORKERS", 4); err != nil {
		return Config{}, err
	}
	if cfg.SyncUserWorkers, err = positiveInt("SYNC_USER_WORKERS", 4); err != nil {
		return Config{}, err
	}
	if cfg.SyncCron != "" {
		if _, err := cron.ParseStandard(cfg.SyncCron); err != nil {
			return Config{}, fmt.Errorf("parse SYNC_CRON: %w", err)
		}
	}

	if cfg.NewsEnabled, err = getEnvAsBool("NEWS_ENABLED", true); err != nil {
		return Config{}, err
	}
	if cfg.NewsTimeout, err = positiveDuration("NEWS_TIMEOUT", "8s"); err != nil {
		return Config{}, err
	}
	if cfg.NewsLimit, err = positiveInt("NEWS_LIMIT", 20); err != nil {
		return Config{}, err
	}

	if cfg.PprofEnabled, err = getEnvAsBool("PPROF_ENABLED", false); err != nil {
		return Config{}, err
	}
	if cfg.PprofEnabled && cfg.PprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	if cfg.UptraceEnabled, err = getEnvAsBool("UPTRACE_ENABLED", false); err != nil {
		return Config{}, err
	}
	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	if cfg.UptraceLogsEnabled, err = getEnvAsBool("UPTRACE_LOGS_ENABLED", true); err != nil {
		return Config{}, err
	}

	if cfg.PyroscopeEnabled, err = getEnvAsBool("PYROSCOPE_ENABLED", false); err != nil {
		return Config{}, err
	}
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeUploadRate, err = positiveDuration("PYROSCOPE_UPLOAD_RATE", "15s"); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadCircuit(prefix string) (resilience.CircuitBreakerConfig, error) {
	out := resilience.CircuitBreakerConfig{}
	var err error
	if out.Enabled, err = getEnvAsBool(prefix+"_CIRCUIT_ENABLED", true); err != nil {
		return out, err
	}
	if out.FailureThreshold, err = positiveInt(prefix+"_CIRCUIT_FAILURE_COUNT", 5); err != nil {
		return out, err
	}
	if out.OpenTimeout, err = positiveDuration(prefix+"_CIRCUIT_OPEN_TIMEOUT", "15s"); err != nil {
		return out, err
	}
	if out.HalfOpenMaxReq, err = positiveInt(prefix+"_CIRCUIT_HALF_OPEN_MAX_REQ", 2); err != nil {
		return out, err
	}
	return out, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	return strconv.Atoi(value)
}

func getEnvAsBool(key string, fallback bool) (bool, error) {
	out, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(fallback)))
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

func positiveInt(key string, fallback int) (int, error) {
	out, err := getEnvAsInt(key, fallback)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return out, nil
}

func positiveDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	for _, item := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			return strings.Trim(strings.TrimSpace(parts[1]), "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
