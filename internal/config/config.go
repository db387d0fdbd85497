// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes server timeouts,
// logging, the record store location, loyalty rules (cache and ticket
// lifetimes, reward threshold), outbound notifications, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "loyalty-bot")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// LoyaltyConfig holds the rules of the stamp program.
type LoyaltyConfig struct {
	AdminID         string        // ADMIN_ID, the singleton administrator identity
	AdminName       string        // ADMIN_NAME, display name of the synthesized admin vendor
	VendorCacheTTL  time.Duration // VENDOR_CACHE_TTL
	TicketTTL       time.Duration // TICKET_TTL
	SessionTTL      time.Duration // SESSION_TTL (0 disables soft expiry)
	RewardThreshold int           // REWARD_THRESHOLD
	DeepLinkBase    string        // DEEP_LINK_BASE, the code is appended verbatim
	SaleValue       int           // SALE_VALUE, nominal price of one stamped purchase
	SweepInterval   time.Duration // SWEEP_INTERVAL (0 disables the hygiene sweeper)
}

// NotifyConfig configures outbound delivery of tickets and notices.
type NotifyConfig struct {
	WebhookURL string        // NOTIFY_WEBHOOK_URL; empty means log-only delivery
	Timeout    time.Duration // NOTIFY_TIMEOUT per delivery
	SafeClient bool          // NOTIFY_SAFE_CLIENT blocks private and loopback targets
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// Record store
	DBPath       string        // SQLite path
	StoreLatency time.Duration // artificial per-call latency, 0 in production

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	Loyalty LoyaltyConfig
	Notify  NotifyConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// Record store
		DBPath:       getenv("DB_PATH", "loyalty.db"),
		StoreLatency: getdur("STORE_LATENCY", 0),

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		Loyalty: LoyaltyConfig{
			AdminID:         strings.TrimSpace(getenv("ADMIN_ID", "")),
			AdminName:       getenv("ADMIN_NAME", "Admin"),
			VendorCacheTTL:  getdur("VENDOR_CACHE_TTL", 300*time.Second),
			TicketTTL:       getdur("TICKET_TTL", 10*time.Minute),
			SessionTTL:      getdur("SESSION_TTL", 10*time.Minute),
			RewardThreshold: getint("REWARD_THRESHOLD", 10),
			DeepLinkBase:    getenv("DEEP_LINK_BASE", "https://t.me/loyaltybot?start="),
			SaleValue:       getint("SALE_VALUE", 12),
			SweepInterval:   getdur("SWEEP_INTERVAL", time.Minute),
		},
		Notify: NotifyConfig{
			WebhookURL: strings.TrimSpace(getenv("NOTIFY_WEBHOOK_URL", "")),
			Timeout:    getdur("NOTIFY_TIMEOUT", 5*time.Second),
			SafeClient: getbool("NOTIFY_SAFE_CLIENT", false),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "loyalty-bot"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	if strings.TrimSpace(cfg.Loyalty.AdminName) == "" {
		cfg.Loyalty.AdminName = "Admin"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.StoreLatency < 0 {
		return cfg, errors.New("STORE_LATENCY must be >= 0")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return cfg, errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if cfg.Loyalty.AdminID == "" {
		return cfg, errors.New("ADMIN_ID must not be empty")
	}
	if cfg.Loyalty.VendorCacheTTL <= 0 || cfg.Loyalty.TicketTTL <= 0 {
		return cfg, errors.New("VENDOR_CACHE_TTL and TICKET_TTL must be positive durations")
	}
	if cfg.Loyalty.SessionTTL < 0 || cfg.Loyalty.SweepInterval < 0 {
		return cfg, errors.New("SESSION_TTL and SWEEP_INTERVAL must be >= 0")
	}
	if cfg.Loyalty.RewardThreshold < 1 {
		return cfg, errors.New("REWARD_THRESHOLD must be >= 1")
	}
	if strings.TrimSpace(cfg.Loyalty.DeepLinkBase) == "" {
		return cfg, errors.New("DEEP_LINK_BASE must not be empty")
	}
	if cfg.Loyalty.SaleValue < 0 {
		return cfg, errors.New("SALE_VALUE must be >= 0")
	}
	if cfg.Notify.Timeout <= 0 {
		return cfg, errors.New("NOTIFY_TIMEOUT must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
