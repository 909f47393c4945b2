package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string

	// Site-wide product defaults (the landing page's params.ini equivalent).
	ProductName string
	ProductID   string
	Locale      string
	GTMID       string

	// Email defaults for forms that request notification mail.
	EmailTitle     string
	EmailRecipient string

	// Post-submit redirect targets. At most one of CRMEmbedHash and
	// BotBackendURL may be set; form registration fails otherwise.
	CRMEmbedHash  string
	BotBackendURL string
	BotName       string

	// Per-form overrides as a JSON array. Empty means one default form.
	FormsJSON string

	// Geo/phone context.
	GeoLookupURL        string
	GeoLookupTimeout    time.Duration
	DefaultPhoneCountry string
	PreferredCountries  []string
	ExcludedCountries   []string

	// CRM connector upstream.
	CRMConnectorURL   string
	CRMConnectorToken string
	CRMTimeout        time.Duration

	// Email domain gate.
	CheckEmailDomain   bool
	DomainCheckTimeout time.Duration

	// Embed mount wait (bounded; the legacy page polled forever).
	EmbedPollInterval time.Duration
	EmbedPollTimeout  time.Duration

	// SendGrid Email Configuration
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	// Submit endpoint rate limiting.
	RateLimitPerSecond float64
	RateLimitBurst     int

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		ProductName: getEnv("PRODUCT_NAME", ""),
		ProductID:   getEnv("PRODUCT_ID", ""),
		Locale:      getEnv("LOCALE", "uk"),
		GTMID:       getEnv("GTM_ID", ""),

		EmailTitle:     getEnv("EMAIL_TITLE", "New request"),
		EmailRecipient: getEnv("EMAIL_RECIPIENT", ""),

		CRMEmbedHash:  getEnv("CRM_EMBED_HASH", ""),
		BotBackendURL: getEnv("BOT_BACKEND_URL", ""),
		BotName:       getEnv("BOT_NAME", ""),

		FormsJSON: getEnv("FORMS_JSON", ""),

		GeoLookupURL:        getEnv("GEO_LOOKUP_URL", "https://ip.nf/me.json"),
		GeoLookupTimeout:    getEnvAsDuration("GEO_LOOKUP_TIMEOUT", 3*time.Second),
		DefaultPhoneCountry: strings.ToLower(getEnv("DEFAULT_PHONE_COUNTRY", "ua")),
		PreferredCountries:  getEnvAsList("PREFERRED_COUNTRIES", []string{"ua"}),
		ExcludedCountries:   getEnvAsList("EXCLUDED_COUNTRIES", []string{"ru", "by"}),

		CRMConnectorURL:   getEnv("CRM_CONNECTOR_URL", ""),
		CRMConnectorToken: getEnv("CRM_CONNECTOR_TOKEN", ""),
		CRMTimeout:        getEnvAsDuration("CRM_TIMEOUT", 10*time.Second),

		CheckEmailDomain:   getEnvAsBool("CHECK_EMAIL_DOMAIN", true),
		DomainCheckTimeout: getEnvAsDuration("DOMAIN_CHECK_TIMEOUT", 5*time.Second),

		EmbedPollInterval: getEnvAsDuration("EMBED_POLL_INTERVAL", 2*time.Second),
		EmbedPollTimeout:  getEnvAsDuration("EMBED_POLL_TIMEOUT", 30*time.Second),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Lead Gateway"),

		RateLimitPerSecond: getEnvAsFloat("RATE_LIMIT_PER_SECOND", 2),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 5),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
